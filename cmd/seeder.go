package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the initial admin account",
	Long:  `Create the bootstrap admin user so the admin registration endpoint can be used.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		var existing userDatamodel.User
		err = db.Where("email = ?", seedAdminEmail).First(&existing).Error
		if err == nil {
			fmt.Println("admin user already exists:", seedAdminEmail)
			return
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("failed to check for existing admin: %v", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		admin := &userDatamodel.User{
			ID:           uuid.NewString(),
			Name:         "Administrator",
			Email:        seedAdminEmail,
			PasswordHash: string(hash),
			Role:         userDatamodel.RoleAdmin,
			Image:        userDatamodel.DefaultImage,
			IsVerified:   true,
		}

		if err := db.Create(admin).Error; err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}

		fmt.Println("Seeded admin user:", seedAdminEmail)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@staff-portal.local", "Email for the bootstrap admin user")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "changeme", "Password for the bootstrap admin user")
}
