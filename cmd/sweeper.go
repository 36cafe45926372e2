package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/staff-portal/internal/token"
	tokenPostgres "github.com/frahmantamala/staff-portal/internal/token/postgres"
	"github.com/frahmantamala/staff-portal/pkg/logger"
)

// sweepCmd runs the token sweeper on its own, for deployments that keep
// the HTTP servers stateless and centralize cleanup in one process.
var sweepCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Run the token sweeper",
	Long:  `Periodically delete verification and reset tokens older than the configured TTL.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweeper()
	},
}

func startSweeper() {
	lg := logger.LoggerWrapper()

	cfg, err := loadConfig(".")
	if err != nil {
		lg.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to init db", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		lg.Error("failed to init orm", "error", err)
		os.Exit(1)
	}

	sweeper := token.NewSweeper(
		tokenPostgres.NewTokenRepository(db),
		cfg.Security.TokenTTL,
		cfg.Security.SweepInterval,
		lg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("token sweeper is running. Press Ctrl+C to stop.",
		"ttl", cfg.Security.TokenTTL,
		"interval", cfg.Security.SweepInterval)

	go func() {
		sig := <-sigChan
		lg.Info("received signal, shutting down sweeper", "signal", sig)
		cancel()
	}()

	sweeper.Run(ctx)
	lg.Info("token sweeper stopped")
}
