package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/staff-portal/internal"
	"github.com/frahmantamala/staff-portal/internal/auth"
	"github.com/frahmantamala/staff-portal/internal/mailer"
	"github.com/frahmantamala/staff-portal/internal/token"
	tokenPostgres "github.com/frahmantamala/staff-portal/internal/token/postgres"
	"github.com/frahmantamala/staff-portal/internal/transport/rest"
	"github.com/frahmantamala/staff-portal/internal/upload"
	"github.com/frahmantamala/staff-portal/internal/user"
	userPostgres "github.com/frahmantamala/staff-portal/internal/user/postgres"
	"github.com/frahmantamala/staff-portal/internal/verification"
	"github.com/frahmantamala/staff-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	GormDB  *gorm.DB
	Router  *chi.Mux
	Sweeper *token.Sweeper
	Logger  *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Background sweeper ages out stale verification and reset tokens.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go deps.Sweeper.Run(sweepCtx)

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		cancelSweep()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		cancelSweep()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-open pgx connection pool
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	lg := logger.LoggerWrapper()

	uploadStore, err := upload.NewStore(config.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	userRepo := userPostgres.NewUserRepository(gormDB)
	tokenRepo := tokenPostgres.NewTokenRepository(gormDB)

	userService := user.NewService(userRepo, tokenRepo, config.Security.BCryptCost, lg)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.SessionDuration)
	authService := auth.NewService(userService, tokenRepo, tokenGen, lg)

	smtpMailer := mailer.NewSMTPMailer(config.Mail, lg)
	verificationService := verification.NewService(
		userService,
		tokenRepo,
		smtpMailer,
		config.Server.BaseURL,
		config.Server.FrontendURL,
		config.Security.ResetTokenTTL,
		lg,
	)

	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService, uploadStore)
	verificationHandler := verification.NewHandler(verificationService, uploadStore)

	sweeper := token.NewSweeper(tokenRepo, config.Security.TokenTTL, config.Security.SweepInterval, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(
		router,
		db.DB,
		authHandler,
		userHandler,
		verificationHandler,
		config.Upload.Dir,
		config.Server.AllowedOrigins,
		lg,
	)

	return &Dependencies{
		Config:  config,
		Logger:  lg,
		DB:      db,
		GormDB:  gormDB,
		Router:  router,
		Sweeper: sweeper,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
