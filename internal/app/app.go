package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nimbusvault/nimbusvault/internal/config"
	"github.com/nimbusvault/nimbusvault/internal/db"
	"github.com/nimbusvault/nimbusvault/internal/repository"
	"github.com/nimbusvault/nimbusvault/internal/service"
	"github.com/nimbusvault/nimbusvault/internal/storage"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	AuthService *service.AuthService
	FileService *service.FileService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage
	gateway, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(
		userRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.JWTNeverExpire,
	)
	fileService := service.NewFileService(fileRepository, gateway)

	return &App{
		Cfg:         cfg,
		DB:          database,
		AuthService: authService,
		FileService: fileService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
