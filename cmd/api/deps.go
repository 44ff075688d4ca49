package main

import (
	"log"

	"zvit/internal/domain/statement"
	"zvit/internal/infrastructure/bankapi"
	"zvit/internal/infrastructure/crypto"
	"zvit/internal/infrastructure/postgres"
	httphandlers "zvit/internal/interfaces/http"
	"zvit/internal/shared/auth"
	"zvit/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler        *httphandlers.AuthHandler
	UserHandler        *httphandlers.UserHandler
	AccountHandler     *httphandlers.AccountHandler
	TransactionHandler *httphandlers.TransactionHandler
	StatementHandler   *httphandlers.StatementHandler

	// Auth
	JWT *auth.JWT

	// Sync service (for scheduler jobs)
	SyncService *statement.Service

	// Repositories (for scheduler job provider)
	UserRepo *postgres.UserRepository
}

// NewDependencies initializes all application dependencies except the
// scheduler, which main wires separately so the statement handler can share
// its worker pool.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	userRepo := postgres.NewUserRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	bankClient := bankapi.NewClient(cfg.Bank.BaseURL)
	syncService := statement.NewService(bankClient, userRepo, accountRepo, transactionRepo, statement.Config{
		WebhookBaseURL:  cfg.Bank.WebhookBaseURL,
		RequestInterval: cfg.Bank.RequestInterval,
	})

	jwt := auth.NewJWT(cfg.JWT.Secret)

	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	userHandler := httphandlers.NewUserHandler(userRepo)
	accountHandler := httphandlers.NewAccountHandler(accountRepo)
	transactionHandler := httphandlers.NewTransactionHandler(transactionRepo)

	return &Dependencies{
		DB:                 db,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		AccountHandler:     accountHandler,
		TransactionHandler: transactionHandler,
		JWT:                jwt,
		SyncService:        syncService,
		UserRepo:           userRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
