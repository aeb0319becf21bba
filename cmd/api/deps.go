package main

import (
	"fmt"
	"log"

	"banklink/internal/domain/linking"
	"banklink/internal/infrastructure/crypto"
	"banklink/internal/infrastructure/plaid"
	"banklink/internal/infrastructure/postgres"
	httphandlers "banklink/internal/interfaces/http"
	"banklink/internal/shared/auth"
	"banklink/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler        *httphandlers.AuthHandler
	LinkHandler        *httphandlers.LinkHandler
	EnvironmentHandler *httphandlers.EnvironmentHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize encryptor for access tokens at rest
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	itemRepo := postgres.NewItemRepository(db)

	// Initialize Plaid client with every configured environment
	credentials := make(map[plaid.Environment]plaid.Credentials, len(cfg.Plaid.Credentials))
	for name, creds := range cfg.Plaid.Credentials {
		env, err := plaid.ParseEnvironment(name)
		if err != nil {
			db.Close()
			return nil, err
		}
		credentials[env] = plaid.Credentials{ClientID: creds.ClientID, Secret: creds.Secret}
	}

	defaultEnv, err := plaid.ParseEnvironment(cfg.Plaid.DefaultEnvironment)
	if err != nil {
		db.Close()
		return nil, err
	}

	plaidClient, err := plaid.NewClient(plaid.Options{
		Credentials: credentials,
		ClientName:  cfg.Plaid.ClientName,
		RedirectURI: cfg.Plaid.RedirectURI,
	}, defaultEnv)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize Plaid client: %w", err)
	}
	log.Printf("Plaid client initialized (environment=%s)", plaidClient.CurrentEnvironment())

	// Initialize domain services
	linkingService := linking.NewService(plaidClient, itemRepo, encryptor)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	linkHandler := httphandlers.NewLinkHandler(linkingService)
	environmentHandler := httphandlers.NewEnvironmentHandler(plaidClient)

	return &Dependencies{
		DB:                 db,
		AuthHandler:        authHandler,
		LinkHandler:        linkHandler,
		EnvironmentHandler: environmentHandler,
		JWT:                jwt,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
