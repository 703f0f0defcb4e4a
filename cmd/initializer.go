package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"bunkmate/internal/config"
	"bunkmate/internal/geo"
	"bunkmate/internal/handlers"
	"bunkmate/internal/repositories"
	"bunkmate/internal/services"
	"bunkmate/utils"
)

type application struct {
	errorLog        *log.Logger
	infoLog         *log.Logger
	signingKey      string
	db              *sql.DB
	userRepo        *repositories.UserRepository
	userHandler     *handlers.UserHandler
	draftHandler    *handlers.DraftHandler
	listingHandler  *handlers.ListingHandler
	favoriteHandler *handlers.FavoriteHandler
}

func initializeApp(cfg config.Config, db *sql.DB, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	listingRepo := repositories.ListingRepository{DB: db}
	captionRepo := repositories.CaptionRepository{DB: db}
	favoriteRepo := repositories.FavoriteRepository{DB: db}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	draftStore := &repositories.RedisDraftStore{RDB: rdb, TTL: 72 * time.Hour}

	storage := utils.NewPhotoStorage(cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.Endpoint)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	geocoder := geo.NewGeocodeClient(httpClient, cfg.Geo.GeocodeURL, cfg.Geo.GeocodeKey)
	router := geo.NewRouteClient(httpClient, cfg.Geo.RouteURL)

	tokenManager, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	fcmClient := newFCMClient(cfg.Firebase.CredentialsFile, infoLog)

	// Services
	userService := &services.UserService{UserRepo: &userRepo, TokenManager: tokenManager, SigningKey: cfg.JWT.SigningKey}
	draftService := &services.DraftService{Drafts: draftStore, Listings: &listingRepo, Captions: &captionRepo}
	submitService := &services.SubmitService{
		Drafts:   draftStore,
		Listings: &listingRepo,
		Captions: &captionRepo,
		Storage:  storage,
		Geocoder: geocoder,
		Router:   router,
	}
	listingService := &services.ListingService{
		ListingRepo: &listingRepo,
		CaptionRepo: &captionRepo,
		Storage:     storage,
		PublicURL:   storage.PublicURL,
	}
	favoriteService := &services.FavoriteService{
		FavoriteRepo: &favoriteRepo,
		ListingRepo:  &listingRepo,
		UserRepo:     &userRepo,
		FCM:          fcmClient,
	}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	draftHandler := &handlers.DraftHandler{Service: draftService}
	listingHandler := &handlers.ListingHandler{Service: listingService, Submit: submitService}
	favoriteHandler := &handlers.FavoriteHandler{Service: favoriteService}

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		signingKey:      cfg.JWT.SigningKey,
		db:              db,
		userRepo:        &userRepo,
		userHandler:     userHandler,
		draftHandler:    draftHandler,
		listingHandler:  listingHandler,
		favoriteHandler: favoriteHandler,
	}
}

// newFCMClient sets up Firebase messaging for favorite notifications. The
// server runs fine without credentials, pushes are simply skipped.
func newFCMClient(credentialsFile string, infoLog *log.Logger) *messaging.Client {
	if credentialsFile == "" {
		infoLog.Println("Firebase credentials not configured, push notifications disabled")
		return nil
	}
	fbApp, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		infoLog.Printf("Firebase init failed, push notifications disabled: %v", err)
		return nil
	}
	client, err := fbApp.Messaging(context.Background())
	if err != nil {
		infoLog.Printf("Firebase messaging init failed, push notifications disabled: %v", err)
		return nil
	}
	return client
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
