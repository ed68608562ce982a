package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"chatwave/internal/adapter/api"
	"chatwave/internal/adapter/api/handler"
	apimiddleware "chatwave/internal/adapter/api/middleware"
	"chatwave/internal/adapter/api/router"
	"chatwave/internal/adapter/repository"
	"chatwave/internal/infrastructure/firebase"
	"chatwave/internal/infrastructure/ratelimit"
	"chatwave/internal/infrastructure/storage"
	"chatwave/internal/infrastructure/token"
	"chatwave/internal/infrastructure/websocket"
	"chatwave/internal/usecase"
	"chatwave/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (production) or file path
	// (local development).
	credentialsPath := os.Getenv("GOOGLE_SERVICE_ACCOUNT_PATH")
	if credentialsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"); credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	} else if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	googleVerifier := firebase.NewFirebaseAuthClient(authClient)
	tokenManager := token.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	wsManager := websocket.NewManager()

	authUseCase := usecase.NewAuthUseCase(userRepo, tokenManager, googleVerifier)
	userUseCase := usecase.NewUserUseCase(userRepo, storageClient)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, rateLimiter)
	messageUseCase := usecase.NewMessageUseCase(chatRepo, userRepo, rateLimiter)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(tokenManager)

	authHandler := handler.NewAuthHandler(authUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	chatHandler := handler.NewChatHandler(chatUseCase)
	messageHandler := handler.NewMessageHandler(messageUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, tokenManager)

	router.Setup(e, authMiddleware, authHandler, userHandler, chatHandler, messageHandler, wsHandler)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
