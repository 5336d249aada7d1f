package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dormdrop/internal/adapter/api"
	"dormdrop/internal/adapter/api/handler"
	apimiddleware "dormdrop/internal/adapter/api/middleware"
	"dormdrop/internal/adapter/api/router"
	"dormdrop/internal/adapter/repository"
	"dormdrop/internal/domain/service"
	"dormdrop/internal/infrastructure/ai"
	"dormdrop/internal/infrastructure/auth"
	"dormdrop/internal/infrastructure/database"
	"dormdrop/internal/infrastructure/mailer"
	"dormdrop/internal/infrastructure/pricing"
	"dormdrop/internal/infrastructure/ratelimit"
	"dormdrop/internal/infrastructure/sse"
	"dormdrop/internal/infrastructure/storage"
	"dormdrop/internal/usecase"
	"dormdrop/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Schema capabilities are fixed at startup; a deploy, not a request,
	// changes what the database can do.
	caps, err := database.DetectCapabilities(ctx, db)
	if err != nil {
		log.Fatalf("Failed to detect database capabilities: %v", err)
	}

	storageClient, err := storage.NewCloudStorageClient(
		ctx,
		cfg.StorageBucket,
		cfg.StorageCredentialsPath,
		cfg.UploadURLExpiry,
		cfg.ViewURLExpiry,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration())

	var mail service.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Printf("SMTP not configured, logging outbound mail instead")
		mail = mailer.NewLogMailer()
	}

	analyzer := ai.NewOpenAIAnalyzer(cfg.OpenAIApiKey, cfg.OpenAIModel)
	comps := pricing.NewEbayClient(cfg.EbayClientID, cfg.EbayClientSecret, cfg.EbayMarketplace, cfg.EbayEnv == "sandbox")

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine()

	sseManager := sse.NewManager()

	userRepo := repository.NewPostgresUserRepository(db)
	categoryRepo := repository.NewPostgresCategoryRepository(db)
	listingRepo := repository.NewPostgresListingRepository(db)
	savedListingRepo := repository.NewPostgresSavedListingRepository(db)
	chatRepo := repository.NewPostgresChatRepository(db, caps)

	authUseCase := usecase.NewAuthUseCase(userRepo, authenticator, mail, limiter)
	userUseCase := usecase.NewUserUseCase(userRepo, listingRepo)
	listingUseCase := usecase.NewListingUseCase(listingRepo, categoryRepo, savedListingRepo, userRepo, storageClient, analyzer, comps)
	savedListingUseCase := usecase.NewSavedListingUseCase(savedListingRepo, listingRepo, storageClient)
	chatUseCase := usecase.NewChatUseCase(chatRepo, listingRepo, storageClient, sseManager, limiter)

	handler.Setup(
		authUseCase,
		userUseCase,
		listingUseCase,
		savedListingUseCase,
		chatUseCase,
		authenticator,
		sseManager,
		storageClient,
		db,
		cfg.SSEHeartbeat,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authenticator)

	router.Setup(e, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
