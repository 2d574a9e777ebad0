package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/config"
	"github.com/TinsuJembere/shelearns-api/internal/database"
	"github.com/TinsuJembere/shelearns-api/internal/handler"
	"github.com/TinsuJembere/shelearns-api/internal/middleware"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
	"github.com/TinsuJembere/shelearns-api/internal/router"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/pkg/ai"
	cloud "github.com/TinsuJembere/shelearns-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	assistant, err := ai.NewOpenRouterAssistant(ai.OpenRouterConfig{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai assistant: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	mentorRequestRepo := repository.NewMentorRequestRepository(db)
	aiConversationRepo := repository.NewAIConversationRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)

	realtimeService := service.NewRealtimeService(redisClient, "shelearns", natsConn, logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, service.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, validate, logger)
	profileService := service.NewProfileService(userRepo, uploader, validate, logger)
	chatService := service.NewChatService(conversationRepo, messageRepo, userRepo, uploader, validate, logger)
	blogService := service.NewBlogService(blogRepo, realtimeService, validate, logger)
	mentorRequestService := service.NewMentorRequestService(mentorRequestRepo, userRepo, validate, logger)
	aiService := service.NewAIService(aiConversationRepo, assistant, validate, logger)
	subscribeService := service.NewSubscribeService(subscriberRepo, validate, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	realtimeService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Chat attachments go up to 10 MiB; leave headroom for multipart framing.
		BodyLimit: 12 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.FrontendURL,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, cfg.FrontendURL, logger),
		ProfileHandler:       handler.NewProfileHandler(profileService, logger),
		ChatHandler:          handler.NewChatHandler(chatService, logger),
		BlogHandler:          handler.NewBlogHandler(blogService, logger),
		MentorRequestHandler: handler.NewMentorRequestHandler(mentorRequestService, logger),
		AIHandler:            handler.NewAIHandler(aiService, logger),
		SubscribeHandler:     handler.NewSubscribeHandler(subscribeService, logger),
		RealtimeHandler:      handler.NewRealtimeHandler(realtimeService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
