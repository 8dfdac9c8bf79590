package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopbridge/internal/application"
	"shopbridge/internal/infrastructure/api"
	"shopbridge/internal/infrastructure/cache"
	"shopbridge/internal/infrastructure/repository"
	"shopbridge/internal/infrastructure/sessionstore"
	shopifyinfra "shopbridge/internal/infrastructure/shopify"
	"shopbridge/internal/ports"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	backendURL := os.Getenv("SESSION_BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:3000"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	webhookPath := os.Getenv("WEBHOOK_PATH")
	if webhookPath == "" {
		webhookPath = "/webhooks/shopify"
	}

	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_SECRET environment variable is required")
	}

	// Session storage is delegated to the external backend
	sessionStore := sessionstore.NewClient(backendURL, logger)

	// Optional webhook event audit log (MongoDB)
	var eventLog ports.WebhookEventLog
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())

		dbName := os.Getenv("MONGODB_DATABASE")
		if dbName == "" {
			dbName = "shopbridge"
		}
		eventLog = repository.NewMongoWebhookEventLog(client.Database(dbName))
		logger.Info().Msg("Webhook event audit log enabled")
	} else {
		logger.Info().Msg("MONGODB_URI not set, webhook event audit log disabled")
	}

	// Optional delivery dedup cache (Redis)
	var dedup ports.DeliveryCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		dedup = cache.NewRedisDeliveryCache(redis.NewClient(opts), logger)
		logger.Info().Msg("Webhook delivery dedup cache enabled")
	} else {
		logger.Info().Msg("REDIS_URL not set, webhook delivery dedup disabled")
	}

	// Initialize application services
	installations := application.NewInstallationService(sessionStore, logger)
	platformClient := shopifyinfra.NewClient(apiKey, apiSecret, logger)
	registry := application.NewWebhookRegistry(installations, platformClient, appURL+webhookPath, logger)
	bootstrapService := application.NewBootstrapService(sessionStore, registry, logger)

	webhookVerifier := shopifyinfra.NewWebhookVerifier(apiSecret)
	webhookHandler := api.NewWebhookHandler(webhookVerifier, registry, eventLog, dedup, logger)
	bootstrapHandler := api.NewBootstrapHandler(bootstrapService, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Inbound webhook dispatch endpoint
	r.Post(webhookPath, webhookHandler.ServeHTTP)

	// Bootstrap endpoint for the embedded UI
	r.Post("/api/bootstrap", bootstrapHandler.ServeHTTP)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
