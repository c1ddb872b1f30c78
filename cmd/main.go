/**
 * @description
 * This is the main entry point for the revenue-service. It is responsible for
 * initializing all components of the service, including configuration, database connection,
 * external API clients, message brokers, repositories, the core application service,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/robfig/cron/v3: Periodic metrics sync scheduler.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/graphclient: Client for the Facebook Graph API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/creatorhq/revenue-service/internal/api"
	"github.com/creatorhq/revenue-service/internal/app"
	"github.com/creatorhq/revenue-service/internal/config"
	"github.com/creatorhq/revenue-service/internal/store"
	"github.com/creatorhq/revenue-service/pkg/graphclient"
	rmrabbit "github.com/creatorhq/revenue-service/pkg/rabbitmq"
)

func main() {
	// A local .env is optional; environment variables always win.
	_ = godotenv.Load()

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting revenue-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish events. A broker outage
	// must not keep the service down, so fall back to a no-op publisher.
	var producer rmrabbit.Publisher
	eventProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &rmrabbit.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the client for the Facebook Graph API.
	if strings.TrimSpace(cfg.FacebookClientID) == "" || strings.TrimSpace(cfg.FacebookClientSecret) == "" {
		log.Println("level=warn component=bootstrap msg=\"facebook credentials missing; instagram linking disabled\" env=FACEBOOK_CLIENT_ID,FACEBOOK_CLIENT_SECRET")
	}
	graphClient := graphclient.NewClient(cfg.GraphAPIBaseURL, cfg.FacebookClientID, cfg.FacebookClientSecret)

	var redisClient *redis.Client
	if cfg.SyncRateLimitPerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; sync rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; sync rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; sync rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	revenueService := app.NewService(
		repository,
		graphClient,
		producer,
		&app.SimulatedRefresher{},
		app.LinkingConfig{
			ClientID:       cfg.FacebookClientID,
			ClientSecret:   cfg.FacebookClientSecret,
			RedirectURI:    cfg.InstagramRedirectURI,
			OAuthDialogURL: cfg.OAuthDialogURL,
		},
	)

	var rateLimiter app.RateLimiter
	if redisClient != nil {
		rateLimiter = app.NewRedisSyncRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
	}

	// Initialize the API handlers.
	revenueHandlers := api.NewRevenueHandlers(
		revenueService,
		rateLimiter,
		cfg.AppBaseURL,
		cfg.SyncRateLimitPerMinute,
		time.Minute,
	)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/api", api.RevenueRoutes(revenueHandlers, api.AuthConfig{
		JWKSURL:  cfg.AuthJWKSURL,
		Audience: cfg.AuthAudience,
		Issuer:   cfg.AuthIssuer,
	}, cfg.Origins()))

	// Start the periodic metrics sync.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncCronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		revenueService.SyncAllUsers(ctx)
	}); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"invalid sync cron schedule\" schedule=%q err=%v", cfg.SyncCronSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("level=info component=bootstrap msg=\"metrics sync scheduled\" schedule=%q", cfg.SyncCronSchedule)

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
