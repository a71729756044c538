package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"plate-backend/internal/config"
	"plate-backend/internal/env"
	"plate-backend/internal/infrastructure/expo"
	"plate-backend/internal/infrastructure/repo"
	"plate-backend/internal/infrastructure/stripe"
	"plate-backend/internal/ratelimit"
	"plate-backend/internal/server"
	"plate-backend/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dbURL := flag.String("database-url", envDefaults.DatabaseURL, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	webhookSecret := flag.String("stripe-webhook-secret", envDefaults.StripeWebhookSecret, "")
	rateTable := flag.String("ratelimit-table", envDefaults.RateLimitTable, "")

	flag.Parse()

	cfg := envDefaults
	cfg.Env = *envName
	cfg.Port = *port
	cfg.DatabaseURL = *dbURL
	cfg.JWTSecret = *jwtSecret
	cfg.StripeWebhookSecret = *webhookSecret
	cfg.RateLimitTable = *rateTable

	if cfg.StripeWebhookSecret == "" {
		log.Println("[main] warning: no stripe webhook secret configured, all webhook deliveries will be rejected")
	}

	var (
		orderRepo   usecase.OrderRepo
		txRepo      usecase.TransactionRepo
		profileRepo usecase.ProfileRepo
		mealRepo    usecase.MealRepo
		metroRepo   usecase.MetroRepo
		noteRepo    usecase.NotificationRepo
	)
	if cfg.DatabaseURL != "" {
		pg, err := repo.NewPostgresRepo(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[main] postgres init failed: %v", err)
		}
		orderRepo, txRepo, profileRepo, mealRepo, metroRepo, noteRepo = pg, pg, pg, pg, pg, pg
		log.Println("[main] using postgres repositories")
	} else {
		metro := repo.NewMemoryMetroRepo()
		orderRepo = repo.NewMemoryOrderRepo()
		txRepo = repo.NewMemoryTransactionRepo()
		profileRepo = repo.NewMemoryProfileRepo()
		mealRepo = repo.NewMemoryMealRepo()
		metroRepo, noteRepo = metro, metro
		log.Println("[main] no database url, using in-memory repositories")
	}

	limiter := buildLimiter(cfg)

	stripeClient := &stripe.Client{Key: cfg.StripeSecretKey}
	pusher := &expo.Client{AccessToken: cfg.ExpoAccessToken}

	orders := &usecase.OrderService{Repo: orderRepo, Meals: mealRepo, Intents: stripeClient}
	payments := &usecase.PaymentService{
		Orders:        orderRepo,
		Transactions:  txRepo,
		Profiles:      profileRepo,
		Notifications: noteRepo,
		Push:          pusher,
	}
	metro := &usecase.MetroService{
		Repo:            metroRepo,
		DefaultMakerCap: cfg.MetroMakerCap,
		DefaultTakerCap: cfg.MetroTakerCap,
	}
	auth := &usecase.AuthService{JWTSecret: cfg.JWTSecret}

	srv := server.New(cfg, orders, payments, metro, auth, limiter)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("[main] plate-backend (%s) listening on %s", cfg.Env, addr)
	if err := srv.Run(addr); err != nil {
		log.Fatalf("[main] server exited: %v", err)
	}
}

func buildLimiter(cfg config.Config) ratelimit.Limiter {
	if cfg.RateLimitTable == "" {
		log.Println("[main] rate limiting with in-process window counters")
		return ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Printf("[main] aws config failed (%v), falling back to in-process rate limiting", err)
		return ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	log.Printf("[main] rate limiting with dynamodb table %s", cfg.RateLimitTable)
	return ratelimit.NewDynamo(dynamodb.NewFromConfig(awsCfg), cfg.RateLimitTable, cfg.RateLimitMax, cfg.RateLimitWindow)
}
