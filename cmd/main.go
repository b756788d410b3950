package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/mail"
	"julianmorley.ca/con-plar/storefront/pkg/metrics"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/rabbitmq"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
	"julianmorley.ca/con-plar/storefront/pkg/storage"
	"julianmorley.ca/con-plar/storefront/pkg/wishlist"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := global.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := global.GetDefaultTimer()
	store, err := mongo.Connect(startCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		cancel()
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Printf("Warning: failed to ensure indexes: %v", err)
	}

	redisClient, err := redis.NewClient(startCtx, cfg.RedisAddress, cfg.RedisPassword)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddress, err)
	}
	log.Printf("Connected to Redis at %s", cfg.RedisAddress)

	appMetrics, shutdownMetrics, err := metrics.Init(ctx, metrics.Options{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	var events orders.Publisher
	var pool *rabbitmq.ChannelPool
	if cfg.RabbitMQURL != "" {
		pool, err = rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize)
		if err != nil {
			log.Printf("Warning: order events disabled: %v", err)
		} else {
			events = rabbitmq.NewPublisher(pool, cfg.RabbitMQQueue)
		}
	} else {
		log.Println("Order events disabled - RABBITMQ_URL not set")
	}

	var images *storage.ImageStore
	if cfg.GCSBucket != "" {
		gcsClient, err := storage.NewClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			log.Printf("Warning: image uploads disabled: %v", err)
		} else {
			images = storage.NewImageStore(gcsClient, cfg.GCSBucket)
			defer gcsClient.Close()
		}
	} else {
		log.Println("Image uploads disabled - GCS_BUCKET not set")
	}

	var mailer mail.Sender = mail.LogSender{}
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.SendGridFrom)
	}

	var analyst orders.Analyst
	if client := ai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIDeployment); client != nil {
		analyst = client
	}

	authService := auth.NewService(
		store,
		auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		redis.NewResetTokenStore(redisClient),
		mailer,
		cfg.ResetPasswordBaseURL,
	)

	h := router.NewHandler(router.Deps{
		DB:       store,
		Auth:     authService,
		Products: catalog.NewService(store, images, appMetrics),
		Carts:    cart.NewService(store, catalog.NewReader(store), appMetrics),
		Orders:   orders.NewService(store, events, appMetrics, analyst),
		Wishlist: wishlist.NewService(store, store),
		Images:   images,
	})

	engine := router.NewEngine(cfg.IsProduction(), cfg.CORSOrigins, appMetrics)
	router.InitializeRoutes(engine, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if pool != nil {
		pool.Close()
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		log.Printf("Metrics shutdown error: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
