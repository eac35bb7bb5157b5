package main

import (
	"context" // context package is needed for Redis operations

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Prometheus registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/sirupsen/logrus"                                // Logrus for structured logging

	"yamdb/internal/api"     // Custom package for API handlers
	"yamdb/internal/auth"    // Signup and token exchange
	"yamdb/internal/config"  // Custom package for configuration
	"yamdb/internal/db"      // Database connection
	"yamdb/internal/metrics" // Prometheus collectors
	"yamdb/internal/notify"  // Confirmation code delivery
	"yamdb/internal/store"   // Persistence
	"yamdb/internal/utils"   // Token issuer
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client, caching stays off without REDIS_ADDR
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logrus.Warn("REDIS_ADDR not set, list caching disabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	// Stores and services
	users := store.NewUserStore(gdb)
	authService := auth.NewService(
		users,
		notify.NewLogNotifier(logrus.StandardLogger()),
		utils.JWTIssuer{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
	)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		Catalog:   store.NewCatalogStore(gdb),
		Reviews:   store.NewReviewStore(gdb),
		Users:     users,
		Auth:      authService,
		Cache:     api.Cache{Redis: redisClient, TTL: cfg.CacheTTL, Metrics: m},
		Metrics:   m,
		JWTSecret: cfg.JWTSecret,
		PageSize:  cfg.PageSize,
	})

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
