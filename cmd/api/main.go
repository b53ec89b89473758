package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"jobtrackerhub/internal/config"
	"jobtrackerhub/internal/db"
	"jobtrackerhub/internal/email"
	apihttp "jobtrackerhub/internal/http"
	"jobtrackerhub/internal/repository"
	"jobtrackerhub/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	// JWT_SECRET y DATABASE_URL son obligatorios: el proceso no arranca
	// sin clave de firma, una clave aleatoria invalidaria tokens emitidos.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	appRepo := repository.NewPgApplicationRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	rateWindow := time.Duration(cfg.AuthRateWindowM) * time.Minute
	var authLimiter, resetLimiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			authLimiter = service.NewRedisRateLimiter(redisClient, rateWindow, cfg.AuthRateMax, logger)
			resetLimiter = service.NewRedisRateLimiter(redisClient, rateWindow, cfg.AuthRateMax, logger)
		}
		cancel()
	}
	if authLimiter == nil {
		memLimiter := service.NewFixedWindowRateLimiter(rateWindow, cfg.AuthRateMax, logger)
		memLimiter.StartCleanup()
		defer memLimiter.Stop()
		authLimiter = memLimiter

		memResetLimiter := service.NewFixedWindowRateLimiter(rateWindow, cfg.AuthRateMax, logger)
		memResetLimiter.StartCleanup()
		defer memResetLimiter.Stop()
		resetLimiter = memResetLimiter
	}

	tokens := service.NewTokenService(cfg.JWTSecret, logger)
	authSvc := service.NewAuthService(logger, userRepo, tokens, emailSender, resetLimiter, cfg.AppURL)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokens)
	appHandler := apihttp.NewApplicationHandler(logger, appRepo)
	router := apihttp.NewRouter(logger, authHandler, appHandler, tokens, authLimiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
