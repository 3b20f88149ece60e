package main

import (
	"bearer-auth-server/config"
	_ "bearer-auth-server/docs"
	"bearer-auth-server/internal/handler"
	"bearer-auth-server/internal/middleware"
	"bearer-auth-server/internal/notifier"
	"bearer-auth-server/internal/ports"
	"bearer-auth-server/internal/repository"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/service"
	"bearer-auth-server/internal/util"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Bearer-auth-server
// @version 1.0
// @description Выдача, обновление и отзыв access/refresh токенов

// @host localhost:8080

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.basic BasicAuth
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		slog.Error("ошибка загрузки конфигурации", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format))

	refreshTokens, users, closeStorage := setupStorage(ctx, cfg)
	defer closeStorage()

	redisClient := setupOptionalRedis(cfg)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("ошибка при закрытии Redis", "error", err)
			}
		}()
		if cfg.PrincipalCache.Enabled {
			users = repository.NewCachedUserRepository(users, repository.NewCacheRepository(redisClient, cfg.PrincipalCache.TTLDuration))
		}
	}

	keys, err := security.NewKeyManager(&cfg.JWT)
	if err != nil {
		slog.Error("ошибка загрузки ключа подписи", "error", err)
		os.Exit(1)
	}
	jwtService := security.NewJWTService(&cfg.JWT, cfg.BaseURL, keys)

	var keySource security.KeySource = security.NewLocalKeySource(keys)
	if cfg.KeyCache.JWKSURL != "" {
		keySource = security.NewHTTPKeySource(cfg.KeyCache.JWKSURL, cfg.KeyCache.FetchTimeoutDuration)
	}
	verifier := security.NewVerifier(security.NewKeyCache(keySource, cfg.KeyCache.TTLDuration), cfg.BaseURL)

	var emailNotifier ports.Notifier = notifier.LogNotifier{}
	if cfg.AMQP.URL != "" {
		emailNotifier = notifier.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Queue)
	}

	var avatars ports.S3Storage
	if cfg.S3Config.Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
		if err != nil {
			slog.Warn("S3 недоступен, ссылки на аватары не подписываются", "error", err)
		} else {
			avatars = s3Service
		}
	}

	tokenService := service.NewTokenService(refreshTokens, users, jwtService, &cfg.RefreshToken)
	authService := service.NewAuthenticationService(users, cfg.AMQP.Locale, tokenService, notifier.NewWelcomeObserver(emailNotifier))
	accountService := service.NewAccountService(avatars, cfg.S3Config.PresignTTLDuration)

	if cfg.RefreshToken.PurgeIntervalDuration > 0 {
		go tokenService.RunJanitor(ctx, cfg.RefreshToken.PurgeIntervalDuration)
	}

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.ResponseTime)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	var limiter func(http.Handler) http.Handler
	if redisClient != nil && cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(&cfg.RateLimit, redisClient.Client).Handler
	}

	authMiddleware := security.JWTMiddleware(verifier)
	setupHealthRoutes(router, handler.NewHealthHandler(keys))
	setupAuthRoutes(router, handler.NewAuthenticationHandler(tokenService, authService), authMiddleware, limiter)
	setupAccountRoutes(router, handler.NewAccountHandler(accountService), authMiddleware)

	runServer(ctx, srv)
}

func setupStorage(ctx context.Context, cfg *config.AppConfig) (ports.RefreshTokenStore, ports.UserRepository, func()) {
	if cfg.Storage.Driver == "memory" {
		slog.Warn("используется хранилище в памяти, данные не переживут рестарт")
		return repository.NewMemoryRefreshTokenRepository(), repository.NewMemoryUserRepository(), func() {}
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		slog.Error("не удалось подключиться к БД", "error", err)
		os.Exit(1)
	}

	if cfg.DatabaseConfig.Migrate {
		if err := db.Migrate(ctx); err != nil {
			slog.Error("ошибка применения миграций", "error", err)
			os.Exit(1)
		}
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("ошибка при закрытии БД", "error", err)
		}
	}
	return repository.NewRefreshTokenRepository(db), repository.NewUserRepository(db), closeDB
}

// setupOptionalRedis : без Redis сервис работает без кэша principal и без rate limit
func setupOptionalRedis(cfg *config.AppConfig) *config.RedisClient {
	if cfg.RedisConfig.Addr == "" {
		return nil
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		slog.Warn("Redis недоступен, кэш и rate limit отключены", "error", err)
		return nil
	}
	return redisClient
}

func setupHealthRoutes(r chi.Router, h *handler.HealthHandler) {
	r.Get("/health", h.Health)
	r.Get("/.well-known/jwks.json", h.JWKS)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, authMiddleware, limiter func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/tokens", h.IssueTokens)
		})
		r.Group(func(r chi.Router) {
			r.Post("/refresh", h.Refresh)
			r.Post("/revoke", h.Revoke)
			r.Get("/sign-in", h.SignInBasic)
			r.Post("/sign-in", h.SignInBasic)
			r.Post("/sign-in/email", h.SignInEmail)
			r.Post("/sign-up/email", h.SignUpEmail)
		})
	})
}

func setupAccountRoutes(r chi.Router, h *handler.AccountHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/account/v1", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/profile", h.Profile)
		r.Get("/posts", h.Posts)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("сервер запущен", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ошибка работы сервера", "error", err)
			return
		}
	case sig := <-signalChannel:
		slog.Info("получен сигнал остановки работы сервера", "signal", sig.String())
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		slog.Error("ошибка при остановке сервера", "error", err)
	} else {
		slog.Info("сервер успешно остановлен")
	}
}
