package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sahilchouksey/course-catalog/api"
	"github.com/sahilchouksey/course-catalog/config"
	"github.com/sahilchouksey/course-catalog/database"
	authhandler "github.com/sahilchouksey/course-catalog/handlers/auth"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/router"
	"github.com/sahilchouksey/course-catalog/services/cron"
	"github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/cache"
	"github.com/sahilchouksey/course-catalog/utils/logger"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
	"github.com/sahilchouksey/course-catalog/utils/storage"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}
	if getEnv.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	log, err := logger.New(getEnv.GO_ENV)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer log.Sync()

	store, err := database.StartGORM(getEnv, log)
	if err != nil {
		log.Error("database unreachable, check that it is running", "driver", getEnv.DB_DRIVER, "error", err)
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Error("failed to initialize database tables", "error", err)
		return err
	}

	repo := repository.New(store, log, repository.WithPageSize(getEnv.PAGE_SIZE))
	blacklist := auth.NewBlacklistService(repo)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        getEnv.JWT_ACCESS_EXPIRY,
		RefreshExpiry: getEnv.JWT_REFRESH_EXPIRY,
		Issuer:        getEnv.JWT_ISSUER,
	})

	// Redis backs brute force protection; without it logins are unguarded.
	var bruteForce *middleware.BruteForceProtection
	if getEnv.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn("redis unavailable, brute force protection disabled", "error", err)
		} else {
			defer redisCache.Close()
			bruteForce = middleware.NewBruteForceProtection(redisCache, log)
		}
	}

	var avatars authhandler.AvatarStore
	spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: getEnv.DO_SPACES_KEY,
		SecretKey: getEnv.DO_SPACES_SECRET,
		Bucket:    getEnv.DO_SPACES_BUCKET,
		Region:    getEnv.DO_SPACES_REGION,
		Endpoint:  getEnv.DO_SPACES_ENDPOINT,
		CDNURL:    getEnv.DO_SPACES_CDN_URL,
	})
	switch {
	case err == nil:
		avatars = spaces
	case errors.Is(err, storage.ErrNotConfigured):
		log.Info("avatar storage not configured, uploads disabled")
	default:
		log.Warn("avatar storage unavailable", "error", err)
	}

	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(repo, blacklist, log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", "error", err)
			cronManager = nil
		}
	}
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), middleware.SecurityConfig{
		AllowedOrigins:    getEnv.CORS_ORIGINS,
		RateLimitRequests: getEnv.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   getEnv.RATE_LIMIT_WINDOW,
		RequestLog:        !getEnv.IsProduction(),
	}, log)

	router.SetupRoutes(server.GetEngine(), router.Dependencies{
		Repo:       repo,
		JWT:        jwtManager,
		Blacklist:  blacklist,
		BruteForce: bruteForce,
		Avatars:    avatars,
		Log:        log,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	return server.Run()
}
