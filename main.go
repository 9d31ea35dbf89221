package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/api"
	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/cache"
	"github.com/example/wordapi/internal/dashboard"
	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/excel"
	"github.com/example/wordapi/internal/scheduler"
	"github.com/example/wordapi/pkg/models"
)

func main() {
	seedRoles := flag.Bool("seed-roles", false, "seed the role fixtures and exit")
	createAdmin := flag.Bool("create-admin", false, "create an admin user and exit (requires -name, -email, -password)")
	adminName := flag.String("name", "", "admin name for -create-admin")
	adminEmail := flag.String("email", "", "admin email for -create-admin")
	adminPassword := flag.String("password", "", "admin password for -create-admin")
	importFile := flag.String("import-words", "", "import words from an Excel or CSV file and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := database.Connect(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if *seedRoles || *createAdmin || *importFile != "" {
		runCommands(logger, *seedRoles, *createAdmin, *adminName, *adminEmail, *adminPassword, *importFile)
		return
	}

	tokens, err := auth.NewManager(
		os.Getenv("JWT_SECRET_KEY"),
		time.Duration(envInt("HOURS_TO_JWT_ACCESS_TOKEN_EXPIRES", 1))*time.Hour,
		time.Duration(envInt("HOURS_TO_JWT_REFRESH_TOKEN_EXPIRES", 168))*time.Hour,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure tokens")
	}

	store := newCacheStore(logger)

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	server := api.NewServer(tokens, store, logger, api.Config{CORSOrigins: origins})

	if os.Getenv("CACHE_WARM_HOUR") != "" {
		warmer := scheduler.NewWarmer(dashboard.NewEngine(database.NewHistoricRepository()), store, logger)
		if err := warmer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start cache warmer")
		}
		defer warmer.Stop()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Router(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
		close(done)
	}()

	logger.Info().Str("addr", httpServer.Addr).Msg("server started")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
	<-done
	logger.Info().Msg("server stopped")
}

// runCommands executes the maintenance flags against the connected database
func runCommands(logger zerolog.Logger, seedRoles, createAdmin bool, name, email, password, importFile string) {
	ctx := context.Background()

	if seedRoles {
		if err := database.NewRoleRepository().Seed(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed roles")
		}
		logger.Info().Msg("roles seeded")
	}

	if createAdmin {
		if name == "" || email == "" || password == "" {
			logger.Fatal().Msg("-create-admin requires -name, -email and -password")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to hash password")
		}
		user := &models.User{
			Name:     name,
			Email:    strings.ToLower(email),
			Password: hash,
			IsAdmin:  true,
			Active:   true,
		}
		if err := database.NewUserRepository().Create(ctx, user, nil); err != nil {
			logger.Fatal().Err(err).Msg("failed to create admin")
		}
		logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("admin created")
	}

	if importFile != "" {
		config := excel.DefaultImportConfig()
		config.FilePath = importFile
		result, err := excel.ImportWords(ctx, config)
		if err != nil {
			logger.Fatal().Err(err).Msg("import failed")
		}
		for _, msg := range result.Errors {
			logger.Warn().Msg(msg)
		}
		logger.Info().
			Int("processed", result.TotalProcessed).
			Int("created", result.Created).
			Int("updated", result.Updated).
			Int("skipped", result.Skipped).
			Int("tags_created", result.TagsCreated).
			Msg("import finished")
	}
}

// newCacheStore picks Redis when configured, in-process memory otherwise
func newCacheStore(logger zerolog.Logger) cache.Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Info().Msg("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryStore()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", addr).Msg("failed to connect to redis")
	}
	logger.Info().Str("addr", addr).Msg("using redis cache")
	return cache.NewRedisStore(rdb, "wordapi")
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return fallback
}
