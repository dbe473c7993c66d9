package main

// @title           csvrag API
// @version         1.0
// @description     Upload CSV files and ask natural-language questions about them.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/custodia-labs/csvrag/docs"
	"github.com/custodia-labs/csvrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/csvrag/internal/adapters/driven/auth"
	"github.com/custodia-labs/csvrag/internal/adapters/driven/cache"
	"github.com/custodia-labs/csvrag/internal/adapters/driven/mongo"
	"github.com/custodia-labs/csvrag/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/csvrag/internal/adapters/driven/redis"
	"github.com/custodia-labs/csvrag/internal/adapters/driving/http"
	"github.com/custodia-labs/csvrag/internal/config"
	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
	"github.com/custodia-labs/csvrag/internal/core/services"
	"github.com/custodia-labs/csvrag/internal/runtime"
)

var version = "dev"

func main() {
	// Run mode from command line arg: "api" (default) or "token <subject>"
	mode := "api"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "api":
		runAPI()
	case "token":
		if len(os.Args) < 3 {
			log.Fatal("Usage: csvrag token <subject>")
		}
		runToken(os.Args[2])
	case "version":
		fmt.Println(version)
	default:
		log.Fatalf("Unknown mode: %s (use: api, token or version)", mode)
	}
}

func runAPI() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	log.Printf("csvrag %s starting", version)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ===== Document store =====
	backend, _ := cfg.StoreBackend()
	store, err := connectStore(ctx, backend, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", backend, err)
	}
	log.Printf("Document store connected (backend=%s)", backend)

	cacheEnabled := cfg.CacheSize > 0
	if cacheEnabled {
		store = cache.NewFileStore(store, cfg.CacheSize, cfg.CacheTTL())
		log.Printf("File cache enabled (size=%d, ttl=%s)", cfg.CacheSize, cfg.CacheTTL())
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: closing document store: %v", err)
		}
	}()

	// ===== Runtime services =====
	runtimeConfig := domain.NewRuntimeConfig(backend, cacheEnabled)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	aiFactory := ai.NewFactory()
	completion, err := aiFactory.CreateCompletionService(&cfg.LLM)
	switch {
	case err != nil:
		log.Fatalf("Invalid completion settings: %v", err)
	case completion == nil:
		log.Println("Warning: OPENAI_API_KEY not set, query endpoints will return upstream_error")
	default:
		if err := runtimeServices.ValidateAndSetCompletion(ctx, completion); err != nil {
			log.Printf("Warning: completion service unreachable: %v (query endpoints disabled)", err)
		} else {
			log.Printf("Completion service ready (provider=%s, model=%s)", cfg.LLM.Provider, completion.Model())
		}
	}

	// ===== Auth (optional) =====
	var tokenAdapter driven.TokenAdapter
	if cfg.AuthJWTSecret != "" {
		tokenAdapter = auth.NewAdapter(cfg.AuthJWTSecret)
		log.Println("Bearer token auth enabled")
	}

	// ===== Services (core business logic) =====
	authService := services.NewAuthService(tokenAdapter)
	fileService := services.NewFileService(services.FileServiceConfig{
		Store:          store,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ProjectDir:     cfg.ProjectDir,
	})
	queryService := services.NewQueryService(store, runtimeServices, logger)

	log.Printf("Runtime config: store_backend=%s, cache=%t, llm=%t",
		runtimeConfig.StoreBackend,
		runtimeConfig.CacheEnabled,
		runtimeConfig.LLMAvailable())

	server := http.NewServer(
		http.Config{
			Host:           cfg.Host,
			Port:           cfg.Port,
			Version:        version,
			CORSOrigins:    cfg.CORSOrigins,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		authService,
		fileService,
		queryService,
		runtimeServices,
		store,
		logger,
	)

	// Blocks until SIGINT/SIGTERM, then drains in-flight requests
	if err := server.Start(); err != nil {
		log.Printf("Server error: %v", err)
	}
}

// connectStore opens the document store matching the database URL scheme
func connectStore(ctx context.Context, backend, url string) (driven.FileStore, error) {
	switch backend {
	case config.BackendMongo:
		store, err := mongo.Connect(ctx, mongo.DefaultConfig(url))
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(url))
		if err != nil {
			return nil, err
		}
		return postgres.NewFileStore(db), nil
	case config.BackendRedis:
		return redisadapter.Connect(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}

// runToken prints a bearer token for subject signed with AUTH_JWT_SECRET
func runToken(subject string) {
	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.AuthJWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET must be set to issue tokens")
	}

	authService := services.NewAuthService(auth.NewAdapter(cfg.AuthJWTSecret))
	token, err := authService.IssueToken(context.Background(), subject)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
