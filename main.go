package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/savvythreads/server/internal/assistant"
	"github.com/savvythreads/server/internal/assistant/graph"
	"github.com/savvythreads/server/internal/assistant/graph/agents"
	"github.com/savvythreads/server/internal/assistant/llm"
	"github.com/savvythreads/server/internal/assistant/model"
	"github.com/savvythreads/server/internal/assistant/store"
	"github.com/savvythreads/server/internal/assistant/tools"
	"github.com/savvythreads/server/internal/core"
	"github.com/savvythreads/server/internal/server"
	logx "github.com/savvythreads/server/pkg/logger"
	pkgredis "github.com/savvythreads/server/pkg/redis"
)

// AppConfig defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure. Redis is optional; without a URL all state stays in
	// memory for the process lifetime.
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Structured   model.StructuredModelConfig
	Response     model.ResponseModelConfig
	Conversation model.ConversationConfig
	Server       model.ServerConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	var archive store.Archive
	if cfg.Redis.URL != "" {
		ttl, err := time.ParseDuration(cfg.Conversation.TTL)
		if err != nil {
			logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("invalid CONVERSATION_TTL")
		}
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()
		archive = store.NewRedisArchive(rdb, ttl)
		logx.Info().Msg("connected to Redis, archive enabled")
	} else {
		logx.Info().Msg("no REDIS_URL set, running with in-memory state only")
	}

	models, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Structured: &cfg.Structured,
		Response:   &cfg.Response,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create chat models")
	}

	registry := tools.NewRegistry(
		tools.NewRAGTool(tools.NewMemoryRetriever(nil)),
		tools.NewWebSearchTool(tools.NewStaticSearchProvider(nil)),
	)

	runner, err := graph.Build(ctx, agents.Deps{
		Structured:   models.Structured,
		Responder:    models.Response,
		Registry:     registry,
		Conversation: cfg.Conversation,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build workflow graph")
	}

	engine := assistant.NewOrchestrator(store.NewManager(cfg.Conversation, archive), runner)

	if err := server.Serve(ctx, cfg.Server.Addr, server.NewRouter(engine)); err != nil {
		logx.Fatal().Err(err).Msg("server failed")
	}
}
