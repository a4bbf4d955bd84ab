package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sqlchat/sqlchat/internal/api"
	"github.com/sqlchat/sqlchat/internal/chat"
	"github.com/sqlchat/sqlchat/internal/config"
	"github.com/sqlchat/sqlchat/internal/llm"
	"github.com/sqlchat/sqlchat/internal/migrations"
	"github.com/sqlchat/sqlchat/internal/nl2sql"
	"github.com/sqlchat/sqlchat/internal/observability"
	"github.com/sqlchat/sqlchat/internal/query"
	"github.com/sqlchat/sqlchat/internal/seed"
	"github.com/sqlchat/sqlchat/internal/storage"
	s3store "github.com/sqlchat/sqlchat/internal/storage/s3"
	"github.com/sqlchat/sqlchat/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg, err := config.LoadFromEnv("sqlchat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	db, err := store.Open(startupCtx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Error("failed to open store", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	runner, err := migrations.NewRunner(db.Driver())
	if err != nil {
		logger.Error("failed to load migrations", slog.Any("error", err))
		os.Exit(1)
	}
	applied, err := runner.Up(startupCtx, db.DB(), 0)
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("store ready", slog.String("driver", db.Driver()), slog.Int("migrations_applied", applied))

	var objects storage.ObjectStore
	if cfg.Seed.Source == config.SeedSourceObjectStore {
		objects, err = s3store.New(startupCtx, s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
	}

	counts, err := seed.Bootstrap(startupCtx, cfg.Seed, db, objects, logger)
	if err != nil {
		logger.Error("failed to seed store", slog.String("source", cfg.Seed.Source), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete",
		slog.String("source", cfg.Seed.Source),
		slog.Int("users", counts.Users),
		slog.Int("events", counts.Events),
		slog.Int("tasks", counts.Tasks),
	)

	var completer llm.Completer
	if cfg.AI.APIKey == "" {
		logger.Warn("SQLCHAT_AI_API_KEY is not set; generation and summaries will fall back")
	} else {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize completion client", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("completion client ready", slog.String("model", client.Model()))
		completer = client
	}

	generator := nl2sql.NewGenerator(completer, nl2sql.GeneratorConfig{
		MaxTokens:   cfg.AI.QueryMaxTokens,
		Temperature: cfg.AI.QueryTemperature,
		Timeout:     cfg.AI.Timeout,
	}, logger)
	summarizer := nl2sql.NewSummarizer(completer, nl2sql.SummarizerConfig{
		MaxTokens:   cfg.AI.SummaryMaxTokens,
		Temperature: cfg.AI.SummaryTemperature,
		Timeout:     cfg.AI.Timeout,
	}, logger)
	executor := query.NewExecutor(db, query.Options{
		ReadOnly: cfg.Query.ReadOnly,
		MaxRows:  cfg.Query.MaxRows,
		Timeout:  cfg.Query.Timeout,
	}, logger)

	defaultStrategy, err := nl2sql.ParseStrategy(cfg.Chat.DefaultStrategy)
	if err != nil {
		logger.Error("invalid default strategy", slog.Any("error", err))
		os.Exit(1)
	}
	registry := chat.NewRegistry(chat.Pipeline{
		Generator:  generator,
		Executor:   executor,
		Summarizer: summarizer,
	}, chat.Options{
		DefaultStrategy:  defaultStrategy,
		RejectConcurrent: cfg.Chat.RejectConcurrent,
	}, cfg.Chat.MaxSessions, logger)

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(api.CheckStore(db), api.CheckCompletionConfig(cfg)),
		DependencyTimeout: time.Second,
		Sessions:          registry,
		Generator:         generator,
		Executor:          executor,
		DefaultStrategy:   defaultStrategy,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
