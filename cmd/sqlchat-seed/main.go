package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sqlchat/sqlchat/internal/config"
	"github.com/sqlchat/sqlchat/internal/observability"
	"github.com/sqlchat/sqlchat/internal/seed"
	s3store "github.com/sqlchat/sqlchat/internal/storage/s3"
)

func main() {
	action := flag.String("action", "publish", "seed action: publish|list|show")
	snapshot := flag.String("snapshot", "", "snapshot name; defaults to SQLCHAT_SEED_SNAPSHOT or a timestamped name")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg, err := config.LoadFromEnv("sqlchat-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objects, err := s3store.New(ctx, s3store.Config{
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

	name := *snapshot
	if name == "" {
		name = cfg.Seed.Snapshot
	}

	switch *action {
	case "publish":
		if name == "" {
			name = "seed-" + time.Now().UTC().Format("20060102T150405Z")
		}
		ds := seed.NewGenerator(cfg.Seed.Value).Generate(cfg.Seed.Users, cfg.Seed.Events, cfg.Seed.Tasks)
		manifest, err := seed.Publish(ctx, objects, name, cfg.Seed.Value, ds)
		if err != nil {
			logger.Error("failed to publish snapshot", slog.String("snapshot", name), slog.Any("error", err))
			os.Exit(1)
		}
		counts := ds.Counts()
		logger.Info("snapshot published",
			slog.String("snapshot", manifest.Name),
			slog.Int64("seed", manifest.Seed),
			slog.Int("users", counts.Users),
			slog.Int("events", counts.Events),
			slog.Int("tasks", counts.Tasks),
		)
	case "list":
		names, err := seed.ListSnapshots(ctx, objects)
		if err != nil {
			logger.Error("failed to list snapshots", slog.Any("error", err))
			os.Exit(1)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	case "show":
		if name == "" {
			logger.Error("-snapshot is required for show")
			os.Exit(1)
		}
		manifest, err := seed.ReadManifest(ctx, objects, name)
		if err != nil {
			logger.Error("failed to read snapshot manifest", slog.String("snapshot", name), slog.Any("error", err))
			os.Exit(1)
		}
		encoded, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			logger.Error("failed to encode manifest", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Println(string(encoded))
	default:
		logger.Error("invalid action", slog.String("action", *action))
		os.Exit(1)
	}
}
