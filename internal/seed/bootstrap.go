package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sqlchat/sqlchat/internal/config"
	"github.com/sqlchat/sqlchat/internal/storage"
	"github.com/sqlchat/sqlchat/internal/store"
)

// Bootstrap seeds an empty store according to cfg. A store that already holds
// calendar rows is left untouched.
func Bootstrap(ctx context.Context, cfg config.SeedConfig, s *store.Store, objects storage.ObjectStore, logger *slog.Logger) (Counts, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Source == config.SeedSourceNone {
		logger.InfoContext(ctx, "seeding disabled")
		return Counts{}, nil
	}

	loader := NewLoader(s, logger)
	empty, err := loader.IsEmpty(ctx)
	if err != nil {
		return Counts{}, err
	}
	if !empty {
		logger.InfoContext(ctx, "store already holds calendar data, skipping seed")
		return Counts{}, nil
	}

	switch cfg.Source {
	case config.SeedSourceGenerated:
		ds := NewGenerator(cfg.Value).Generate(cfg.Users, cfg.Events, cfg.Tasks)
		logger.DebugContext(ctx, "generated seed dataset", slog.Int64("seed", cfg.Value))
		return loader.Load(ctx, ds)
	case config.SeedSourceObjectStore:
		if objects == nil {
			return Counts{}, fmt.Errorf("object store is required for seed source %q", cfg.Source)
		}
		manifest, files, err := FetchFiles(ctx, objects, cfg.Snapshot)
		if err != nil {
			return Counts{}, err
		}
		logger.DebugContext(ctx, "fetched seed snapshot",
			slog.String("snapshot", manifest.Name),
			slog.Int64("seed", manifest.Seed),
		)
		return loader.LoadParquet(ctx, files)
	default:
		return Counts{}, fmt.Errorf("unsupported seed source %q", cfg.Source)
	}
}
