package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/config"
	"github.com/yakoovad/productsite/internal/db"
	"github.com/yakoovad/productsite/internal/repository"
	"github.com/yakoovad/productsite/internal/slot"
	"go.uber.org/zap"
)

// contentSource is the configured Source plus whatever backs it. Exactly one
// of files and pool is set.
type contentSource struct {
	repository.Source

	files *repository.FileSource
	pool  *pgxpool.Pool
}

func (s *contentSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func openSource(ctx context.Context, cfg *config.Config) (*contentSource, error) {
	switch cfg.Content.Source {
	case config.SourcePostgres:
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		appLogger.Info("database connection established")

		source := repository.NewPgxSource(
			repository.NewPgxPageRepository(pool),
			repository.NewPgxPostRepository(pool),
			repository.NewPgxMemberRepository(pool),
		)
		return &contentSource{Source: source, pool: pool}, nil
	default:
		files, err := repository.NewFileSource(cfg.Content.Dir)
		if err != nil {
			return nil, err
		}
		appLogger.Info("content loaded",
			zap.String("dir", cfg.Content.Dir),
			zap.Int("pages", len(files.Pages())),
			zap.Int("posts", len(files.Posts())))
		return &contentSource{Source: files, files: files}, nil
	}
}

func newComposer(source repository.Source, cfg *config.Config) (*slot.Composer, error) {
	registry, err := slot.Catalog(source, cfg.Options())
	if err != nil {
		return nil, errors.Wrap(err, "build slot catalog")
	}
	return slot.NewComposer(registry, cfg.Options())
}
