package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/db"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/blob"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/cache"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/config"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/token"
)

// deps is everything the journal needs at runtime. close releases it in
// reverse order of construction.
type deps struct {
	db        *sql.DB
	store     *store.PostgresStore
	blobs     *blob.FileStore
	summaries summaryCache
	owners    *cache.Owners
	journal   *service.Journal
	users     *service.Users
	closers   []io.Closer
}

type summaryCache interface {
	service.SummaryCache
	io.Closer
}

func buildDeps(cfg config.Config) (*deps, error) {
	d := &deps{}

	sqlDB, err := store.NewPostgresDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.db = sqlDB
	d.closers = append(d.closers, sqlDB)

	if cfg.Migrate {
		slog.Info("applying migrations")
		if err := store.MigrateUp(context.Background(), sqlDB, db.Migrations, db.MigrationsDir); err != nil {
			d.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	blobs, err := blob.NewFileStore(blob.FileStoreConfig{
		Root:      cfg.Images.Root,
		ServeRoot: cfg.Images.ServeRoot,
	})
	if err != nil {
		d.close()
		return nil, err
	}
	d.blobs = blobs

	if cfg.Redis.Enabled() {
		slog.Info("using redis summary cache", "addr", cfg.Redis.Addr())
		d.summaries = cache.NewRedisSummary(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.SummaryTTL,
		})
	} else {
		d.summaries = cache.NewMemorySummary(cache.MemoryConfig{
			MaxKeys: cfg.Cache.SummaryKeys,
			MaxCost: cfg.Cache.SummaryCost,
			TTL:     cfg.Cache.SummaryTTL,
		})
	}
	d.closers = append(d.closers, d.summaries)

	d.owners = cache.NewOwners(cfg.Cache.OwnerKeys, cfg.Cache.OwnerCost)
	d.closers = append(d.closers, d.owners)

	d.store = store.NewPostgresStore(sqlDB)
	d.journal = service.NewJournal(d.store, blobs,
		service.WithSummaryCache(d.summaries),
		service.WithOwnerCache(d.owners),
		service.WithLocation(cfg.Journal.Location()),
		service.WithMaxImageSize(cfg.Images.MaxSize),
	)

	issuer := token.NewJWTIssuer(token.JwtConfig{
		Secret: token.NewSecretString(cfg.Auth.Secret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	d.users = service.NewUsers(d.store, issuer, service.UsersConfig{BcryptCost: cfg.Auth.BcryptCost})

	return d, nil
}

// ready reports whether the database and, when configured, Redis answer.
func (d *deps) ready(ctx context.Context) error {
	if err := d.store.Ping(ctx); err != nil {
		return err
	}
	if p, ok := d.summaries.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (d *deps) close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	return errors.Join(errs...)
}
