package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hackseek/scraper/internal/engine"
	"github.com/hackseek/scraper/internal/fetch"
	"github.com/hackseek/scraper/internal/source"
	"github.com/hackseek/scraper/internal/store"
)

// env bundles the wired dependencies one command invocation uses.
type env struct {
	Store   store.Store
	Sources *source.Registry
	Engine  *engine.Engine
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "hackseek.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initRegistry wires every known adapter over one shared fetch client and
// narrows the set to the configured sources.
func initRegistry(only []string) (*source.Registry, error) {
	client := fetch.NewHTTPClient(fetch.Options{
		UserAgent:      cfg.Scrape.UserAgent,
		Timeout:        cfg.Scrape.RequestTimeout(),
		Delay:          cfg.Scrape.Delay(),
		MaxConnections: cfg.Scrape.MaxConnections,
	})

	reg := source.NewRegistry()
	reg.Register(source.NewDevpost(client))
	reg.Register(source.NewMLH(client))
	reg.Register(source.NewUnstop(client))
	reg.Register(source.NewHackerEarth(client))

	names := cfg.Scrape.Sources
	if len(only) > 0 {
		names = only
	}
	if len(names) == 0 {
		return reg, nil
	}

	selected, err := reg.Select(names)
	if err != nil {
		return nil, err
	}
	narrowed := source.NewRegistry()
	for _, s := range selected {
		narrowed.Register(s)
	}
	return narrowed, nil
}

func initEnv(ctx context.Context, only []string) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := initRegistry(only)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	eng := engine.New(reg, st, engine.Options{
		MaxItemsPerRun: cfg.Scrape.MaxItemsPerRun,
		Parallelism:    cfg.Scrape.MaxConnections,
	})

	return &env{Store: st, Sources: reg, Engine: eng}, nil
}
