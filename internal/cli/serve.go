package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/config"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/server"
	"github.com/matzehuels/squaremap/pkg/storage"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

The API stores layouts, renders them as SVG, recomputes them for a new
canvas size and hit-tests points against them. Storage and cache backends
come from the [storage] and [cache] config sections.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("storage") {
				cfg.Storage.Backend = backend
				if backend == config.StorageFile && cfg.Storage.Dir == "" {
					base, err := dataDir()
					if err != nil {
						return fmt.Errorf("get data dir: %w", err)
					}
					cfg.Storage.Dir = filepath.Join(base, "layouts")
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&backend, "storage", config.StorageMemory, "storage backend: memory, file, mongo")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe opens the storage and cache backends and serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st := &observability.Stats{}
	observability.Register(st)
	defer observability.Reset()

	srv := server.New(store, runner,
		server.WithLogger(c.Logger),
		server.WithStats(st),
		server.WithDefaults(pipeline.Options{
			Width:   cfg.Canvas.Width,
			Height:  cfg.Canvas.Height,
			Padding: cfg.Canvas.Padding,
			Palette: cfg.Palette.Fills,
			Content: cfg.Content,
		}))

	printInfo("Serving on %s", StyleLink.Render(listenURL(cfg.Server.Addr)))
	printKeyValue("Storage", cfg.Storage.Backend)
	printKeyValue("Cache", cacheLabel(cfg.Cache, noCache))

	err = srv.ListenAndServe(ctx, cfg.Server.Addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// openStore opens the configured storage backend.
func openStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Backend {
	case config.StorageMongo:
		s, err := storage.NewMongoStore(ctx, cfg.URI, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open mongo storage: %w", err)
		}
		return s, nil
	case config.StorageFile:
		s, err := storage.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func cacheLabel(cfg config.Cache, noCache bool) string {
	if noCache {
		return config.CacheNone
	}
	if cfg.Backend == config.CacheRedis {
		return cfg.Backend + " (" + cfg.Addr + ")"
	}
	return cfg.Backend
}
