package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/catalog"
	"github.com/AhmedSarhan/gamer-boy/internal/config"
	"github.com/AhmedSarhan/gamer-boy/internal/database"
	"github.com/AhmedSarhan/gamer-boy/internal/handler"
	"github.com/AhmedSarhan/gamer-boy/internal/hub"
	"github.com/AhmedSarhan/gamer-boy/internal/logging"
	"github.com/AhmedSarhan/gamer-boy/internal/rating"
	"github.com/AhmedSarhan/gamer-boy/internal/ratelimit"
	"github.com/AhmedSarhan/gamer-boy/internal/seed"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	// Swagger imports
	_ "github.com/AhmedSarhan/gamer-boy/docs" // registers the API docs served under /swagger
)

const shutdownTimeout = 10 * time.Second

// @title           Gamer Boy API
// @version         1.0
// @description     Catalog, search and rating API for the gamer-boy HTML5 game portal.
// @host            localhost:8080
// @BasePath        /api/v1
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "gamer-boy",
		Short:        "Game catalog and rating API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("database-url", "", "database DSN (DATABASE_URL)")
	flags.String("db-driver", "", "database driver: postgres|sqlite (DB_DRIVER)")
	flags.String("log-level", "", "log level: debug|info|warn|error (LOG_LEVEL)")
	flags.String("log-format", "", "log format: console|json (LOG_FORMAT)")
	flags.String("addr", "", "HTTP listen address (HTTP_ADDR)")
	flags.String("rate-limit-store", "", "rate limit store: memory|redis (RATE_LIMIT_STORE)")
	for key, name := range map[string]string{
		"DATABASE_URL":     "database-url",
		"DB_DRIVER":        "db-driver",
		"LOG_LEVEL":        "log-level",
		"LOG_FORMAT":       "log-format",
		"HTTP_ADDR":        "addr",
		"RATE_LIMIT_STORE": "rate-limit-store",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), v)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(v)
			},
		},
		&cobra.Command{
			Use:   "seed [catalog.json]",
			Short: "Load categories and games from a JSON catalog",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return runSeed(cmd.Context(), v, path)
			},
		},
	)
	return root
}

// bootstrap loads the configuration and installs logging. The returned func closes
// the log file, if any.
func bootstrap(v *viper.Viper) (*config.Config, func(), error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	w := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	closeLog := func() {
		if c, ok := w.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return cfg, closeLog, nil
}

func runMigrate(v *viper.Viper) error {
	cfg, closeLog, err := bootstrap(v)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	slog.Info("database migrated", "driver", cfg.DBDriver)
	return nil
}

func runSeed(ctx context.Context, v *viper.Viper, path string) error {
	cfg, closeLog, err := bootstrap(v)
	if err != nil {
		return err
	}
	defer closeLog()

	if path == "" {
		path = cfg.SeedFile
	}
	if path == "" {
		return errors.New("no catalog given: pass a path or set SEED_FILE")
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return loadSeed(ctx, db, path)
}

func loadSeed(ctx context.Context, db *gorm.DB, path string) error {
	c, err := seed.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, db, c)
	if err != nil {
		return fmt.Errorf("apply seed %s: %w", path, err)
	}
	slog.Info("catalog seeded",
		"file", path,
		"categories", res.Categories,
		"games", res.Games,
		"links", res.Links,
	)
	return nil
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, closeLog, err := bootstrap(v)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.SeedFile != "" {
		if err := loadSeed(ctx, db, cfg.SeedFile); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var store ratelimit.Store
	switch cfg.RateLimitStore {
	case "redis":
		client, err := ratelimit.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		store = ratelimit.NewRedisStore(client)
	default:
		mem := ratelimit.NewMemoryStore()
		g.Go(func() error { return mem.Run(ctx, ratelimit.SweepInterval) })
		store = mem
	}
	slog.Info("rate limiting enabled", "store", cfg.RateLimitStore)

	gin.SetMode(cfg.GinMode)
	events := hub.NewHub()
	h := handler.New(catalog.NewService(db), rating.NewService(db, events), events)
	router := handler.NewRouter(h, handler.RouterOptions{
		LimiterStore:   store,
		AllowedOrigins: cfg.AllowedOrigins(),
		Swagger:        cfg.GinMode != gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the server so rating streams close on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		slog.Info("server is running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
