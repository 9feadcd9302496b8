// The registry binary serves the operator-only tenant directory backed by
// the control-plane Postgres database.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/storegate/storegate/pkg/config"
	"github.com/storegate/storegate/pkg/httpserver"
	"github.com/storegate/storegate/pkg/logger"
	"github.com/storegate/storegate/pkg/pg"
	"github.com/storegate/storegate/pkg/requestid"
	"github.com/storegate/storegate/svc/registry"
)

type appConfig struct {
	Addr     string `env:"REGISTRY_ADDR" envDefault:":4100"`
	Log      logger.Config
	Postgres pg.Config
	Registry registry.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log,
		logger.WithService("registry"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	ctx := context.Background()

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	store := registry.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = httpserver.Run(ctx, requestid.Middleware(registry.Router(cfg.Registry, store, log)),
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
	)
	if err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
