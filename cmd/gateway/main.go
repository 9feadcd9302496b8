// The gateway binary is the single public entry point of the platform. It
// terminates CORS, then forwards each request to the backend registered for
// its first path segment.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/storegate/storegate/pkg/config"
	"github.com/storegate/storegate/pkg/gateway"
	"github.com/storegate/storegate/pkg/httpserver"
	"github.com/storegate/storegate/pkg/logger"
	"github.com/storegate/storegate/pkg/requestid"
)

type appConfig struct {
	Log     logger.Config
	Gateway gateway.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log,
		logger.WithService("gateway"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	routes, err := cfg.Gateway.ResolveRoutes()
	if err != nil {
		log.Error("failed to resolve routes", slog.String("error", err.Error()))
		os.Exit(1)
	}
	table, err := gateway.NewRouteTable(routes)
	if err != nil {
		log.Error("invalid route table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := gateway.NewRouter(table,
		gateway.WithUpstreamTimeout(cfg.Gateway.UpstreamTimeout),
		gateway.WithLogger(log),
	)
	cors := gateway.NewCORSPolicy(cfg.Gateway.AllowedOrigins)

	err = httpserver.Run(context.Background(), requestid.Middleware(cors.Middleware(router)),
		httpserver.WithAddr(cfg.Gateway.Addr),
		httpserver.WithLogger(log),
	)
	if err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
