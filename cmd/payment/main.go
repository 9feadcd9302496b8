// The payment binary serves the tenant-scoped checkout API. It creates
// hosted Paddle sessions and announces confirmed payments on the event bus.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/storegate/storegate/pkg/bus"
	"github.com/storegate/storegate/pkg/config"
	"github.com/storegate/storegate/pkg/httpserver"
	"github.com/storegate/storegate/pkg/logger"
	"github.com/storegate/storegate/pkg/payment"
	"github.com/storegate/storegate/pkg/requestid"
	"github.com/storegate/storegate/pkg/tenant"
	"github.com/storegate/storegate/pkg/tenantconn"
	"github.com/storegate/storegate/svc/checkout"
)

type appConfig struct {
	Addr   string `env:"PAYMENT_ADDR" envDefault:":8000"`
	Log    logger.Config
	Tenant tenant.Config
	Mongo  tenantconn.MongoConfig
	Paddle payment.PaddleConfig
	Redis  bus.RedisConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log,
		logger.WithService("payment"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)
	ctx := context.Background()

	provider, err := payment.NewPaddleProvider(cfg.Paddle)
	if err != nil {
		log.Error("failed to build payment provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := bus.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		_ = redisClient.Close()
	}()
	events := bus.NewRedisBus(redisClient, cfg.Redis, log)

	conns := tenantconn.New(
		tenantconn.MongoDialer(cfg.Mongo),
		tenantconn.WithCloser(tenantconn.MongoCloser),
	)
	defer func() {
		if err := conns.Close(context.Background()); err != nil {
			log.Error("failed to close tenant connections", slog.String("error", err.Error()))
		}
	}()

	handler := checkout.Router(cfg.Tenant, conns, provider, events, log)

	err = httpserver.Run(ctx, requestid.Middleware(handler),
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
	)
	if err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
