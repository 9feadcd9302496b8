// The product binary serves the tenant-scoped catalog API. Each request
// arrives with signed tenant headers; the middleware resolves the tenant's
// own mongo database before any handler runs.
package main

import (
	"context"
	"log/slog"
	"os"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/storegate/storegate/pkg/config"
	"github.com/storegate/storegate/pkg/httpserver"
	"github.com/storegate/storegate/pkg/logger"
	"github.com/storegate/storegate/pkg/requestid"
	"github.com/storegate/storegate/pkg/tenant"
	"github.com/storegate/storegate/pkg/tenantconn"
	"github.com/storegate/storegate/svc/product"
)

type appConfig struct {
	Addr   string `env:"PRODUCT_ADDR" envDefault:":4300"`
	Log    logger.Config
	Tenant tenant.Config
	Mongo  tenantconn.MongoConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log,
		logger.WithService("product"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)

	conns := tenantconn.New(
		tenantconn.MongoDatabaseDialer(cfg.Mongo),
		tenantconn.WithCloser(tenantconn.MongoDatabaseCloser),
	)
	defer func() {
		if err := conns.Close(context.Background()); err != nil {
			log.Error("failed to close tenant connections", slog.String("error", err.Error()))
		}
	}()

	handler := product.Router(cfg.Tenant, conns, func(db *mongo.Database) product.Repository {
		return product.NewMongoRepository(db)
	}, log)

	err := httpserver.Run(context.Background(), requestid.Middleware(handler),
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
	)
	if err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
