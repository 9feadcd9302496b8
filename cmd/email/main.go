// The email binary is the notify worker: it consumes payment events from
// the bus and sends order confirmations. Without Postmark credentials it
// falls back to the dev sender, which logs instead of delivering.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/storegate/storegate/pkg/bus"
	"github.com/storegate/storegate/pkg/config"
	"github.com/storegate/storegate/pkg/logger"
	"github.com/storegate/storegate/pkg/mailer"
	"github.com/storegate/storegate/svc/notify"
)

type appConfig struct {
	Log   logger.Config
	Mail  mailer.Config
	Redis bus.RedisConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, logger.WithService("email"))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender mailer.Sender
	if cfg.Mail.PostmarkServerToken != "" {
		var err error
		sender, err = mailer.NewPostmarkSender(cfg.Mail)
		if err != nil {
			log.Error("failed to build postmark sender", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		log.Warn("no postmark credentials, using dev sender")
		sender = mailer.NewDevSender(log)
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

	worker := notify.NewWorker(sender, log)
	log.Info("notify worker started")
	if err := worker.Run(ctx, events); err != nil && ctx.Err() == nil {
		log.Error("worker exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("notify worker stopped")
}
