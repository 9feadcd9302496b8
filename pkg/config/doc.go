// Package config loads component configuration from the environment.
//
// Config structs declare their environment bindings with `env` tags; Load
// parses them in one call, reading an optional .env file first so local
// development does not need exported variables.
//
//	type Config struct {
//		Addr   string        `env:"GATEWAY_ADDR" envDefault:":7000"`
//		Secret string        `env:"TENANT_SIGNING_SECRET,required"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
