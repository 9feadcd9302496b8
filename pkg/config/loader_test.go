package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storegate/storegate/pkg/config"
)

type serverConfig struct {
	Addr    string        `env:"TEST_SERVER_ADDR" envDefault:":7000"`
	Timeout time.Duration `env:"TEST_SERVER_TIMEOUT" envDefault:"30s"`
	Secret  string        `env:"TEST_SERVER_SECRET,required,notEmpty"`
}

func TestLoad(t *testing.T) {
	t.Run("reads values and defaults", func(t *testing.T) {
		t.Setenv("TEST_SERVER_ADDR", ":9999")
		t.Setenv("TEST_SERVER_SECRET", "s3cr3t")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, "s3cr3t", cfg.Secret)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		t.Setenv("TEST_SERVER_SECRET", "")

		var cfg serverConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil destination fails", func(t *testing.T) {
		var cfg *serverConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		t.Setenv("TEST_SERVER_SECRET", "")

		assert.Panics(t, func() {
			var cfg serverConfig
			config.MustLoad(&cfg)
		})
	})
}
