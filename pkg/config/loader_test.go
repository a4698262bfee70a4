package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/pkg/config"
)

type testConfig struct {
	Host    string `env:"CONFIG_TEST_HOST" envDefault:"localhost"`
	Port    int    `env:"CONFIG_TEST_PORT" envDefault:"5432"`
	Secret  string `env:"CONFIG_TEST_SECRET,required"`
	Verbose bool   `env:"CONFIG_TEST_VERBOSE"`
}

func TestLoad(t *testing.T) {
	t.Run("populates struct from environment", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_SECRET", "s3cret")
		t.Setenv("CONFIG_TEST_PORT", "6543")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 6543, cfg.Port)
		assert.Equal(t, "s3cret", cfg.Secret)
		assert.False(t, cfg.Verbose)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		config.Reset()

		var cfg testConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("cached after first load", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_SECRET", "first")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		t.Setenv("CONFIG_TEST_SECRET", "second")

		var again testConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Secret, "second load must be served from cache")
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	config.Reset()

	assert.Panics(t, func() {
		var cfg testConfig
		config.MustLoad(&cfg)
	})
}
