package config_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifbank/ifbank/pkg/config"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, ":4001", cfg.Admin.Addr)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, "./logs", cfg.Storage.LogDir)
	assert.Equal(t, 11, cfg.Ledger.CPFLength)
	assert.Equal(t, 100, cfg.Ledger.BaseNumber)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BANK_SERVER_ADDR", ":9000")
	t.Setenv("BANK_LEDGER_CPF_LENGTH", "3")
	t.Setenv("BANK_LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Ledger.CPFLength)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLogValueSummarizesSettings(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	attrs := cfg.LogValue().Group()
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.Contains(t, keys, "server_addr")
	assert.Contains(t, keys, "data_dir")
	assert.Contains(t, keys, "cpf_length")
}
