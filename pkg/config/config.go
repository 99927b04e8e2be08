// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server holds the TCP listener settings.
type Server struct {
	Addr string `envconfig:"ADDR" default:":4000"`
}

// Admin holds the HTTP admin surface settings.
type Admin struct {
	Enabled bool   `envconfig:"ENABLED" default:"true"`
	Addr    string `envconfig:"ADDR" default:":4001"`
}

// Storage holds persistence locations.
type Storage struct {
	DataDir string `envconfig:"DATA_DIR" default:"./data"`
	LogDir  string `envconfig:"LOG_DIR" default:"./logs"`
}

// Ledger holds account-numbering and CPF rules.
type Ledger struct {
	CPFLength  int `envconfig:"CPF_LENGTH" default:"11"`
	BaseNumber int `envconfig:"BASE_ACCOUNT_NUMBER" default:"100"`
}

// Log holds logger settings.
type Log struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// App is the full server configuration, read from BANK_-prefixed variables.
type App struct {
	Server  Server  `envconfig:"SERVER"`
	Admin   Admin   `envconfig:"ADMIN"`
	Storage Storage `envconfig:"STORAGE"`
	Ledger  Ledger  `envconfig:"LEDGER"`
	Log     Log     `envconfig:"LOG"`
}

// Load reads configuration from the environment. A missing .env file is
// fine. Load itself stays quiet so it can run before the process logger is
// installed; callers log the summary through LogValue.
func Load() (*App, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}

	var cfg App
	if err := envconfig.Process("BANK", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// LogValue renders the loaded settings for the startup log line.
func (a *App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server_addr", a.Server.Addr),
		slog.String("admin_addr", a.Admin.Addr),
		slog.String("data_dir", a.Storage.DataDir),
		slog.String("log_dir", a.Storage.LogDir),
		slog.Int("cpf_length", a.Ledger.CPFLength),
	)
}
