package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"

	"github.com/ifbank/ifbank/infra/repository"
	"github.com/ifbank/ifbank/infra/translog"
	"github.com/ifbank/ifbank/pkg/account"
	"github.com/ifbank/ifbank/pkg/command"
	"github.com/ifbank/ifbank/pkg/config"
	"github.com/ifbank/ifbank/pkg/notify"
	"github.com/ifbank/ifbank/pkg/server"
	"github.com/ifbank/ifbank/pkg/session"
	"github.com/ifbank/ifbank/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := setupLogger(cfg.Log)
	logger.Info("config loaded", "config", cfg)

	snapshots, err := repository.NewJSONStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	journal, err := translog.Open(cfg.Storage.LogDir, logger)
	if err != nil {
		return fmt.Errorf("open transaction log: %w", err)
	}

	store := account.NewStore(snapshots, journal,
		account.WithCPFLength(cfg.Ledger.CPFLength),
		account.WithBaseNumber(cfg.Ledger.BaseNumber),
		account.WithLogger(logger),
	)

	snap, err := snapshots.Load()
	if err != nil {
		logger.Warn("snapshot unreadable, starting with an empty ledger", "error", err)
	}
	store.Restore(snap)
	logger.Info("ledger loaded", "accounts", store.Count())

	sessions := session.NewRegistry()
	notifier := notify.NewDispatcher(sessions, logger)
	processor := command.NewProcessor(store, sessions, logger)
	srv := server.New(cfg.Server.Addr, processor, sessions, notifier, server.WithLogger(logger))

	if cfg.Admin.Enabled {
		admin := webapi.NewApp(store, sessions)
		go func() {
			logger.Info("admin surface listening", "addr", cfg.Admin.Addr)
			if err := admin.Listen(cfg.Admin.Addr); err != nil {
				logger.Error("admin surface stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		srv.Shutdown()
	}()

	// Listen returns nil once Shutdown closes the listener; the final save
	// runs here so the process cannot exit before it completes.
	if err := srv.Listen(); err != nil {
		return err
	}
	if err := snapshots.Save(store.SnapshotState()); err != nil {
		logger.Error("final snapshot save failed", "error", err)
	}
	if err := journal.Close(); err != nil {
		logger.Error("transaction log close failed", "error", err)
	}
	return nil
}
