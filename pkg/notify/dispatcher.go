// Package notify delivers push messages to the live connection of a target
// account. Delivery is fire-and-forget: an offline recipient simply misses
// the alert, and a write failure never affects the operation that caused it.
package notify

import (
	"log/slog"

	"github.com/ifbank/ifbank/pkg/session"
)

// Dispatcher pushes messages across connections via the session registry.
type Dispatcher struct {
	sessions *session.Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(sessions *session.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sessions: sessions, logger: logger}
}

// Deliver pushes text to the target account's connection if one is live.
// Failures are logged, never retried or queued.
func (d *Dispatcher) Deliver(targetAccountID, text string) {
	conn, ok := d.sessions.Lookup(targetAccountID)
	if !ok {
		d.logger.Debug("notification dropped, account offline", "account", targetAccountID)
		return
	}
	if err := conn.Push(text); err != nil {
		d.logger.Warn("notification delivery failed",
			"account", targetAccountID, "conn", conn.ID(), "error", err)
		return
	}
	d.logger.Info("notification delivered", "account", targetAccountID, "conn", conn.ID())
}
