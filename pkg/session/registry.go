// Package session tracks which account is attached to which live connection
// and enforces a single active session per account.
package session

import (
	"errors"
	"sync"
)

// ErrAlreadyActive is returned when an account already has a live session.
var ErrAlreadyActive = errors.New("account already active in another session")

// Conn is the handle the registry keeps for a live connection. It is a
// back-reference: the connection handler owns the socket and must unregister
// on its way out; the registry never checks liveness itself.
type Conn interface {
	// Push writes an out-of-band message to the client.
	Push(text string) error
	// ID identifies the connection in logs.
	ID() string
}

// Registry maps account ids to their single active connection. Its lock is
// distinct from the account store's so notification delivery never holds the
// ledger lock.
type Registry struct {
	mu        sync.Mutex
	byAccount map[string]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byAccount: make(map[string]Conn)}
}

// Register attaches a connection to an account. Fails with ErrAlreadyActive
// if the account already has a session.
func (r *Registry) Register(accountID string, c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, active := r.byAccount[accountID]; active {
		return ErrAlreadyActive
	}
	r.byAccount[accountID] = c
	return nil
}

// Unregister removes the account's session. No-op if absent.
func (r *Registry) Unregister(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byAccount, accountID)
}

// Lookup returns the live connection for an account, if any.
func (r *Registry) Lookup(accountID string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byAccount[accountID]
	return c, ok
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byAccount)
}
