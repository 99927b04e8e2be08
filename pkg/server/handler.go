package server

import (
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ifbank/ifbank/pkg/command"
	"github.com/ifbank/ifbank/pkg/notify"
	"github.com/ifbank/ifbank/pkg/session"
)

// readBufferSize bounds a single command. The protocol has no length framing;
// one read is one command.
const readBufferSize = 1024

// handler owns one client connection. Commands are processed strictly one at
// a time per connection; concurrency exists only across connections. The
// handler doubles as the session.Conn handle stored in the registry, so
// pushes from other handlers and its own responses share writeMu.
type handler struct {
	conn   net.Conn
	id     string
	logger *slog.Logger

	processor *command.Processor
	sessions  *session.Registry
	notifier  *notify.Dispatcher

	writeMu sync.Mutex

	// accountID doubles as the session state: empty means anonymous,
	// non-empty means authenticated.
	accountID string
	name      string
}

func newHandler(conn net.Conn, p *command.Processor, r *session.Registry, n *notify.Dispatcher, logger *slog.Logger) *handler {
	id := uuid.NewString()
	return &handler{
		conn:      conn,
		id:        id,
		logger:    logger.With("conn", id, "remote", conn.RemoteAddr().String()),
		processor: p,
		sessions:  r,
		notifier:  n,
	}
}

// ID implements session.Conn.
func (h *handler) ID() string { return h.id }

// Push implements session.Conn: an out-of-band message from another handler.
// CRLF framing on both sides keeps it readable mid-prompt on a raw client.
func (h *handler) Push(text string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err := h.conn.Write([]byte("\r\n" + text + "\r\n"))
	return err
}

func (h *handler) write(text string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err := h.conn.Write([]byte(text + "\r\n"))
	return err
}

// serve runs the connection loop until disconnect or transport error.
func (h *handler) serve() {
	defer h.close()
	h.logger.Info("client connected")

	buf := make([]byte, readBufferSize)
	for {
		n, err := h.conn.Read(buf)
		if err != nil {
			return
		}
		line := strings.TrimSpace(string(buf[:n]))
		if line == "" {
			continue
		}

		res := h.process(line)

		// The transition is applied before the response write: a login has
		// already registered this connection, and a write failure must end
		// in close() seeing the account so the registry entry is released.
		switch res.Transition {
		case command.TransitionLogin:
			h.accountID = res.AccountID
			h.name = res.Name
			h.logger.Info("session opened", "account", h.accountID, "name", h.name)
		case command.TransitionLogout:
			h.endSession()
		}

		if err := h.write(res.Response); err != nil {
			return
		}

		// Delivery happens after the sender's response is written and outside
		// every lock; a broken recipient socket cannot block this connection.
		if res.Notify != nil {
			h.notifier.Deliver(res.Notify.TargetAccountID, res.Notify.Text)
		}
	}
}

// process shields the connection from panics in command handling: any
// unexpected fault becomes a generic failure response and the connection
// stays open.
func (h *handler) process(line string) (res command.Result) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while processing command", "panic", r)
			res = command.Result{Response: "[ERR] internal server error"}
		}
	}()
	return h.processor.Process(line, h.accountID, h)
}

// endSession detaches the connection from its account.
func (h *handler) endSession() {
	if h.accountID == "" {
		return
	}
	h.sessions.Unregister(h.accountID)
	h.logger.Info("session closed", "account", h.accountID)
	h.accountID = ""
	h.name = ""
}

// close releases the connection and any active session.
func (h *handler) close() {
	h.endSession()
	h.conn.Close()
	h.logger.Info("client disconnected")
}
