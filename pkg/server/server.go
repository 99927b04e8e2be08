// Package server accepts TCP connections and runs one connection handler per
// client. Commands are pipe-delimited plain text, one request per read, one
// response per request, with out-of-band push notifications interleaved on
// the recipient's socket.
package server

import (
	"log/slog"
	"net"

	"github.com/ifbank/ifbank/pkg/command"
	"github.com/ifbank/ifbank/pkg/notify"
	"github.com/ifbank/ifbank/pkg/session"
)

// Server is the TCP front of the account ledger.
type Server struct {
	addr      string
	processor *command.Processor
	sessions  *session.Registry
	notifier  *notify.Dispatcher
	logger    *slog.Logger

	listener net.Listener
	stopCh   chan struct{}
}

// Option is a functional server option.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server. The processor, registry and notifier are shared with
// every connection handler.
func New(addr string, processor *command.Processor, sessions *session.Registry, notifier *notify.Dispatcher, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		processor: processor,
		sessions:  sessions,
		notifier:  notifier,
		logger:    slog.Default(),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the address and serves until Shutdown or a fatal accept error.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on an already-bound listener.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	s.logger.Info("server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			s.logger.Warn("accept error", "error", err)
			continue
		}
		h := newHandler(conn, s.processor, s.sessions, s.notifier, s.logger)
		go h.serve()
	}
}

// Shutdown stops accepting connections. In-flight handlers finish on their
// own when their clients disconnect.
func (s *Server) Shutdown() {
	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
	}
}
