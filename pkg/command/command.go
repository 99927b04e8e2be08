// Package command parses wire commands and dispatches them against the
// account store and session registry. Processing is pure request/response:
// the result carries the reply text, an optional session transition for the
// connection handler to apply, and an optional notification event for the
// dispatcher to deliver. Notification delivery is decoupled from the mutation
// so a broken recipient socket can never block the ledger.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ifbank/ifbank/pkg/account"
	"github.com/ifbank/ifbank/pkg/money"
	"github.com/ifbank/ifbank/pkg/session"
)

// Transition tells the connection handler how the session state changed.
type Transition int

const (
	// TransitionNone leaves the session untouched.
	TransitionNone Transition = iota
	// TransitionLogin binds the connection to Result.AccountID.
	TransitionLogin
	// TransitionLogout detaches the connection from its account.
	TransitionLogout
)

// Notification is a push event addressed to another account's connection.
type Notification struct {
	TargetAccountID string
	Text            string
}

// Result is the outcome of processing one command.
type Result struct {
	Response   string
	Transition Transition
	AccountID  string // set on TransitionLogin
	Name       string // set on TransitionLogin
	Notify     *Notification
}

// Processor validates and executes wire commands.
type Processor struct {
	store    *account.Store
	sessions *session.Registry
	logger   *slog.Logger
}

// NewProcessor wires a processor to the ledger and the session registry.
func NewProcessor(store *account.Store, sessions *session.Registry, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{store: store, sessions: sessions, logger: logger}
}

func ok(format string, args ...any) Result {
	return Result{Response: "[OK] " + fmt.Sprintf(format, args...)}
}

func fail(format string, args ...any) Result {
	return Result{Response: "[ERR] " + fmt.Sprintf(format, args...)}
}

// Process executes one command line on behalf of a connection. authedID is
// the connection's current account ("" when anonymous); conn is the handle
// registered on a successful login.
func (p *Processor) Process(line string, authedID string, conn session.Conn) Result {
	fields := strings.Split(strings.TrimSpace(line), account.FieldSeparator)
	op := strings.ToUpper(strings.TrimSpace(fields[0]))

	switch op {
	case "CRIAR":
		return p.create(fields)
	case "LOGIN":
		return p.login(fields, authedID, conn)
	}

	if authedID == "" {
		return fail("you must be logged in for this operation")
	}

	switch op {
	case "SALDO":
		return p.balance(authedID)
	case "DEPOSITAR":
		return p.deposit(fields, authedID)
	case "SACAR":
		return p.withdraw(fields, authedID)
	case "TRANSFERIR":
		return p.transfer(fields, authedID)
	case "LOGOUT":
		return Result{Response: "[OK] logged out", Transition: TransitionLogout}
	default:
		return fail("unknown command")
	}
}

func (p *Processor) create(fields []string) Result {
	if len(fields) != 4 {
		return fail("usage: CRIAR|name|cpf|password")
	}
	id, err := p.store.Create(fields[1], fields[2], fields[3])
	if err != nil {
		return errResult(err)
	}
	return ok("account %s created for %s", id, fields[1])
}

func (p *Processor) login(fields []string, authedID string, conn session.Conn) Result {
	if authedID != "" {
		return fail("already logged in; LOGOUT first")
	}
	if len(fields) != 3 {
		return fail("usage: LOGIN|cpf|password")
	}
	id, name, err := p.store.Authenticate(fields[1], fields[2])
	if err != nil {
		return errResult(err)
	}
	// The ledger lock is released before touching the registry; the two locks
	// are never held together.
	if err := p.sessions.Register(id, conn); err != nil {
		p.logger.Info("login rejected, session already active", "account", id)
		return errResult(err)
	}
	return Result{
		Response:   fmt.Sprintf("[OK]|%s|%s", name, id),
		Transition: TransitionLogin,
		AccountID:  id,
		Name:       name,
	}
}

func (p *Processor) balance(authedID string) Result {
	b, err := p.store.Balance(authedID)
	if err != nil {
		return errResult(err)
	}
	return ok("balance: R$ %s", b)
}

func (p *Processor) deposit(fields []string, authedID string) Result {
	if len(fields) != 2 {
		return fail("usage: DEPOSITAR|amount")
	}
	amount, err := money.Parse(fields[1])
	if err != nil {
		return errResult(err)
	}
	b, err := p.store.Deposit(authedID, amount)
	if err != nil {
		return errResult(err)
	}
	return ok("deposited R$ %s. new balance: R$ %s", amount, b)
}

func (p *Processor) withdraw(fields []string, authedID string) Result {
	if len(fields) != 3 {
		return fail("usage: SACAR|amount|password")
	}
	amount, err := money.Parse(fields[1])
	if err != nil {
		return errResult(err)
	}
	b, err := p.store.Withdraw(authedID, amount, fields[2])
	if err != nil {
		return errResult(err)
	}
	return ok("withdrew R$ %s. new balance: R$ %s", amount, b)
}

func (p *Processor) transfer(fields []string, authedID string) Result {
	if len(fields) != 4 {
		return fail("usage: TRANSFERIR|destAccount|amount|password")
	}
	destID := strings.TrimSpace(fields[1])
	amount, err := money.Parse(fields[2])
	if err != nil {
		return errResult(err)
	}
	newBalance, destName, err := p.store.Transfer(authedID, destID, amount, fields[3])
	if err != nil {
		return errResult(err)
	}

	senderName, nameErr := p.store.Name(authedID)
	if nameErr != nil {
		senderName = authedID
	}
	res := ok("transferred R$ %s to %s (account %s). new balance: R$ %s", amount, destName, destID, newBalance)
	res.Notify = &Notification{
		TargetAccountID: destID,
		Text: fmt.Sprintf("[NOTIFY] you received a transfer of R$ %s from %s (account %s)",
			amount, senderName, authedID),
	}
	return res
}

// errResult maps domain errors onto wire failure responses.
func errResult(err error) Result {
	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		return fail("invalid amount, use numbers only")
	case errors.Is(err, session.ErrAlreadyActive):
		return fail("this account is already active in another session")
	case errors.Is(err, account.ErrInvalidName),
		errors.Is(err, account.ErrInvalidCPF),
		errors.Is(err, account.ErrInvalidPassword),
		errors.Is(err, account.ErrCPFAlreadyRegistered),
		errors.Is(err, account.ErrBadCredentials),
		errors.Is(err, account.ErrWrongPassword),
		errors.Is(err, account.ErrNonPositiveAmount),
		errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrDestinationNotFound),
		errors.Is(err, account.ErrSelfTransfer),
		errors.Is(err, account.ErrAccountNotFound):
		return fail("%s", err)
	default:
		return fail("internal server error")
	}
}
