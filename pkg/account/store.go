package account

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ifbank/ifbank/pkg/money"
)

// Persister saves a snapshot of the ledger. Called synchronously after every
// committed mutation; a failure is logged but never rolls the mutation back.
type Persister interface {
	Save(snap Snapshot) error
}

// Journal receives one audit line per committed mutation. Best-effort.
type Journal interface {
	Append(line string)
}

// Store is the concurrent account table. A single mutation lock serializes
// every operation; per-operation work is O(1) so contention is negligible.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*Account
	byCPF    map[string]string // CPF -> account id

	cpfLength  int
	baseNumber int

	persister Persister
	journal   Journal
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCPFLength sets the expected CPF length (default 11).
func WithCPFLength(n int) Option {
	return func(s *Store) { s.cpfLength = n }
}

// WithBaseNumber sets the number assigned to the first account (default 100).
func WithBaseNumber(n int) Option {
	return func(s *Store) { s.baseNumber = n }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store wired to its persistence collaborators.
// Either collaborator may be nil (useful in tests).
func NewStore(p Persister, j Journal, opts ...Option) *Store {
	s := &Store{
		accounts:   make(map[string]*Account),
		byCPF:      make(map[string]string),
		cpfLength:  11,
		baseNumber: 100,
		persister:  p,
		journal:    j,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore replaces the in-memory state with a loaded snapshot. Called once at
// startup, before the listener accepts connections.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*Account, len(snap.Accounts))
	for id, acc := range snap.Accounts {
		a := acc
		s.accounts[id] = &a
	}
	s.byCPF = make(map[string]string, len(snap.CPFIndex))
	for cpf, id := range snap.CPFIndex {
		s.byCPF[cpf] = id
	}
}

// Create registers a new account and returns its id. The id is derived from
// the table size; uniqueness holds because creation is serialized by the lock.
func (s *Store) Create(name, cpf, password string) (string, error) {
	if err := validateCreate(createInput{Name: name, CPF: cpf, Password: password}, s.cpfLength); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCPF[cpf]; taken {
		s.logger.Info("account creation rejected, CPF taken", "cpf", MaskCPF(cpf))
		return "", ErrCPFAlreadyRegistered
	}

	id := fmt.Sprintf("%d", len(s.accounts)+s.baseNumber)
	s.accounts[id] = &Account{
		ID:       id,
		Name:     name,
		CPF:      cpf,
		Password: password,
		Balance:  money.Zero(),
	}
	s.byCPF[cpf] = id

	s.logger.Info("account created", "account", id, "name", name, "cpf", MaskCPF(cpf))
	s.commit(fmt.Sprintf("CREATE: account %s, name: %s, cpf: %s", id, name, MaskCPF(cpf)))
	return id, nil
}

// Authenticate verifies CPF and password. An unknown CPF and a wrong password
// are indistinguishable to the caller; the log keeps the distinction.
func (s *Store) Authenticate(cpf, password string) (id, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accID, ok := s.byCPF[cpf]
	if !ok {
		s.logger.Info("login failed, unknown CPF", "cpf", MaskCPF(cpf))
		return "", "", ErrBadCredentials
	}
	acc := s.accounts[accID]
	if acc.Password != password {
		s.logger.Info("login failed, wrong password", "account", accID)
		return "", "", ErrBadCredentials
	}
	return acc.ID, acc.Name, nil
}

// Balance returns the current balance of an account.
func (s *Store) Balance(accountID string) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return money.Money{}, ErrAccountNotFound
	}
	return acc.Balance, nil
}

// Deposit credits a positive amount and returns the new balance.
func (s *Store) Deposit(accountID string, amount money.Money) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Money{}, ErrNonPositiveAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return money.Money{}, ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(amount)

	s.commit(fmt.Sprintf("DEPOSIT: account %s, amount: %s, balance: %s", accountID, amount, acc.Balance))
	return acc.Balance, nil
}

// Withdraw debits a positive amount after re-checking the password and
// returns the new balance.
func (s *Store) Withdraw(accountID string, amount money.Money, password string) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return money.Money{}, ErrAccountNotFound
	}
	if acc.Password != password {
		return money.Money{}, ErrWrongPassword
	}
	if !amount.IsPositive() {
		return money.Money{}, ErrNonPositiveAmount
	}
	if acc.Balance.LessThan(amount) {
		s.appendJournal(fmt.Sprintf("WITHDRAW: rejected, insufficient funds on account %s", accountID))
		return money.Money{}, ErrInsufficientFunds
	}
	acc.Balance = acc.Balance.Sub(amount)

	s.commit(fmt.Sprintf("WITHDRAW: account %s, amount: %s, balance: %s", accountID, amount, acc.Balance))
	return acc.Balance, nil
}

// Transfer moves a positive amount between two distinct accounts. Debit and
// credit happen under the same lock hold, so no reader ever observes a
// half-applied transfer. Returns the sender's new balance and the recipient's
// holder name.
func (s *Store) Transfer(fromID, toID string, amount money.Money, password string) (money.Money, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[fromID]
	if !ok {
		return money.Money{}, "", ErrAccountNotFound
	}
	to, ok := s.accounts[toID]
	if !ok {
		return money.Money{}, "", ErrDestinationNotFound
	}
	if fromID == toID {
		return money.Money{}, "", ErrSelfTransfer
	}
	if from.Password != password {
		return money.Money{}, "", ErrWrongPassword
	}
	if !amount.IsPositive() {
		return money.Money{}, "", ErrNonPositiveAmount
	}
	if from.Balance.LessThan(amount) {
		s.appendJournal(fmt.Sprintf("TRANSFER: rejected, insufficient funds on account %s", fromID))
		return money.Money{}, "", ErrInsufficientFunds
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	s.commit(fmt.Sprintf("TRANSFER: %s from account %s (%s) to account %s (%s)",
		amount, fromID, from.Name, toID, to.Name))
	return from.Balance, to.Name, nil
}

// Name returns the holder name of an account.
func (s *Store) Name(accountID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return "", ErrAccountNotFound
	}
	return acc.Name, nil
}

// Count returns the number of accounts.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// SnapshotState copies the current state for persistence.
func (s *Store) SnapshotState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Accounts: make(map[string]Account, len(s.accounts)),
		CPFIndex: make(map[string]string, len(s.byCPF)),
	}
	for id, acc := range s.accounts {
		snap.Accounts[id] = *acc
	}
	for cpf, id := range s.byCPF {
		snap.CPFIndex[cpf] = id
	}
	return snap
}

// commit records a committed mutation: journal line first, then snapshot save.
// Both are best-effort; the in-memory mutation stands regardless. Called with
// the mutation lock held.
func (s *Store) commit(journalLine string) {
	s.appendJournal(journalLine)
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.snapshotLocked()); err != nil {
		s.logger.Error("snapshot save failed, in-memory state remains authoritative", "error", err)
	}
}

func (s *Store) appendJournal(line string) {
	if s.journal != nil {
		s.journal.Append(line)
	}
}
