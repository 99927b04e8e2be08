package command_test

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifbank/ifbank/pkg/account"
	"github.com/ifbank/ifbank/pkg/command"
	"github.com/ifbank/ifbank/pkg/session"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type fakeConn struct{ id string }

func (c *fakeConn) Push(string) error { return nil }
func (c *fakeConn) ID() string        { return c.id }

func newProcessor() (*command.Processor, *account.Store, *session.Registry) {
	store := account.NewStore(nil, nil, account.WithCPFLength(3))
	sessions := session.NewRegistry()
	return command.NewProcessor(store, sessions, nil), store, sessions
}

// login creates an account through the processor and logs it in, returning
// the account id.
func login(t *testing.T, p *command.Processor, name, cpf, password string) string {
	t.Helper()
	res := p.Process("CRIAR|"+name+"|"+cpf+"|"+password, "", nil)
	require.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)

	res = p.Process("LOGIN|"+cpf+"|"+password, "", &fakeConn{id: "conn-" + cpf})
	require.Equal(t, command.TransitionLogin, res.Transition, res.Response)
	return res.AccountID
}

func TestGrammar(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()
	id := login(t, p, "Ana", "111", "p1")

	cases := []struct {
		line string
		want string
	}{
		{"CRIAR|only-name", "[ERR] usage: CRIAR"},
		{"CRIAR|a|b|c|d", "[ERR] usage: CRIAR"},
		{"DEPOSITAR", "[ERR] usage: DEPOSITAR"},
		{"DEPOSITAR|ten", "[ERR] invalid amount"},
		{"SACAR|10", "[ERR] usage: SACAR"},
		{"SACAR|ten|p1", "[ERR] invalid amount"},
		{"TRANSFERIR|101|10", "[ERR] usage: TRANSFERIR"},
		{"TRANSFERIR|101|ten|p1", "[ERR] invalid amount"},
		{"XYZZY", "[ERR] unknown command"},
	}
	for _, tc := range cases {
		res := p.Process(tc.line, id, nil)
		assert.Truef(t, strings.HasPrefix(res.Response, tc.want),
			"line %q: got %q, want prefix %q", tc.line, res.Response, tc.want)
		assert.Equal(t, command.TransitionNone, res.Transition)
	}

	// LOGIN grammar is checked from an anonymous connection.
	res := p.Process("LOGIN|111", "", &fakeConn{id: "c"})
	assert.True(t, strings.HasPrefix(res.Response, "[ERR] usage: LOGIN"), res.Response)
}

func TestOperationIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()
	id := login(t, p, "Ana", "111", "p1")

	res := p.Process("saldo", id, nil)
	assert.True(t, strings.HasPrefix(res.Response, "[OK] balance"), res.Response)
}

func TestAuthGating(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()

	for _, line := range []string{"SALDO", "DEPOSITAR|10", "SACAR|10|p", "TRANSFERIR|101|10|p", "LOGOUT"} {
		res := p.Process(line, "", nil)
		assert.Contains(t, res.Response, "must be logged in", "line %q", line)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success registers the session and reports a transition", func(t *testing.T) {
		p, _, sessions := newProcessor()
		res := p.Process("CRIAR|Ana|111|p1", "", nil)
		require.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)

		conn := &fakeConn{id: "c1"}
		res = p.Process("LOGIN|111|p1", "", conn)
		assert.Equal(t, command.TransitionLogin, res.Transition)
		assert.Equal(t, "100", res.AccountID)
		assert.Equal(t, "Ana", res.Name)
		assert.Equal(t, "[OK]|Ana|100", res.Response)

		got, ok := sessions.Lookup("100")
		require.True(t, ok)
		assert.Equal(t, "c1", got.ID())
	})

	t.Run("bad credentials are opaque", func(t *testing.T) {
		p, _, _ := newProcessor()
		res := p.Process("CRIAR|Ana|111|p1", "", nil)
		require.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)

		wrongPw := p.Process("LOGIN|111|nope", "", &fakeConn{id: "c1"})
		unknownCPF := p.Process("LOGIN|999|p1", "", &fakeConn{id: "c1"})
		assert.Equal(t, wrongPw.Response, unknownCPF.Response,
			"wrong password and unknown CPF must be observably identical")
		assert.Equal(t, command.TransitionNone, wrongPw.Transition)
	})

	t.Run("second session for an active account is rejected", func(t *testing.T) {
		p, _, sessions := newProcessor()
		login(t, p, "Ana", "111", "p1")

		res := p.Process("LOGIN|111|p1", "", &fakeConn{id: "intruder"})
		assert.Equal(t, command.TransitionNone, res.Transition)
		assert.Contains(t, res.Response, "already active")

		// First connection still holds the session.
		got, ok := sessions.Lookup("100")
		require.True(t, ok)
		assert.Equal(t, "conn-111", got.ID())
	})

	t.Run("login while logged in is rejected", func(t *testing.T) {
		p, _, _ := newProcessor()
		id := login(t, p, "Ana", "111", "p1")
		res := p.Process("LOGIN|111|p1", id, &fakeConn{id: "again"})
		assert.Contains(t, res.Response, "already logged in")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()
	id := login(t, p, "Ana", "111", "p1")

	res := p.Process("LOGOUT", id, nil)
	assert.Equal(t, command.TransitionLogout, res.Transition)
	assert.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)
}

func TestTransferEmitsNotification(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()
	ana := login(t, p, "Ana", "111", "p1")
	login(t, p, "Bia", "222", "p2")

	res := p.Process("DEPOSITAR|100", ana, nil)
	require.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)

	res = p.Process("TRANSFERIR|101|40|p1", ana, nil)
	require.True(t, strings.HasPrefix(res.Response, "[OK]"), res.Response)
	assert.Contains(t, res.Response, "60.00", "sender response carries the new balance")

	require.NotNil(t, res.Notify)
	assert.Equal(t, "101", res.Notify.TargetAccountID)
	assert.Contains(t, res.Notify.Text, "Ana", "notification names the sender")
	assert.Contains(t, res.Notify.Text, "40.00", "notification carries the amount")
}

func TestTransferFailureHasNoNotification(t *testing.T) {
	t.Parallel()
	p, _, _ := newProcessor()
	ana := login(t, p, "Ana", "111", "p1")
	login(t, p, "Bia", "222", "p2")

	res := p.Process("TRANSFERIR|101|40|p1", ana, nil)
	assert.True(t, strings.HasPrefix(res.Response, "[ERR]"), res.Response)
	assert.Nil(t, res.Notify)
}
