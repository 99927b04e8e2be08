package webapi_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifbank/ifbank/pkg/account"
	"github.com/ifbank/ifbank/pkg/session"
	"github.com/ifbank/ifbank/webapi"
)

type fakeConn struct{ id string }

func (c *fakeConn) Push(string) error { return nil }
func (c *fakeConn) ID() string        { return c.id }

func TestHealthz(t *testing.T) {
	t.Parallel()
	app := webapi.NewApp(account.NewStore(nil, nil), session.NewRegistry())

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestStats(t *testing.T) {
	t.Parallel()
	store := account.NewStore(nil, nil, account.WithCPFLength(3))
	sessions := session.NewRegistry()
	app := webapi.NewApp(store, sessions)

	_, err := store.Create("Ana", "111", "p1")
	require.NoError(t, err)
	require.NoError(t, sessions.Register("100", &fakeConn{id: "c1"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/stats", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Accounts       int `json:"accounts"`
		ActiveSessions int `json:"active_sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Accounts)
	assert.Equal(t, 1, body.ActiveSessions)
}
