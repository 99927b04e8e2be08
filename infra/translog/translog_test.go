package translog_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifbank/ifbank/infra/translog"
)

var entryRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)

func TestAppend(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	l, err := translog.Open(dir, nil)
	require.NoError(t, err)
	defer l.Close()

	l.Append("DEPOSIT: account 100, amount: 10.00")
	l.Append("TRANSFER: 40.00 from account 100 to account 101")

	data, err := os.ReadFile(filepath.Join(dir, "transactions.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Regexp(t, entryRe, line, "entries carry a timestamp prefix")
	}
	assert.Contains(t, lines[0], "DEPOSIT")
	assert.Contains(t, lines[1], "TRANSFER")
}

func TestOpenAppendsAcrossRestarts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	l, err := translog.Open(dir, nil)
	require.NoError(t, err)
	l.Append("first run")
	require.NoError(t, l.Close())

	l, err = translog.Open(dir, nil)
	require.NoError(t, err)
	l.Append("second run")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "transactions.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}
