package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger("sqlite", filepath.Join(t.TempDir(), "ledger.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedgerRecordAndRecent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.txt", "b.png", "c.csv"} {
		require.NoError(t, l.Record(ctx, &Upload{
			Filename:  name,
			Size:      int64(i + 1),
			Status:    StatusAccepted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c.csv", recent[0].Filename)
	assert.Equal(t, "b.png", recent[1].Filename)
	assert.Len(t, recent[0].ID, 26)
}

func TestLedgerRecordAssignsDefaults(t *testing.T) {
	l := newTestLedger(t)

	u := &Upload{Filename: "x.bin", Status: StatusRejected, Verdict: "Eicar-Test-Signature"}
	require.NoError(t, l.Record(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestOpenLedgerUnknownDriver(t *testing.T) {
	_, err := OpenLedger("oracle", "dsn", "warn")
	assert.Error(t, err)
}
