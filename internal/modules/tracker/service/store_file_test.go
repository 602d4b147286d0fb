package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"envelope_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tracking.json")
	fs := NewFileStore(path)

	s, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s.InitialBalance)
	assert.NotNil(t, s.Trades)
	assert.NotNil(t, s.CryptoStats)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"initial_balance": null`)
	assert.Contains(t, string(raw), `"crypto_stats": {}`)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	pos := []models.Position{{Symbol: "BTC-USDT-SWAP", Side: models.PositionLong, Size: 0.5, UnrealizedPnl: 3}}
	s := Update(EmptyStore(), 1000, pos, now)
	s = Update(s, 1003.5, pos, now.Add(time.Hour))
	require.NoError(t, fs.Save(ctx, s))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, *s.InitialBalance, *got.InitialBalance)
	assert.Equal(t, s.Stats, got.Stats)
	require.Len(t, got.Trades, 1)
	assert.True(t, s.Trades[0].Timestamp.Equal(got.Trades[0].Timestamp))
	require.Contains(t, got.CryptoStats, "BTC-USDT-SWAP")
	assert.Equal(t, s.CryptoStats["BTC-USDT-SWAP"].Stats, got.CryptoStats["BTC-USDT-SWAP"].Stats)

	// tmp-файлы не остаются
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_NullCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"initial_balance":500,"last_balance":500,"trades":null,"crypto_stats":{"X":{"stats":{"total_trades":1}}}}`), 0o644))

	s, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, *s.InitialBalance)
	assert.NotNil(t, s.Trades)
	assert.NotNil(t, s.DailySnapshots)
	assert.NotNil(t, s.CryptoStats["X"].Trades)
	assert.Equal(t, 1, s.CryptoStats["X"].Stats.TotalTrades)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
