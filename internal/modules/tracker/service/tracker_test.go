package service

import (
	"testing"
	"time"

	"envelope_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestUpdate_SeedsAndRecordsBalanceChange(t *testing.T) {
	s := Update(EmptyStore(), 1000, nil, t0)
	require.NotNil(t, s.InitialBalance)
	assert.Equal(t, 1000.0, *s.InitialBalance)
	assert.Equal(t, 1000.0, *s.LastBalance)
	assert.Equal(t, t0, *s.StartDate)
	assert.Empty(t, s.Trades)
	require.Len(t, s.DailySnapshots, 1)

	s = Update(s, 1003.50, nil, t0.Add(time.Hour))
	require.Len(t, s.Trades, 1)
	tr := s.Trades[0]
	assert.InDelta(t, 3.5, tr.Pnl, 1e-9)
	assert.Equal(t, 1000.0, tr.BalanceBefore)
	assert.Equal(t, 1003.5, tr.BalanceAfter)

	assert.Equal(t, 1, s.Stats.TotalTrades)
	assert.Equal(t, 1, s.Stats.WinningTrades)
	assert.Equal(t, 0, s.Stats.LosingTrades)
	assert.InDelta(t, 3.5, s.Stats.TotalPnl, 1e-9)
	assert.Equal(t, 100.0, s.Stats.Winrate)
	assert.Equal(t, 1003.5, *s.LastBalance)
	assert.Equal(t, 1000.0, *s.InitialBalance)

	// тот же день — снапшот перезаписан
	require.Len(t, s.DailySnapshots, 1)
	assert.Equal(t, 1003.5, s.DailySnapshots[0].Balance)
}

func TestUpdate_Idempotent(t *testing.T) {
	pos := []models.Position{{Symbol: "BTC", Side: models.PositionLong, Size: 0.5, UnrealizedPnl: 12, EntryPrice: 100, CurrentPrice: 110}}

	s := Update(EmptyStore(), 1000, pos, t0)
	once := Update(s, 1000, pos, t0.Add(time.Minute))
	twice := Update(once, 1000, pos, t0.Add(2*time.Minute))

	assert.Equal(t, len(once.Trades), len(twice.Trades))
	assert.Equal(t, once.Stats, twice.Stats)
	assert.Equal(t, once.CryptoStats["BTC"].Stats, twice.CryptoStats["BTC"].Stats)
	assert.Len(t, twice.CryptoStats["BTC"].Trades, 1)
	assert.Len(t, twice.DailySnapshots, 1)
	assert.Len(t, twice.CryptoStats["BTC"].DailySnapshots, 1)
}

func TestUpdate_SmallChangesIgnored(t *testing.T) {
	s := Update(EmptyStore(), 1000, nil, t0)
	s = Update(s, 1000.01, nil, t0.Add(time.Hour))
	assert.Empty(t, s.Trades)

	s = Update(s, 999.5, nil, t0.Add(2*time.Hour))
	require.Len(t, s.Trades, 1)
	assert.Equal(t, 1, s.Stats.LosingTrades)
	assert.Equal(t, 0.0, s.Stats.Winrate)
}

func TestUpdate_InstrumentEvents(t *testing.T) {
	s := Update(EmptyStore(), 1000, nil, t0)

	p := models.Position{Symbol: "ETH", Side: models.PositionShort, Size: 2, UnrealizedPnl: 5}
	s = Update(s, 1000, []models.Position{p}, t0.Add(time.Hour))
	eth := s.CryptoStats["ETH"]
	require.NotNil(t, eth)
	require.Len(t, eth.Trades, 1)
	assert.Equal(t, 5.0, eth.Trades[0].Pnl)
	assert.Equal(t, models.PositionShort, eth.Trades[0].Side)

	// pnl ниже порога, размер без изменений — события нет, last обновлён
	p.UnrealizedPnl = 5.05
	s = Update(s, 1000, []models.Position{p}, t0.Add(2*time.Hour))
	eth = s.CryptoStats["ETH"]
	assert.Len(t, eth.Trades, 1)
	assert.Equal(t, 5.05, eth.Stats.LastUnrealizedPnl)

	// размер изменился — событие даже без изменения pnl
	p.Size = 2.5
	s = Update(s, 1000, []models.Position{p}, t0.Add(3*time.Hour))
	eth = s.CryptoStats["ETH"]
	require.Len(t, eth.Trades, 2)
	assert.Equal(t, 0.0, eth.Trades[1].Pnl)
	assert.Equal(t, 2, eth.Stats.TotalTrades)
	assert.Equal(t, eth.Stats.TotalTrades, eth.Stats.WinningTrades+eth.Stats.LosingTrades)
	assert.Equal(t, 1, eth.Stats.LosingTrades)
	assert.Equal(t, 2.5, eth.Stats.LastPositionSize)
}

func TestUpdate_DoesNotMutateInput(t *testing.T) {
	pos := []models.Position{{Symbol: "BTC", Size: 1, UnrealizedPnl: 1}}
	in := Update(EmptyStore(), 1000, pos, t0)
	trades := len(in.CryptoStats["BTC"].Trades)
	last := *in.LastBalance

	_ = Update(in, 1100, []models.Position{{Symbol: "BTC", Size: 2, UnrealizedPnl: 50}}, t0.Add(time.Hour))

	assert.Equal(t, trades, len(in.CryptoStats["BTC"].Trades))
	assert.Equal(t, last, *in.LastBalance)
	assert.Empty(t, in.Trades)
}

func TestUpdate_DailySnapshotsPerDayAndTrimmed(t *testing.T) {
	s := EmptyStore()
	for d := 0; d < 400; d++ {
		s = Update(s, 1000+float64(d), nil, t0.AddDate(0, 0, d))
	}
	assert.LessOrEqual(t, len(s.DailySnapshots), 365)

	now := t0.AddDate(0, 0, 399)
	cutoff := now.AddDate(0, 0, -365).Format("2006-01-02")
	seen := map[string]bool{}
	for _, snap := range s.DailySnapshots {
		assert.GreaterOrEqual(t, snap.Date, cutoff)
		assert.False(t, seen[snap.Date], "duplicate %s", snap.Date)
		seen[snap.Date] = true
	}
	assert.Equal(t, now.Format("2006-01-02"), s.DailySnapshots[len(s.DailySnapshots)-1].Date)
}

func TestUpdate_HedgePositionsMergedBySymbol(t *testing.T) {
	pos := []models.Position{
		{Symbol: "BTC", Side: models.PositionLong, Size: 1, UnrealizedPnl: 10, EntryPrice: 100},
		{Symbol: "BTC", Side: models.PositionShort, Size: 3, UnrealizedPnl: -4, EntryPrice: 120},
	}
	s := Update(EmptyStore(), 1000, pos, t0)
	s = Update(s, 1000, pos, t0.Add(time.Hour))

	btc := s.CryptoStats["BTC"]
	require.Len(t, btc.Trades, 1)
	assert.Equal(t, 4.0, btc.Stats.LastPositionSize)
	assert.Equal(t, 6.0, btc.Stats.LastUnrealizedPnl)
	assert.Equal(t, models.PositionShort, btc.Trades[0].Side)
}
