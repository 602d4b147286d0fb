package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"
	tracker "envelope_bot/internal/modules/tracker/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Send(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

type countingStore struct {
	tracker.Store
	saves   int
	saveErr error
}

func (s *countingStore) Save(ctx context.Context, st models.TrackingStore) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, st)
}

type cycleFixture struct {
	gw       *fakeGateway
	store    *countingStore
	notifier *fakeNotifier
	report   string
	tracking string
	cycle    *Cycle
}

func newCycleFixture(t *testing.T) *cycleFixture {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(config.RungsRemaining, instrument("BTC", []float64{0.05}, "long"))

	f := &cycleFixture{
		gw:       newFakeGateway(),
		notifier: &fakeNotifier{},
		report:   filepath.Join(dir, "cronlog.log"),
		tracking: filepath.Join(dir, "tracking.json"),
	}
	f.gw.addInstrument("BTC", 20, 10)
	f.store = &countingStore{Store: tracker.NewFileStore(f.tracking)}
	f.cycle = NewCycle(f.gw, newTestEngine(f.gw, cfg), f.store, tracker.NewReport(f.report), f.notifier, cfg)
	return f
}

func TestCycle_Run(t *testing.T) {
	f := newCycleFixture(t)

	require.NoError(t, f.cycle.Run(context.Background()))

	assert.Equal(t, 1, f.gw.closed)
	assert.Equal(t, 1, f.store.saves)

	raw, err := os.ReadFile(f.tracking)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"initial_balance": 1000`)

	report, err := os.ReadFile(f.report)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Balance: 1000.00 USDT")

	require.Len(t, f.notifier.msgs, 1)
	assert.Contains(t, f.notifier.msgs[0], "Orders: placed 1, failed 0")
}

func TestCycle_RunReportsSkippedInstruments(t *testing.T) {
	f := newCycleFixture(t)
	f.gw.discoverErr["BTC"] = errExchange

	require.NoError(t, f.cycle.Run(context.Background()))
	require.Len(t, f.notifier.msgs, 1)
	assert.Contains(t, f.notifier.msgs[0], "Skipped: BTC (discover)")
}

func TestCycle_RunTracksPositionsOfSkippedInstruments(t *testing.T) {
	f := newCycleFixture(t)
	f.gw.discoverErr["BTC"] = errExchange
	f.gw.positions = []models.Position{
		{Symbol: "BTC", Side: models.PositionLong, Size: 2, EntryPrice: 10, UnrealizedPnl: 5},
	}

	require.NoError(t, f.cycle.Run(context.Background()))

	st, err := tracker.NewFileStore(f.tracking).Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, st.CryptoStats, "BTC")
	assert.InDelta(t, 2, st.CryptoStats["BTC"].Stats.LastPositionSize, 1e-9)
	assert.InDelta(t, 5, st.CryptoStats["BTC"].Stats.LastUnrealizedPnl, 1e-9)

	report, err := os.ReadFile(f.report)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Active positions: 1")
}

func TestCycle_RunFatalReconcile(t *testing.T) {
	f := newCycleFixture(t)
	f.gw.balanceErr = errExchange

	err := f.cycle.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errExchange)

	assert.Equal(t, 1, f.gw.closed)
	assert.Zero(t, f.store.saves)
	require.Len(t, f.notifier.msgs, 1)
	assert.Contains(t, f.notifier.msgs[0], "cycle failed")

	_, statErr := os.Stat(f.report)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCycle_RunSaveError(t *testing.T) {
	f := newCycleFixture(t)
	f.store.saveErr = errExchange

	err := f.cycle.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errExchange)
	assert.Equal(t, 1, f.gw.closed)
	assert.Empty(t, f.notifier.msgs)
}

func TestCycle_RunCloseError(t *testing.T) {
	f := newCycleFixture(t)
	f.gw.closeErr = errExchange

	err := f.cycle.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close gateway")
	assert.Equal(t, 1, f.gw.closed)
	assert.Equal(t, 1, f.store.saves)
}
