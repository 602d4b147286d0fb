package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"envelope_bot/internal/models"

	"github.com/pkg/errors"
)

// Report — человекочитаемый отчёт в cron-лог.
type Report struct {
	path string
}

func NewReport(path string) *Report {
	return &Report{path: path}
}

type instrumentLine struct {
	symbol string
	data   *models.InstrumentData
}

// Build собирает отчёт по текущему состоянию.
func (r *Report) Build(s models.TrackingStore, equity float64, positions []models.Position, now time.Time) string {
	var b strings.Builder

	upl := 0.0
	for _, p := range positions {
		upl += p.UnrealizedPnl
	}

	b.WriteString("=== PERFORMANCE REPORT ===\n")
	fmt.Fprintf(&b, "Balance: %.2f USDT\n", equity)
	fmt.Fprintf(&b, "Unrealized PnL: %+.2f USDT\n", upl)
	fmt.Fprintf(&b, "Active positions: %d\n", len(positions))
	if s.InitialBalance != nil {
		initial := *s.InitialBalance
		total := equity - initial
		pct := 0.0
		if initial != 0 {
			pct = total / initial * 100
		}
		fmt.Fprintf(&b, "Initial balance: %.2f USDT\n", initial)
		fmt.Fprintf(&b, "Total PnL: %+.2f USDT (%+.2f%%)\n", total, pct)
	}

	all := WindowStats{Trades: s.Stats.TotalTrades, PnL: s.Stats.TotalPnl, Winrate: s.Stats.Winrate}
	writeWindow(&b, "All time", all)
	writeWindow(&b, "30 days", StatsForWindow(s.Trades, 30, now))
	writeWindow(&b, "7 days", StatsForWindow(s.Trades, 7, now))

	if lines := activeInstruments(s); len(lines) > 0 {
		b.WriteString("--- Per instrument ---\n")
		for _, l := range lines {
			writeInstrument(&b, l, now)
		}
	}

	if len(positions) > 0 {
		b.WriteString("--- Positions ---\n")
		for _, p := range positions {
			fmt.Fprintf(&b, "%s %s size=%.6f entry=%.6f current=%.6f upl=%+.2f\n",
				p.Symbol, p.Side, p.Size, p.EntryPrice, p.CurrentPrice, p.UnrealizedPnl)
		}
	}
	return b.String()
}

func writeWindow(b *strings.Builder, title string, ws WindowStats) {
	fmt.Fprintf(b, "[%s] trades=%d pnl=%+.2f winrate=%.1f%%\n", title, ws.Trades, ws.PnL, ws.Winrate)
}

func writeInstrument(b *strings.Builder, l instrumentLine, now time.Time) {
	st := l.data.Stats
	fmt.Fprintf(b, "%s: trades=%d pnl=%+.2f winrate=%.1f%%\n", l.symbol, st.TotalTrades, st.TotalPnl, st.Winrate)

	m := StatsForWindow(l.data.Trades, 30, now)
	w := StatsForWindow(l.data.Trades, 7, now)
	fmt.Fprintf(b, "  [30 days] trades=%d pnl=%+.2f winrate=%.1f%%\n", m.Trades, m.PnL, m.Winrate)
	fmt.Fprintf(b, "  [7 days] trades=%d pnl=%+.2f winrate=%.1f%%", w.Trades, w.PnL, w.Winrate)
	if st.LastUnrealizedPnl != 0 {
		fmt.Fprintf(b, " | current %.4f (%+.2f USDT)", st.LastPositionSize, st.LastUnrealizedPnl)
	}
	b.WriteByte('\n')
}

// activeInstruments: с событиями или ненулевым нереализованным PnL,
// по убыванию накопленного PnL.
func activeInstruments(s models.TrackingStore) []instrumentLine {
	out := make([]instrumentLine, 0, len(s.CryptoStats))
	for sym, d := range s.CryptoStats {
		if d == nil {
			continue
		}
		if d.Stats.TotalTrades > 0 || d.Stats.LastUnrealizedPnl != 0 {
			out = append(out, instrumentLine{symbol: sym, data: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].data.Stats.TotalPnl != out[j].data.Stats.TotalPnl {
			return out[i].data.Stats.TotalPnl > out[j].data.Stats.TotalPnl
		}
		return out[i].symbol < out[j].symbol
	})
	return out
}

// Append дописывает текст в лог, каждая строка с меткой времени в UTC,
// как и ключи дневных снапшотов.
func (r *Report) Append(text string, now time.Time) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir report dir")
		}
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open report %s", r.path)
	}
	defer f.Close()

	stamp := now.UTC().Format("[2006-01-02 15:04:05] ")
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		b.WriteString(stamp)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err = f.WriteString(b.String())
	return errors.Wrap(err, "write report")
}

// Summary — коротко для уведомления: баланс, итог и лучший/худший инструмент.
func (r *Report) Summary(s models.TrackingStore, equity float64, positions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Balance %.2f USDT, positions %d", equity, positions)
	if s.InitialBalance != nil {
		fmt.Fprintf(&b, ", total %+.2f USDT", equity-*s.InitialBalance)
	}

	lines := activeInstruments(s)
	if len(lines) > 0 {
		best, worst := lines[0], lines[len(lines)-1]
		fmt.Fprintf(&b, "\nBest: %s %+.2f", best.symbol, best.data.Stats.TotalPnl)
		if worst.symbol != best.symbol {
			fmt.Fprintf(&b, "\nWorst: %s %+.2f", worst.symbol, worst.data.Stats.TotalPnl)
		}
	}
	return b.String()
}
