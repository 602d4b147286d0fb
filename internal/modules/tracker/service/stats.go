package service

import (
	"time"

	"envelope_bot/internal/models"
)

// WindowStats — итог по событиям за последние N дней.
type WindowStats struct {
	Trades  int
	PnL     float64
	Winrate float64
}

// StatsForWindow учитывает события строго позже now-days.
func StatsForWindow[T models.PnlEvent](trades []T, days int, now time.Time) WindowStats {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var ws WindowStats
	wins := 0
	for _, t := range trades {
		if !t.At().After(cutoff) {
			continue
		}
		ws.Trades++
		ws.PnL += t.Amount()
		if t.Amount() > 0 {
			wins++
		}
	}
	if ws.Trades > 0 {
		ws.Winrate = float64(wins) / float64(ws.Trades) * 100
	}
	return ws
}
