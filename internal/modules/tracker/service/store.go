package service

import (
	"context"

	"envelope_bot/internal/models"
)

// Store — где живёт TrackingStore между запусками.
type Store interface {
	Load(ctx context.Context) (models.TrackingStore, error)
	Save(ctx context.Context, s models.TrackingStore) error
}

// normalize заменяет null из старых файлов пустыми коллекциями.
func normalize(s models.TrackingStore) models.TrackingStore {
	if s.Trades == nil {
		s.Trades = []models.BalanceTrade{}
	}
	if s.DailySnapshots == nil {
		s.DailySnapshots = []models.BalanceSnapshot{}
	}
	if s.CryptoStats == nil {
		s.CryptoStats = map[string]*models.InstrumentData{}
	}
	for sym, d := range s.CryptoStats {
		if d == nil {
			delete(s.CryptoStats, sym)
			continue
		}
		if d.Trades == nil {
			d.Trades = []models.InstrumentTrade{}
		}
		if d.DailySnapshots == nil {
			d.DailySnapshots = []models.InstrumentSnapshot{}
		}
	}
	return s
}
