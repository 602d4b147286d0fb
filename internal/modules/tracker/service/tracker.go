package service

import (
	"math"
	"sort"
	"time"

	"envelope_bot/internal/helper"
	"envelope_bot/internal/models"
	"envelope_bot/pkg/logger"
)

// пороги, ниже которых изменение считается шумом
const (
	balanceEpsilon = 0.01
	pnlEpsilon     = 0.1
	sizeEpsilon    = 0.001

	snapshotDays = 365
)

// EmptyStore — состояние до первого цикла.
func EmptyStore() models.TrackingStore {
	return models.TrackingStore{
		Trades:         []models.BalanceTrade{},
		DailySnapshots: []models.BalanceSnapshot{},
		CryptoStats:    map[string]*models.InstrumentData{},
	}
}

// Update возвращает новое состояние: исходное не меняется.
// Повторный вызов с теми же equity и позициями событий не добавляет.
func Update(store models.TrackingStore, equity float64, positions []models.Position, now time.Time) models.TrackingStore {
	s := clone(store)
	now = now.UTC()

	if s.InitialBalance == nil {
		s.InitialBalance = ptr(equity)
		s.StartDate = ptr(now)
		s.LastBalance = ptr(equity)
		logger.Info("[TRACK] tracking started: initial balance %.2f", equity)
	}

	s.DailySnapshots = upsertBalanceSnapshot(s.DailySnapshots, models.BalanceSnapshot{
		Date:      helper.DayKey(now),
		Balance:   equity,
		Positions: len(positions),
		Timestamp: now,
	}, now)

	if s.LastBalance != nil {
		delta := equity - *s.LastBalance
		if math.Abs(delta) > balanceEpsilon {
			s.Trades = append(s.Trades, models.BalanceTrade{
				Timestamp:      now,
				Pnl:            delta,
				BalanceBefore:  *s.LastBalance,
				BalanceAfter:   equity,
				PositionsCount: len(positions),
			})
			s.Stats.Record(delta)
			logger.Info("[TRACK] balance %.2f -> %.2f (%+.2f)", *s.LastBalance, equity, delta)
		}
	}
	s.LastBalance = ptr(equity)

	for _, p := range mergeBySymbol(positions) {
		updateInstrument(&s, p, now)
	}
	return s
}

func updateInstrument(s *models.TrackingStore, p models.Position, now time.Time) {
	data, ok := s.CryptoStats[p.Symbol]
	if !ok {
		data = &models.InstrumentData{
			Trades:         []models.InstrumentTrade{},
			DailySnapshots: []models.InstrumentSnapshot{},
		}
		s.CryptoStats[p.Symbol] = data
	}

	dPnl := p.UnrealizedPnl - data.Stats.LastUnrealizedPnl
	dSize := p.Size - data.Stats.LastPositionSize
	if math.Abs(dPnl) > pnlEpsilon || math.Abs(dSize) > sizeEpsilon {
		data.Trades = append(data.Trades, models.InstrumentTrade{
			Timestamp:     now,
			Pnl:           dPnl,
			PositionSize:  p.Size,
			UnrealizedPnl: p.UnrealizedPnl,
			EntryPrice:    p.EntryPrice,
			CurrentPrice:  p.CurrentPrice,
			Side:          p.Side,
		})
		data.Stats.Record(dPnl)
	}
	data.Stats.LastPositionSize = p.Size
	data.Stats.LastUnrealizedPnl = p.UnrealizedPnl

	data.DailySnapshots = upsertInstrumentSnapshot(data.DailySnapshots, models.InstrumentSnapshot{
		Date:          helper.DayKey(now),
		UnrealizedPnl: p.UnrealizedPnl,
		PositionSize:  p.Size,
		EntryPrice:    p.EntryPrice,
		CurrentPrice:  p.CurrentPrice,
		Side:          p.Side,
		Timestamp:     now,
	}, now)
}

// mergeBySymbol: статистика ведётся по инструменту, в hedge-режиме long и
// short одного инструмента сводятся в одну запись. Сторона и цена входа — от
// большей позиции.
func mergeBySymbol(positions []models.Position) []models.Position {
	idx := make(map[string]int, len(positions))
	out := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		i, ok := idx[p.Symbol]
		if !ok {
			idx[p.Symbol] = len(out)
			out = append(out, p)
			continue
		}
		m := &out[i]
		if p.Size > m.Size {
			m.Side, m.EntryPrice = p.Side, p.EntryPrice
		}
		m.Size += p.Size
		m.UnrealizedPnl += p.UnrealizedPnl
		if m.CurrentPrice == 0 {
			m.CurrentPrice = p.CurrentPrice
		}
	}
	return out
}

func upsertBalanceSnapshot(list []models.BalanceSnapshot, snap models.BalanceSnapshot, now time.Time) []models.BalanceSnapshot {
	replaced := false
	for i := range list {
		if list[i].Date == snap.Date {
			list[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, snap)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return trim(list, func(x models.BalanceSnapshot) string { return x.Date }, now)
}

func upsertInstrumentSnapshot(list []models.InstrumentSnapshot, snap models.InstrumentSnapshot, now time.Time) []models.InstrumentSnapshot {
	replaced := false
	for i := range list {
		if list[i].Date == snap.Date {
			list[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, snap)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return trim(list, func(x models.InstrumentSnapshot) string { return x.Date }, now)
}

// trim оставляет даты за последние 365 дней и не больше 365 записей.
func trim[T any](list []T, date func(T) string, now time.Time) []T {
	cutoff := helper.DayKey(now.AddDate(0, 0, -snapshotDays))
	out := list[:0]
	for _, x := range list {
		if date(x) >= cutoff {
			out = append(out, x)
		}
	}
	if len(out) > snapshotDays {
		out = out[len(out)-snapshotDays:]
	}
	return out
}

func clone(in models.TrackingStore) models.TrackingStore {
	out := models.TrackingStore{
		Stats:          in.Stats,
		Trades:         append([]models.BalanceTrade{}, in.Trades...),
		DailySnapshots: append([]models.BalanceSnapshot{}, in.DailySnapshots...),
		CryptoStats:    make(map[string]*models.InstrumentData, len(in.CryptoStats)),
	}
	if in.InitialBalance != nil {
		out.InitialBalance = ptr(*in.InitialBalance)
	}
	if in.LastBalance != nil {
		out.LastBalance = ptr(*in.LastBalance)
	}
	if in.StartDate != nil {
		out.StartDate = ptr(*in.StartDate)
	}
	for sym, d := range in.CryptoStats {
		if d == nil {
			continue
		}
		out.CryptoStats[sym] = &models.InstrumentData{
			Trades:         append([]models.InstrumentTrade{}, d.Trades...),
			Stats:          d.Stats,
			DailySnapshots: append([]models.InstrumentSnapshot{}, d.DailySnapshots...),
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
