package models

import "time"

// TrackingStore — накопительная статистика стратегии, переживает рестарты.
type TrackingStore struct {
	InitialBalance *float64                   `json:"initial_balance"`
	LastBalance    *float64                   `json:"last_balance"`
	StartDate      *time.Time                 `json:"start_date"`
	Trades         []BalanceTrade             `json:"trades"`
	DailySnapshots []BalanceSnapshot          `json:"daily_snapshots"`
	Stats          TradeStats                 `json:"stats"`
	CryptoStats    map[string]*InstrumentData `json:"crypto_stats"`
}

// BalanceTrade — изменение баланса между циклами.
type BalanceTrade struct {
	Timestamp      time.Time `json:"timestamp"`
	Pnl            float64   `json:"pnl"`
	BalanceBefore  float64   `json:"balance_before"`
	BalanceAfter   float64   `json:"balance_after"`
	PositionsCount int       `json:"positions_count"`
}

type BalanceSnapshot struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Balance   float64   `json:"balance"`
	Positions int       `json:"positions"`
	Timestamp time.Time `json:"timestamp"`
}

type TradeStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalPnl      float64 `json:"total_pnl"`
	Winrate       float64 `json:"winrate"`
}

// InstrumentData — то же самое в разрезе одного инструмента.
type InstrumentData struct {
	Trades         []InstrumentTrade    `json:"trades"`
	Stats          InstrumentStats      `json:"stats"`
	DailySnapshots []InstrumentSnapshot `json:"daily_snapshots"`
}

type InstrumentStats struct {
	TradeStats
	LastPositionSize  float64 `json:"last_position_size"`
	LastUnrealizedPnl float64 `json:"last_unrealized_pnl"`
}

type InstrumentTrade struct {
	Timestamp     time.Time    `json:"timestamp"`
	Pnl           float64      `json:"pnl"`
	PositionSize  float64      `json:"position_size"`
	UnrealizedPnl float64      `json:"unrealized_pnl"`
	EntryPrice    float64      `json:"entry_price"`
	CurrentPrice  float64      `json:"current_price"`
	Side          PositionSide `json:"side"`
}

type InstrumentSnapshot struct {
	Date          string       `json:"date"`
	UnrealizedPnl float64      `json:"unrealized_pnl"`
	PositionSize  float64      `json:"position_size"`
	EntryPrice    float64      `json:"entry_price"`
	CurrentPrice  float64      `json:"current_price"`
	Side          PositionSide `json:"side"`
	Timestamp     time.Time    `json:"timestamp"`
}

// PnlEvent — общий вид сделки для оконной статистики.
type PnlEvent interface {
	At() time.Time
	Amount() float64
}

func (t BalanceTrade) At() time.Time      { return t.Timestamp }
func (t BalanceTrade) Amount() float64    { return t.Pnl }
func (t InstrumentTrade) At() time.Time   { return t.Timestamp }
func (t InstrumentTrade) Amount() float64 { return t.Pnl }

// Record учитывает событие: > 0 — прибыльное, иначе убыточное.
func (s *TradeStats) Record(pnl float64) {
	s.TotalTrades++
	if pnl > 0 {
		s.WinningTrades++
	} else {
		s.LosingTrades++
	}
	s.TotalPnl += pnl
	s.Winrate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
}
