package models

import "time"

// PairInfo — метаданные инструмента, нужные для округления цены и объёма.
type PairInfo struct {
	Symbol   string
	TickSz   float64 // шаг цены
	LotSz    float64 // шаг объёма в контрактах
	MinSz    float64 // минимальный объём в контрактах
	CtVal    float64 // размер контракта в базовой монете
	State    string
	MaxLever int
}

// Candle — один бар OHLCV.
type Candle struct {
	Start  time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Confirmed == false для ещё формирующегося бара.
	Confirmed bool
}

// Balance в валюте расчётов (USDT).
type Balance struct {
	Total float64
	Free  float64
	Used  float64
}

// Band — один уровень конверта вокруг базовой линии.
type Band struct {
	Index    int // 1..N
	Envelope float64
	Low      float64
	High     float64
}

// MarketSnapshot пересчитывается каждый цикл и нигде не сохраняется.
type MarketSnapshot struct {
	Symbol string
	Bars   int
	Base   float64
	Bands  []Band
}
