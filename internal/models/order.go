package models

import "time"

// Order — лимитный ордер, висящий в стакане.
type Order struct {
	ID         string
	Symbol     string
	Type       string
	Side       Side
	Price      float64
	Size       float64
	ReduceOnly bool
	Filled     float64
	Remaining  float64
	CreatedAt  time.Time
}

// TriggerOrder — условный ордер (OKX algo, ordType=trigger).
type TriggerOrder struct {
	ID           string
	Symbol       string
	Type         string
	Side         Side
	Price        float64
	TriggerPrice float64
	Size         float64
	ReduceOnly   bool
	CreatedAt    time.Time
}

// OrderRequest — параметры размещения обычного ордера.
type OrderRequest struct {
	Symbol     string
	Side       Side
	Type       string // limit | market
	Price      float64
	Size       float64
	ReduceOnly bool
	MarginMode string
	HedgeMode  bool
}

// TriggerOrderRequest — параметры условного ордера. Price == 0 → исполнение по рынку.
type TriggerOrderRequest struct {
	Symbol       string
	Side         Side
	Price        float64
	TriggerPrice float64
	Size         float64
	ReduceOnly   bool
	MarginMode   string
	HedgeMode    bool
}
