package models

import "time"

type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// Position — открытая позиция на бирже. Size в базовой монете.
type Position struct {
	Symbol           string
	Side             PositionSide
	Size             float64
	USDSize          float64
	EntryPrice       float64
	CurrentPrice     float64
	UnrealizedPnl    float64
	LiquidationPrice float64
	MarginMode       string
	Leverage         int
	OpenedAt         time.Time
}

// CloseSide — сторона ордера, который уменьшает позицию.
func (p Position) CloseSide() Side {
	if p.Side == PositionShort {
		return SideBuy
	}
	return SideSell
}
