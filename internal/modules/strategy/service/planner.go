package service

import (
	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"
)

// Rounder — округление к точности инструмента на бирже.
type Rounder interface {
	PriceToPrecision(symbol string, price float64) float64
	AmountToPrecision(symbol string, amount float64) float64
}

// Params — общие для всех инструментов параметры ордеров.
type Params struct {
	Leverage      int
	TriggerBuffer float64
	StopLossPct   float64
}

func NewParams(cfg *config.Config) Params {
	return Params{
		Leverage:      cfg.Strategy.Leverage,
		TriggerBuffer: cfg.Strategy.TriggerBuffer,
		StopLossPct:   cfg.Strategy.StopLossPct,
	}
}

// ladderSides — стороны ордеров, открывающих разрешённые позиции.
func ladderSides(inst config.Instrument) []models.Side {
	sides := make([]models.Side, 0, 2)
	if inst.Allows(string(models.PositionLong)) {
		sides = append(sides, models.SideBuy)
	}
	if inst.Allows(string(models.PositionShort)) {
		sides = append(sides, models.SideSell)
	}
	return sides
}

// Plan строит лестницу открывающих trigger-ордеров: по одной ступени на уровень
// начиная с filled[side]+1. Исполненные ступени не переставляются.
func Plan(
	snap *models.MarketSnapshot,
	inst config.Instrument,
	equity float64,
	p Params,
	filled map[models.Side]int,
	r Rounder,
) []models.OrderIntent {
	if snap == nil || len(snap.Bands) == 0 || equity <= 0 {
		return nil
	}
	rungs := len(snap.Bands)
	leverage := float64(p.Leverage)
	if leverage < 1 {
		leverage = 1
	}
	// маржа на одну ступень с плечом
	notional := inst.Size * equity / float64(rungs) * leverage

	var out []models.OrderIntent
	for _, side := range ladderSides(inst) {
		from := filled[side]
		if from < 0 {
			from = 0
		}
		for i := from; i < rungs; i++ {
			band := snap.Bands[i]

			price, trigger := band.Low, band.Low*(1+p.TriggerBuffer)
			if side == models.SideSell {
				price, trigger = band.High, band.High*(1-p.TriggerBuffer)
			}

			size := r.AmountToPrecision(snap.Symbol, notional/price)
			if size <= 0 {
				continue
			}
			out = append(out, models.OrderIntent{
				Symbol:       snap.Symbol,
				Kind:         models.IntentLadder,
				Side:         side,
				Price:        r.PriceToPrecision(snap.Symbol, price),
				TriggerPrice: r.PriceToPrecision(snap.Symbol, trigger),
				Size:         size,
				Rung:         band.Index,
			})
		}
	}
	return out
}

// PlanProtection — закрытие позиции лимиткой по базовой линии и стоп по рынку.
func PlanProtection(snap *models.MarketSnapshot, pos models.Position, p Params, r Rounder) []models.OrderIntent {
	if snap == nil || pos.Size <= 0 {
		return nil
	}
	size := r.AmountToPrecision(pos.Symbol, pos.Size)
	if size <= 0 {
		return nil
	}
	side := pos.CloseSide()

	stop := pos.EntryPrice * (1 - p.StopLossPct)
	if pos.Side == models.PositionShort {
		stop = pos.EntryPrice * (1 + p.StopLossPct)
	}

	out := []models.OrderIntent{{
		Symbol:     pos.Symbol,
		Kind:       models.IntentClose,
		Side:       side,
		Price:      r.PriceToPrecision(pos.Symbol, snap.Base),
		Size:       size,
		ReduceOnly: true,
	}}
	if p.StopLossPct > 0 && pos.EntryPrice > 0 {
		out = append(out, models.OrderIntent{
			Symbol:       pos.Symbol,
			Kind:         models.IntentStopLoss,
			Side:         side,
			TriggerPrice: r.PriceToPrecision(pos.Symbol, stop),
			Size:         size,
			ReduceOnly:   true,
		})
	}
	return out
}
