package service

import (
	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"
)

// Engine — расчёт целевого состояния ордеров по одному инструменту.
type Engine interface {
	Snapshot(symbol string, history []models.Candle, inst config.Instrument) (*models.MarketSnapshot, error)
	Ladder(snap *models.MarketSnapshot, inst config.Instrument, equity float64, filled map[models.Side]int, r Rounder) []models.OrderIntent
	Protection(snap *models.MarketSnapshot, pos models.Position, r Rounder) []models.OrderIntent
	FilledRungs(rungCount, resting int) int
	Name() string
}

type envelope struct {
	params Params
	policy config.RungInference
}

func NewEngine(cfg *config.Config) Engine {
	return &envelope{
		params: NewParams(cfg),
		policy: cfg.Strategy.RungInference,
	}
}

func (e *envelope) Snapshot(symbol string, history []models.Candle, inst config.Instrument) (*models.MarketSnapshot, error) {
	return ComputeBands(symbol, ClosedBars(history), inst)
}

func (e *envelope) Ladder(snap *models.MarketSnapshot, inst config.Instrument, equity float64, filled map[models.Side]int, r Rounder) []models.OrderIntent {
	return Plan(snap, inst, equity, e.params, filled, r)
}

func (e *envelope) Protection(snap *models.MarketSnapshot, pos models.Position, r Rounder) []models.OrderIntent {
	return PlanProtection(snap, pos, e.params, r)
}

func (e *envelope) FilledRungs(rungCount, resting int) int {
	return InferFilledRungs(e.policy, rungCount, resting)
}

func (e *envelope) Name() string { return "envelope" }
