package service

import (
	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"
)

// CountResting считает открывающие (не reduce-only) ордера по сторонам.
// Ступени конверта висят как trigger-ордера, поэтому учитываются оба вида.
func CountResting(orders []models.Order, triggers []models.TriggerOrder) map[models.Side]int {
	out := map[models.Side]int{models.SideBuy: 0, models.SideSell: 0}
	for _, o := range orders {
		if !o.ReduceOnly {
			out[o.Side]++
		}
	}
	for _, o := range triggers {
		if !o.ReduceOnly {
			out[o.Side]++
		}
	}
	return out
}

// InferFilledRungs переводит число висевших открывающих ордеров стороны в
// число уже исполненных ступеней. Результат не отрицательный; политика
// resting может вернуть больше rungCount, Plan такое значение обрезает.
func InferFilledRungs(policy config.RungInference, rungCount, resting int) int {
	if rungCount <= 0 {
		return 0
	}
	if resting < 0 {
		resting = 0
	}

	switch policy {
	case config.RungsResting:
		return resting
	default:
		// верхние ступени исполнены, висели самые глубокие
		return rungCount - min(resting, rungCount)
	}
}
