package service

import (
	"context"
	"fmt"
	"net/http"

	"envelope_bot/internal/models"

	"github.com/pkg/errors"
)

var ErrPairNotFound = errors.New("pair not found")

// PlaceTriggerOrder ставит trigger-ордер (ordType=trigger), возвращает algoId.
// Price == 0 — после срабатывания исполняется по рынку.
func (c *Client) PlaceTriggerOrder(ctx context.Context, r models.TriggerOrderRequest) (string, error) {
	info, ok := c.PairInfo(r.Symbol)
	if !ok {
		return "", fmt.Errorf("PlaceTriggerOrder %s: %w", r.Symbol, ErrPairNotFound)
	}
	contracts := toContracts(info, r.Size)
	if contracts <= 0 {
		return "", fmt.Errorf("PlaceTriggerOrder %s: size <= 0", r.Symbol)
	}
	if r.TriggerPrice <= 0 {
		return "", fmt.Errorf("PlaceTriggerOrder %s: triggerPx <= 0", r.Symbol)
	}

	orderPx := "-1"
	if r.Price > 0 {
		orderPx = formatPrice(info, r.Price)
	}
	body := map[string]any{
		"instId":        r.Symbol,
		"tdMode":        r.MarginMode,
		"side":          string(r.Side),
		"ordType":       "trigger",
		"sz":            formatSize(info, contracts),
		"triggerPx":     formatPrice(info, r.TriggerPrice),
		"orderPx":       orderPx,
		"triggerPxType": "last",
		"algoClOrdId":   newClOrdID(),
	}
	applyPositionMode(body, r.Side, r.ReduceOnly, r.HedgeMode)

	acks, err := call[algoAck](ctx, c, "PlaceTriggerOrder", http.MethodPost, "/api/v5/trade/order-algo", nil, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.Symbol, err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("PlaceTriggerOrder %s: empty data", r.Symbol)
	}
	if err := acks[0].err(); err != nil {
		return "", fmt.Errorf("PlaceTriggerOrder %s rejected: %w", r.Symbol, err)
	}
	return acks[0].AlgoID, nil
}
