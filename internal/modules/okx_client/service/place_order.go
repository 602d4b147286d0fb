package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"envelope_bot/internal/models"

	"github.com/google/uuid"
)

// PlaceOrder ставит лимитный или рыночный ордер, возвращает ordId.
func (c *Client) PlaceOrder(ctx context.Context, r models.OrderRequest) (string, error) {
	info, ok := c.PairInfo(r.Symbol)
	if !ok {
		return "", fmt.Errorf("PlaceOrder %s: %w", r.Symbol, ErrPairNotFound)
	}
	contracts := toContracts(info, r.Size)
	if contracts <= 0 {
		return "", fmt.Errorf("PlaceOrder %s: size <= 0", r.Symbol)
	}

	ordType := r.Type
	if ordType == "" {
		ordType = "limit"
	}
	body := map[string]any{
		"instId":  r.Symbol,
		"tdMode":  r.MarginMode,
		"side":    string(r.Side),
		"ordType": ordType,
		"sz":      formatSize(info, contracts),
		"clOrdId": newClOrdID(),
	}
	if ordType == "limit" {
		if r.Price <= 0 {
			return "", fmt.Errorf("PlaceOrder %s: limit price <= 0", r.Symbol)
		}
		body["px"] = formatPrice(info, r.Price)
	}
	applyPositionMode(body, r.Side, r.ReduceOnly, r.HedgeMode)

	acks, err := call[orderAck](ctx, c, "PlaceOrder", http.MethodPost, "/api/v5/trade/order", nil, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.Symbol, err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("PlaceOrder %s: empty data", r.Symbol)
	}
	if err := acks[0].err(); err != nil {
		return "", fmt.Errorf("PlaceOrder %s rejected: %w", r.Symbol, err)
	}
	return acks[0].OrdID, nil
}

// applyPositionMode: в hedge-режиме направление задаёт posSide,
// reduceOnly OKX принимает только в net-режиме.
func applyPositionMode(body map[string]any, side models.Side, reduceOnly, hedge bool) {
	if !hedge {
		if reduceOnly {
			body["reduceOnly"] = true
		}
		return
	}
	ps := side.PositionSide()
	if reduceOnly {
		// закрывающий ордер уменьшает противоположную позицию
		if side == models.SideBuy {
			ps = models.PositionShort
		} else {
			ps = models.PositionLong
		}
	}
	body["posSide"] = string(ps)
}

func newClOrdID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
