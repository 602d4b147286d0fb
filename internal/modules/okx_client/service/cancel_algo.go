package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"envelope_bot/internal/models"

	"go.uber.org/multierr"
)

// лимиты OKX на размер пакета
const (
	cancelAlgosBatch  = 10
	cancelOrdersBatch = 20
)

// OpenTriggerOrders — висящие trigger-ордера по инструменту.
func (c *Client) OpenTriggerOrders(ctx context.Context, symbol string) ([]models.TriggerOrder, error) {
	q := url.Values{"ordType": {"trigger"}, "instType": {"SWAP"}, "instId": {symbol}}
	data, err := call[algoOrder](ctx, c, "OpenTriggerOrders", http.MethodGet, "/api/v5/trade/orders-algo-pending", q, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	info, _ := c.PairInfo(symbol)
	out := make([]models.TriggerOrder, 0, len(data))
	for _, d := range data {
		price := parseFloat(d.OrdPx)
		if d.OrdPx == "-1" {
			price = 0
		}
		out = append(out, models.TriggerOrder{
			ID:           d.AlgoID,
			Symbol:       d.InstID,
			Type:         d.OrdType,
			Side:         models.Side(d.Side),
			Price:        price,
			TriggerPrice: parseFloat(d.TriggerPx),
			Size:         fromContracts(info, parseFloat(d.Sz)),
			ReduceOnly:   isReducing(d.Side, d.PosSide, d.ReduceOnly),
			CreatedAt:    parseMillis(d.CTime),
		})
	}
	return out, nil
}

// CancelTriggerOrders снимает trigger-ордера пачками по 10.
func (c *Client) CancelTriggerOrders(ctx context.Context, symbol string, ids []string) error {
	var errs error
	for start := 0; start < len(ids); start += cancelAlgosBatch {
		end := min(start+cancelAlgosBatch, len(ids))
		body := make([]map[string]string, 0, end-start)
		for _, id := range ids[start:end] {
			body = append(body, map[string]string{"instId": symbol, "algoId": id})
		}

		acks, err := call[algoAck](ctx, c, "CancelAlgo", http.MethodPost, "/api/v5/trade/cancel-algos", nil, body)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		for _, a := range acks {
			if e := a.err(); e != nil {
				errs = multierr.Append(errs, fmt.Errorf("CancelAlgo %s %s: %w", symbol, a.AlgoID, e))
			}
		}
	}
	return errs
}

// isReducing: в hedge-режиме OKX не выставляет reduceOnly, закрытие
// определяется парой side/posSide.
func isReducing(side, posSide, reduceOnly string) bool {
	if reduceOnly == "true" {
		return true
	}
	return (posSide == "long" && side == "sell") || (posSide == "short" && side == "buy")
}

func parseMillis(s string) time.Time {
	ms := int64(parseFloat(s))
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
