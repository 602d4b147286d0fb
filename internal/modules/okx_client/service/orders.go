package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"envelope_bot/internal/models"

	"go.uber.org/multierr"
)

// OpenOrders — обычные ордера в стакане по инструменту.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	q := url.Values{"instType": {"SWAP"}, "instId": {symbol}}
	data, err := call[pendingOrder](ctx, c, "OpenOrders", http.MethodGet, "/api/v5/trade/orders-pending", q, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	info, _ := c.PairInfo(symbol)
	out := make([]models.Order, 0, len(data))
	for _, d := range data {
		size := fromContracts(info, parseFloat(d.Sz))
		filled := fromContracts(info, parseFloat(d.AccFillSz))
		out = append(out, models.Order{
			ID:         d.OrdID,
			Symbol:     d.InstID,
			Type:       d.OrdType,
			Side:       models.Side(d.Side),
			Price:      parseFloat(d.Px),
			Size:       size,
			ReduceOnly: isReducing(d.Side, d.PosSide, d.ReduceOnly),
			Filled:     filled,
			Remaining:  size - filled,
			CreatedAt:  parseMillis(d.CTime),
		})
	}
	return out, nil
}

// CancelOrders снимает ордера пачками по 20.
func (c *Client) CancelOrders(ctx context.Context, symbol string, ids []string) error {
	var errs error
	for start := 0; start < len(ids); start += cancelOrdersBatch {
		end := min(start+cancelOrdersBatch, len(ids))
		body := make([]map[string]string, 0, end-start)
		for _, id := range ids[start:end] {
			body = append(body, map[string]string{"instId": symbol, "ordId": id})
		}

		acks, err := call[orderAck](ctx, c, "CancelOrders", http.MethodPost, "/api/v5/trade/cancel-batch-orders", nil, body)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		for _, a := range acks {
			if e := a.err(); e != nil {
				errs = multierr.Append(errs, fmt.Errorf("CancelOrders %s %s: %w", symbol, a.OrdID, e))
			}
		}
	}
	return errs
}
