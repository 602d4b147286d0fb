package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"envelope_bot/internal/models"
)

const settleCcy = "USDT"

// Balance — баланс USDT на торговом счёте.
func (c *Client) Balance(ctx context.Context) (models.Balance, error) {
	data, err := call[balanceData](ctx, c, "Balance", http.MethodGet, "/api/v5/account/balance", url.Values{"ccy": {settleCcy}}, nil)
	if err != nil {
		return models.Balance{}, err
	}
	if len(data) == 0 {
		return models.Balance{}, fmt.Errorf("Balance: empty account data")
	}
	for _, acc := range data {
		for _, d := range acc.Details {
			if d.Ccy != settleCcy {
				continue
			}
			return models.Balance{
				Total: parseFloat(d.Eq),
				Free:  parseFloat(d.AvailBal),
				Used:  parseFloat(d.FrozenBal),
			}, nil
		}
	}
	// нет строки по валюте — на счёте ноль
	return models.Balance{}, nil
}
