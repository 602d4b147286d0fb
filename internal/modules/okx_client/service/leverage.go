package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// SetMarginModeAndLeverage выставляет плечо для режима маржи. В isolated
// при hedge-режиме OKX хранит плечо отдельно для long и short.
func (c *Client) SetMarginModeAndLeverage(ctx context.Context, symbol, marginMode string, leverage int, hedge bool) error {
	if leverage < 1 {
		return fmt.Errorf("SetLeverage %s: leverage %d < 1", symbol, leverage)
	}

	posSides := []string{""}
	if marginMode == "isolated" && hedge {
		posSides = []string{"long", "short"}
	}

	for _, ps := range posSides {
		body := map[string]string{
			"instId":  symbol,
			"lever":   strconv.Itoa(leverage),
			"mgnMode": marginMode,
		}
		if ps != "" {
			body["posSide"] = ps
		}
		if _, err := call[leverageAck](ctx, c, "SetLeverage", http.MethodPost, "/api/v5/account/set-leverage", nil, body); err != nil {
			return fmt.Errorf("%s %s: %w", symbol, ps, err)
		}
	}
	return nil
}
