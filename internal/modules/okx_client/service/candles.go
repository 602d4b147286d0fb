package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"envelope_bot/internal/helper"
	"envelope_bot/internal/models"
)

// LastOHLCV — последние limit баров, от старых к новым. Последний бар
// обычно ещё формируется (Confirmed == false).
func (c *Client) LastOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	q := url.Values{
		"instId": {symbol},
		"bar":    {helper.NormTF(timeframe)},
		"limit":  {strconv.Itoa(limit)},
	}
	rows, err := call[[]string](ctx, c, "LastOHLCV", http.MethodGet, "/api/v5/market/candles", q, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	// OKX отдаёт от новых к старым: [ts,o,h,l,c,vol,volCcy,volCcyQuote,confirm]
	out := make([]models.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if len(r) < 6 {
			return nil, fmt.Errorf("LastOHLCV %s: short row %v", symbol, r)
		}
		ms, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("LastOHLCV %s: ts %q: %w", symbol, r[0], err)
		}
		confirmed := true
		if len(r) >= 9 {
			confirmed = r[8] == "1"
		}
		out = append(out, models.Candle{
			Start:     time.UnixMilli(ms).UTC(),
			Open:      parseFloat(r[1]),
			High:      parseFloat(r[2]),
			Low:       parseFloat(r[3]),
			Close:     parseFloat(r[4]),
			Volume:    parseFloat(r[5]),
			Confirmed: confirmed,
		})
	}
	return out, nil
}
