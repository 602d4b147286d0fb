package service

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"envelope_bot/internal/models"
)

// OpenPositions — ненулевые позиции по списку инструментов.
func (c *Client) OpenPositions(ctx context.Context, symbols []string) ([]models.Position, error) {
	q := url.Values{"instType": {"SWAP"}}
	// OKX принимает до 10 instId через запятую, иначе берём все и фильтруем
	if len(symbols) > 0 && len(symbols) <= 10 {
		q.Set("instId", strings.Join(symbols, ","))
	}
	data, err := call[positionData](ctx, c, "OpenPositions", http.MethodGet, "/api/v5/account/positions", q, nil)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[s] = struct{}{}
	}

	res := make([]models.Position, 0, len(data))
	for _, d := range data {
		if _, ok := wanted[d.InstID]; len(wanted) > 0 && !ok {
			continue
		}
		// размер позиции (контракты)
		pos := parseFloat(d.Pos)
		if pos == 0 {
			continue
		}

		side := models.PositionLong
		switch d.PosSide {
		case "short":
			side = models.PositionShort
		case "net":
			if pos < 0 {
				side = models.PositionShort
			}
		}

		info, _ := c.PairInfo(d.InstID)
		size := fromContracts(info, math.Abs(pos))

		// последнее значение (last или mark)
		lastPx := parseFloat(d.Last)
		if lastPx == 0 {
			lastPx = parseFloat(d.MarkPx)
		}
		upl := parseFloat(d.UplLastPx)
		if upl == 0 {
			upl = parseFloat(d.Upl)
		}
		lev, _ := strconv.Atoi(d.Lever)

		res = append(res, models.Position{
			Symbol:           d.InstID,
			Side:             side,
			Size:             size,
			USDSize:          parseFloat(d.NotionalUsd),
			EntryPrice:       parseFloat(d.AvgPx),
			CurrentPrice:     lastPx,
			UnrealizedPnl:    upl,
			LiquidationPrice: parseFloat(d.LiqPx),
			MarginMode:       d.MgnMode,
			Leverage:         lev,
			OpenedAt:         parseMillis(d.CTime),
		})
	}
	return res, nil
}
