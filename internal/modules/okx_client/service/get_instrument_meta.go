package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"envelope_bot/internal/models"
)

// LoadMarkets подтягивает метаданные всех SWAP-инструментов.
func (c *Client) LoadMarkets(ctx context.Context) error {
	data, err := call[Instrument](ctx, c, "LoadMarkets", http.MethodGet,
		"/api/v5/public/instruments", url.Values{"instType": {"SWAP"}}, nil)
	if err != nil {
		return err
	}

	pairs := make(map[string]models.PairInfo, len(data))
	for _, inst := range data {
		info, err := parseInstrument(inst)
		if err != nil {
			continue
		}
		pairs[info.Symbol] = info
	}
	if len(pairs) == 0 {
		return fmt.Errorf("LoadMarkets: no usable instruments in %d rows", len(data))
	}

	c.mu.Lock()
	c.pairs = pairs
	c.mu.Unlock()
	return nil
}

// PairInfo — метаданные инструмента после LoadMarkets. Неторгуемые не возвращаются.
func (c *Client) PairInfo(symbol string) (models.PairInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.pairs[symbol]
	if !ok || (info.State != "" && info.State != "live") {
		return models.PairInfo{}, false
	}
	return info, true
}

func parseInstrument(inst Instrument) (models.PairInfo, error) {
	parsePos := func(name, s string) (float64, error) {
		if s == "" {
			return 0, fmt.Errorf("%s empty", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("%s parse: %v (%q)", name, err, s)
		}
		return v, nil
	}

	lotSz, err := parsePos("lotSz", inst.LotSz)
	if err != nil {
		return models.PairInfo{}, err
	}
	minSz, err := parsePos("minSz", inst.MinSz)
	if err != nil {
		return models.PairInfo{}, err
	}
	tickSz, err := parsePos("tickSz", inst.TickSz)
	if err != nil {
		return models.PairInfo{}, err
	}
	ctVal, err := parsePos("ctVal", inst.CtVal)
	if err != nil {
		return models.PairInfo{}, err
	}
	if inst.CtMult != "" {
		if v, e := strconv.ParseFloat(inst.CtMult, 64); e == nil && v > 0 {
			ctVal *= v
		}
	}
	lever, _ := strconv.Atoi(inst.Lever)

	return models.PairInfo{
		Symbol:   inst.InstID,
		TickSz:   tickSz,
		LotSz:    lotSz,
		MinSz:    minSz,
		CtVal:    ctVal,
		State:    inst.State,
		MaxLever: lever,
	}, nil
}
