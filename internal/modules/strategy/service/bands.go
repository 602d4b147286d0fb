package service

import (
	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"

	"github.com/pkg/errors"
)

var ErrInsufficientHistory = errors.New("insufficient history")

// ClosedBars отрезает хвостовые бары, которые ещё формируются.
func ClosedBars(history []models.Candle) []models.Candle {
	n := len(history)
	for n > 0 && !history[n-1].Confirmed {
		n--
	}
	return history[:n]
}

func source(c models.Candle, src config.Source) float64 {
	if src == config.SourceOHLC4 {
		return (c.Open + c.High + c.Low + c.Close) / 4
	}
	return c.Close
}

// ComputeBands считает базовую линию (SMA) и уровни конверта по закрытым барам.
//
// Нижний уровень base*(1-e), верхний base/(1-e): лонг от Low до High
// зарабатывает 1/(1-e)^2-1 от цены входа, а до base ровно e/(1-e),
// так же как шорт от High до base.
func ComputeBands(symbol string, history []models.Candle, cfg config.Instrument) (*models.MarketSnapshot, error) {
	window := cfg.MABaseWindow
	if window < 1 {
		return nil, errors.Errorf("%s: ma_base_window must be >= 1", symbol)
	}
	if len(history) < window {
		return nil, errors.Wrapf(ErrInsufficientHistory, "%s: have %d bars, need %d", symbol, len(history), window)
	}

	sma := newSMA(window)
	for _, c := range history[len(history)-window:] {
		sma.Update(source(c, cfg.Src))
	}
	base := sma.Value()
	if base <= 0 {
		return nil, errors.Errorf("%s: non-positive base %v", symbol, base)
	}

	bands := make([]models.Band, 0, len(cfg.Envelopes))
	for i, e := range cfg.Envelopes {
		bands = append(bands, models.Band{
			Index:    i + 1,
			Envelope: e,
			Low:      base * (1 - e),
			High:     base / (1 - e),
		})
	}

	return &models.MarketSnapshot{
		Symbol: symbol,
		Bars:   len(history),
		Base:   base,
		Bands:  bands,
	}, nil
}
