package helper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormTF приводит таймфрейм к формату баров OKX (1m, 15m, 1H, 4H, 1D ...).
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h":
		return "1H"
	case "120m", "2h":
		return "2H"
	case "240m", "4h":
		return "4H"
	case "6h", "12h":
		return strings.ToUpper(s)
	case "1d", "24h":
		return "1D"
	case "1w":
		return "1W"
	default:
		return s
	}
}

// RoundDownToTick — вниз к ближайшему кратному tick, без ошибок float.
func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	t := decimal.NewFromFloat(tick)
	v := decimal.NewFromFloat(px).Div(t).Floor().Mul(t)
	f, _ := v.Float64()
	return f
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	t := decimal.NewFromFloat(tick)
	v := decimal.NewFromFloat(px).Div(t).Ceil().Mul(t)
	f, _ := v.Float64()
	return f
}

// RoundToTick — к ближайшему кратному tick.
func RoundToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	t := decimal.NewFromFloat(tick)
	v := decimal.NewFromFloat(px).Div(t).Round(0).Mul(t)
	f, _ := v.Float64()
	return f
}

// FormatStep печатает значение с числом знаков шага (tickSz/lotSz), как ждёт OKX.
func FormatStep(v, step float64) string {
	d := decimal.NewFromFloat(v)
	if step <= 0 {
		return d.String()
	}
	places := -decimal.NewFromFloat(step).Exponent()
	if places < 0 {
		places = 0
	}
	return d.StringFixed(places)
}

const dayLayout = "2006-01-02"

// DayKey — календарный день в UTC, ключ дневных снапшотов.
func DayKey(t time.Time) string { return t.UTC().Format(dayLayout) }

func ParseDayKey(s string) (time.Time, error) { return time.Parse(dayLayout, s) }
