package service

import (
	"envelope_bot/internal/helper"
	"envelope_bot/internal/models"

	"github.com/shopspring/decimal"
)

// PriceToPrecision — к ближайшему кратному tickSz. Неизвестный инструмент не трогаем.
func (c *Client) PriceToPrecision(symbol string, price float64) float64 {
	info, ok := c.PairInfo(symbol)
	if !ok {
		return price
	}
	return helper.RoundToTick(price, info.TickSz)
}

// AmountToPrecision — объём в базовой монете, округлённый вниз до целого lotSz
// контрактов. Меньше minSz → 0.
func (c *Client) AmountToPrecision(symbol string, amount float64) float64 {
	info, ok := c.PairInfo(symbol)
	if !ok {
		return amount
	}
	contracts := toContracts(info, amount)
	if contracts < info.MinSz {
		return 0
	}
	return fromContracts(info, contracts)
}

func toContracts(info models.PairInfo, amount float64) float64 {
	if info.CtVal <= 0 {
		return helper.RoundDownToTick(amount, info.LotSz)
	}
	v, _ := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(info.CtVal)).Float64()
	return helper.RoundDownToTick(v, info.LotSz)
}

func fromContracts(info models.PairInfo, contracts float64) float64 {
	if info.CtVal <= 0 {
		return contracts
	}
	v, _ := decimal.NewFromFloat(contracts).Mul(decimal.NewFromFloat(info.CtVal)).Float64()
	return v
}

func formatSize(info models.PairInfo, contracts float64) string {
	return helper.FormatStep(contracts, info.LotSz)
}

func formatPrice(info models.PairInfo, price float64) string {
	return helper.FormatStep(price, info.TickSz)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := v.Float64()
	return f
}
