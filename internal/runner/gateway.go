package runner

import (
	"context"

	"envelope_bot/internal/models"
)

// Gateway — всё, что цикл делает на бирже. Каждый вызов может упасть сам по себе.
type Gateway interface {
	LoadMarkets(ctx context.Context) error
	PairInfo(symbol string) (models.PairInfo, bool)
	SetMarginModeAndLeverage(ctx context.Context, symbol, marginMode string, leverage int, hedge bool) error

	LastOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
	Balance(ctx context.Context) (models.Balance, error)

	OpenTriggerOrders(ctx context.Context, symbol string) ([]models.TriggerOrder, error)
	CancelTriggerOrders(ctx context.Context, symbol string, ids []string) error
	OpenOrders(ctx context.Context, symbol string) ([]models.Order, error)
	CancelOrders(ctx context.Context, symbol string, ids []string) error
	OpenPositions(ctx context.Context, symbols []string) ([]models.Position, error)

	PlaceOrder(ctx context.Context, r models.OrderRequest) (string, error)
	PlaceTriggerOrder(ctx context.Context, r models.TriggerOrderRequest) (string, error)

	PriceToPrecision(symbol string, price float64) float64
	AmountToPrecision(symbol string, amount float64) float64

	Close() error
}
