package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"envelope_bot/internal/models"
)

// fakeGateway — биржа в памяти со сценарием ответов.
type fakeGateway struct {
	mu sync.Mutex

	pairs       map[string]models.PairInfo
	loadErr     error
	leverageErr map[string]error

	candles  map[string][]models.Candle
	ohlcvErr map[string]error

	balance    models.Balance
	balanceErr error

	triggers    map[string][]models.TriggerOrder
	orders      map[string][]models.Order
	discoverErr map[string]error
	cancelErr   map[string]error

	// ломает только отмену обычных ордеров
	cancelOrdersErr map[string]error

	positions    []models.Position
	positionsErr error

	placeErr map[string]error
	closeErr error

	leverageCalls     []string
	cancelledTriggers map[string][]string
	cancelledOrders   map[string][]string
	placedOrders      []models.OrderRequest
	placedTriggers    []models.TriggerOrderRequest
	positionsAsked    []string
	closed            int
	seq               int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		pairs:             map[string]models.PairInfo{},
		leverageErr:       map[string]error{},
		candles:           map[string][]models.Candle{},
		ohlcvErr:          map[string]error{},
		triggers:          map[string][]models.TriggerOrder{},
		orders:            map[string][]models.Order{},
		discoverErr:       map[string]error{},
		cancelErr:         map[string]error{},
		cancelOrdersErr:   map[string]error{},
		placeErr:          map[string]error{},
		cancelledTriggers: map[string][]string{},
		cancelledOrders:   map[string][]string{},
		balance:           models.Balance{Total: 1000, Free: 1000},
	}
}

// addInstrument регистрирует инструмент с n закрытыми барами по цене px и одним формирующимся.
func (f *fakeGateway) addInstrument(symbol string, n int, px float64) {
	f.pairs[symbol] = models.PairInfo{Symbol: symbol, TickSz: 0.01, LotSz: 1, MinSz: 1, CtVal: 0.001, State: "live"}
	bars := make([]models.Candle, 0, n+1)
	for i := 0; i < n; i++ {
		bars = append(bars, models.Candle{Open: px, High: px, Low: px, Close: px, Confirmed: true})
	}
	// формирующийся бар не должен влиять на полосы
	bars = append(bars, models.Candle{Open: px * 3, High: px * 3, Low: px * 3, Close: px * 3})
	f.candles[symbol] = bars
}

func (f *fakeGateway) LoadMarkets(context.Context) error { return f.loadErr }

func (f *fakeGateway) PairInfo(symbol string) (models.PairInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pairs[symbol]
	return p, ok
}

func (f *fakeGateway) SetMarginModeAndLeverage(_ context.Context, symbol, _ string, _ int, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leverageCalls = append(f.leverageCalls, symbol)
	return f.leverageErr[symbol]
}

func (f *fakeGateway) LastOHLCV(_ context.Context, symbol, _ string, _ int) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ohlcvErr[symbol]; err != nil {
		return nil, err
	}
	return f.candles[symbol], nil
}

func (f *fakeGateway) Balance(context.Context) (models.Balance, error) {
	return f.balance, f.balanceErr
}

func (f *fakeGateway) OpenTriggerOrders(_ context.Context, symbol string) ([]models.TriggerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.discoverErr[symbol]; err != nil {
		return nil, err
	}
	return f.triggers[symbol], nil
}

func (f *fakeGateway) CancelTriggerOrders(_ context.Context, symbol string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErr[symbol]; err != nil {
		return err
	}
	f.cancelledTriggers[symbol] = append(f.cancelledTriggers[symbol], ids...)
	return nil
}

func (f *fakeGateway) OpenOrders(_ context.Context, symbol string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[symbol], nil
}

func (f *fakeGateway) CancelOrders(_ context.Context, symbol string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErr[symbol]; err != nil {
		return err
	}
	if err := f.cancelOrdersErr[symbol]; err != nil {
		return err
	}
	f.cancelledOrders[symbol] = append(f.cancelledOrders[symbol], ids...)
	return nil
}

func (f *fakeGateway) OpenPositions(_ context.Context, symbols []string) ([]models.Position, error) {
	f.mu.Lock()
	f.positionsAsked = append([]string(nil), symbols...)
	f.mu.Unlock()
	if f.positionsErr != nil {
		return nil, f.positionsErr
	}
	wanted := map[string]bool{}
	for _, s := range symbols {
		wanted[s] = true
	}
	var out []models.Position
	for _, p := range f.positions {
		if wanted[p.Symbol] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGateway) PlaceOrder(_ context.Context, r models.OrderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.placeErr[r.Symbol]; err != nil {
		return "", err
	}
	f.placedOrders = append(f.placedOrders, r)
	f.seq++
	return fmt.Sprintf("ord-%d", f.seq), nil
}

func (f *fakeGateway) PlaceTriggerOrder(_ context.Context, r models.TriggerOrderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.placeErr[r.Symbol]; err != nil {
		return "", err
	}
	f.placedTriggers = append(f.placedTriggers, r)
	f.seq++
	return fmt.Sprintf("algo-%d", f.seq), nil
}

func (f *fakeGateway) PriceToPrecision(_ string, price float64) float64 {
	return math.Round(price*100) / 100
}

func (f *fakeGateway) AmountToPrecision(_ string, amount float64) float64 {
	return math.Floor(amount*1e6) / 1e6
}

func (f *fakeGateway) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

var errExchange = errors.New("exchange unavailable")
