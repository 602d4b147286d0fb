package runner

import (
	"context"
	"fmt"

	"envelope_bot/internal/metrics"
	"envelope_bot/internal/models"
	strategy "envelope_bot/internal/modules/strategy/service"
	"envelope_bot/pkg/logger"
	"envelope_bot/pkg/tracing"

	"github.com/pkg/errors"
)

func (e *Engine) dropped(rep *CycleReport, symbol string, reason DropReason, err error) {
	rep.drop(symbol, reason)
	metrics.InstrumentsDropped.WithLabelValues(string(reason)).Inc()
	if err != nil {
		logger.Warn("[CYCLE] %s dropped (%s): %v", symbol, reason, err)
	} else {
		logger.Warn("[CYCLE] %s dropped (%s)", symbol, reason)
	}
}

// setup: метаданные рынков, затем режим маржи и плечо. Ошибки плеча не фатальны.
func (e *Engine) setup(ctx context.Context, rep *CycleReport) (set []*work, err error) {
	span, ctx := tracing.StartSpan(ctx, "setup")
	defer func() { tracing.Finish(span, err) }()

	if err := e.gw.LoadMarkets(ctx); err != nil {
		return nil, errors.Wrap(err, "load markets")
	}

	for _, inst := range e.instruments {
		if _, ok := e.gw.PairInfo(inst.Symbol); !ok {
			e.dropped(rep, inst.Symbol, DropNoPairInfo, nil)
			continue
		}
		set = append(set, &work{inst: inst})
	}

	res := fanOut(ctx, e.cfg.Concurrency, len(set), func(ctx context.Context, i int) (struct{}, error) {
		return struct{}{}, e.gw.SetMarginModeAndLeverage(ctx, set[i].symbol(), e.cfg.MarginMode, e.cfg.Leverage, e.cfg.HedgeMode)
	})
	for i, r := range res {
		if r.Err != nil {
			logger.Warn("[SETUP] %s margin=%s leverage=%d: %v", set[i].symbol(), e.cfg.MarginMode, e.cfg.Leverage, r.Err)
		}
	}
	return set, nil
}

// marketData: свечи и полосы конверта. Без полос инструмент в цикле не участвует.
func (e *Engine) marketData(ctx context.Context, rep *CycleReport, set []*work) []*work {
	span, ctx := tracing.StartSpan(ctx, "market_data")
	defer span.Finish()

	res := fanOut(ctx, e.cfg.Concurrency, len(set), func(ctx context.Context, i int) (*models.MarketSnapshot, error) {
		w := set[i]
		bars, err := e.gw.LastOHLCV(ctx, w.symbol(), e.cfg.Timeframe, e.cfg.OHLCVLimit)
		if err != nil {
			return nil, err
		}
		return e.strat.Snapshot(w.symbol(), bars, w.inst)
	})
	for i, r := range res {
		w := set[i]
		switch {
		case errors.Is(r.Err, strategy.ErrInsufficientHistory):
			e.dropped(rep, w.symbol(), DropInsufficient, r.Err)
		case r.Err != nil:
			e.dropped(rep, w.symbol(), DropHistory, r.Err)
		default:
			w.snap = r.Value
			rep.Snapshots[w.symbol()] = r.Value
		}
	}
	return keep(set, rep)
}

type discovered struct {
	orders   []models.Order
	triggers []models.TriggerOrder
}

// discover: живые trigger- и обычные ордера. Не смогли прочитать — инструмент пропускаем.
func (e *Engine) discover(ctx context.Context, rep *CycleReport, set []*work) []*work {
	span, ctx := tracing.StartSpan(ctx, "discover")
	defer span.Finish()

	res := fanOut(ctx, e.cfg.Concurrency, len(set), func(ctx context.Context, i int) (discovered, error) {
		sym := set[i].symbol()
		triggers, err := e.gw.OpenTriggerOrders(ctx, sym)
		if err != nil {
			return discovered{}, errors.Wrap(err, "trigger orders")
		}
		orders, err := e.gw.OpenOrders(ctx, sym)
		if err != nil {
			return discovered{}, errors.Wrap(err, "open orders")
		}
		return discovered{orders: orders, triggers: triggers}, nil
	})
	for i, r := range res {
		w := set[i]
		if r.Err != nil {
			e.dropped(rep, w.symbol(), DropDiscover, r.Err)
			continue
		}
		w.orders, w.triggers = r.Value.orders, r.Value.triggers
		logger.Info("[DISCOVER] %s triggers=%d orders=%d", w.symbol(), len(w.triggers), len(w.orders))
	}
	return keep(set, rep)
}

// cancelStale считает висящие ступени по сторонам и снимает всё найденное.
// Инструмент с неудачной отменой остаётся в наборе только ради защиты позиции.
func (e *Engine) cancelStale(ctx context.Context, rep *CycleReport, set []*work) []*work {
	span, ctx := tracing.StartSpan(ctx, "cancel")
	defer span.Finish()

	for _, w := range set {
		rungs := len(w.inst.Envelopes)
		resting := strategy.CountResting(w.orders, w.triggers)
		w.filled = map[models.Side]int{
			models.SideBuy:  e.strat.FilledRungs(rungs, resting[models.SideBuy]),
			models.SideSell: e.strat.FilledRungs(rungs, resting[models.SideSell]),
		}
		rep.AlreadyFilled[w.symbol()] = w.filled
	}

	res := fanOut(ctx, e.cfg.Concurrency, len(set), func(ctx context.Context, i int) (int, error) {
		w := set[i]
		var n int
		if ids := triggerIDs(w.triggers); len(ids) > 0 {
			if err := e.gw.CancelTriggerOrders(ctx, w.symbol(), ids); err != nil {
				return n, errors.Wrap(err, "cancel triggers")
			}
			n += len(ids)
			metrics.OrdersCancelled.WithLabelValues("trigger").Add(float64(len(ids)))
		}
		if ids := orderIDs(w.orders); len(ids) > 0 {
			if err := e.gw.CancelOrders(ctx, w.symbol(), ids); err != nil {
				return n, errors.Wrap(err, "cancel orders")
			}
			n += len(ids)
			metrics.OrdersCancelled.WithLabelValues("order").Add(float64(len(ids)))
		}
		return n, nil
	})
	for i, r := range res {
		w := set[i]
		rep.Cancelled[w.symbol()] = r.Value
		if r.Err != nil {
			// часть ордеров могла остаться: ступени не ставим, чтобы не задвоить,
			// а закрытие и стоп позиции ставим всё равно
			w.skipLadder = true
			e.dropped(rep, w.symbol(), DropCancel, r.Err)
			continue
		}
		logger.Info("[CANCEL] %s cancelled=%d filled buy=%d sell=%d",
			w.symbol(), r.Value, w.filled[models.SideBuy], w.filled[models.SideSell])
	}
	return set
}

func triggerIDs(in []models.TriggerOrder) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		out = append(out, o.ID)
	}
	return out
}

func orderIDs(in []models.Order) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		out = append(out, o.ID)
	}
	return out
}

// syncPositions читает позиции по всем инструментам из конфига, включая
// выпавшие из цикла: статистика и отчёт видят каждую живую позицию.
// Без позиций непонятно, какие инструменты пустые, поэтому ошибка фатальна.
func (e *Engine) syncPositions(ctx context.Context, rep *CycleReport) (positions []models.Position, err error) {
	span, ctx := tracing.StartSpan(ctx, "positions")
	defer func() { tracing.Finish(span, err) }()

	if len(e.instruments) == 0 {
		return nil, nil
	}
	positions, err = e.gw.OpenPositions(ctx, e.symbols())
	if err != nil {
		return nil, errors.Wrap(err, "fetch positions")
	}
	rep.Positions = positions
	metrics.OpenPositions.Set(float64(len(positions)))
	for _, p := range positions {
		logger.Info("[POSITIONS] %s %s size=%.6f entry=%.6f upl=%.4f",
			p.Symbol, p.Side, p.Size, p.EntryPrice, p.UnrealizedPnl)
	}
	return positions, nil
}

func (e *Engine) planProtection(set []*work, positions []models.Position) []models.OrderIntent {
	bySymbol := make(map[string]*work, len(set))
	for _, w := range set {
		bySymbol[w.symbol()] = w
	}

	var out []models.OrderIntent
	for _, p := range positions {
		w, ok := bySymbol[p.Symbol]
		if !ok {
			logger.Warn("[POSITIONS] %s %s: instrument skipped this cycle, protection left as is", p.Symbol, p.Side)
			continue
		}
		intents := e.strat.Protection(w.snap, p, e.gw)
		if len(intents) == 0 {
			logger.Warn("[POSITIONS] %s %s: nothing to protect (size=%.8f)", p.Symbol, p.Side, p.Size)
		}
		out = append(out, intents...)
	}
	return out
}

// planLadders: с позицией переставляем только неисполненные ступени,
// без позиции ставим всю лестницу по разрешённым сторонам.
func (e *Engine) planLadders(rep *CycleReport, set []*work, positions []models.Position) []models.OrderIntent {
	positioned := make(map[string]bool, len(positions))
	for _, p := range positions {
		positioned[p.Symbol] = true
	}

	var out []models.OrderIntent
	for _, w := range set {
		if w.skipLadder {
			continue
		}
		filled := map[models.Side]int{}
		if positioned[w.symbol()] {
			filled = w.filled
		}
		out = append(out, e.strat.Ladder(w.snap, w.inst, rep.Equity, filled, e.gw)...)
	}
	return out
}

// submit: сначала закрытие и стопы, затем лестницы. Ошибка ордера не трогает остальные.
func (e *Engine) submit(ctx context.Context, rep *CycleReport, protection, ladders []models.OrderIntent) {
	span, ctx := tracing.StartSpan(ctx, "submit")
	defer span.Finish()

	for _, batch := range [][]models.OrderIntent{protection, ladders} {
		res := fanOut(ctx, e.cfg.Concurrency, len(batch), func(ctx context.Context, i int) (string, error) {
			return e.place(ctx, batch[i])
		})
		for i, r := range res {
			in := batch[i]
			tr := TaskResult{Kind: in.Kind, Symbol: in.Symbol, Intent: in, OrderID: r.Value, Err: r.Err}
			rep.Results = append(rep.Results, tr)
			if r.Err != nil {
				metrics.OrdersFailed.WithLabelValues(string(in.Kind)).Inc()
				logger.Error("[SUBMIT] %s %s %s rung=%d size=%.8f px=%.8f trigger=%.8f: %v",
					in.Symbol, in.Kind, in.Side, in.Rung, in.Size, in.Price, in.TriggerPrice, r.Err)
				continue
			}
			metrics.OrdersPlaced.WithLabelValues(string(in.Kind)).Inc()
			logger.Info("[SUBMIT] %s %s %s rung=%d size=%.8f px=%.8f trigger=%.8f id=%s",
				in.Symbol, in.Kind, in.Side, in.Rung, in.Size, in.Price, in.TriggerPrice, r.Value)
		}
	}
}

func (e *Engine) place(ctx context.Context, in models.OrderIntent) (string, error) {
	if in.Size <= 0 {
		return "", fmt.Errorf("non-positive size %v", in.Size)
	}
	if in.IsTrigger() {
		return e.gw.PlaceTriggerOrder(ctx, models.TriggerOrderRequest{
			Symbol:       in.Symbol,
			Side:         in.Side,
			Price:        in.Price,
			TriggerPrice: in.TriggerPrice,
			Size:         in.Size,
			ReduceOnly:   in.ReduceOnly,
			MarginMode:   e.cfg.MarginMode,
			HedgeMode:    e.cfg.HedgeMode,
		})
	}
	return e.gw.PlaceOrder(ctx, models.OrderRequest{
		Symbol:     in.Symbol,
		Side:       in.Side,
		Type:       "limit",
		Price:      in.Price,
		Size:       in.Size,
		ReduceOnly: in.ReduceOnly,
		MarginMode: e.cfg.MarginMode,
		HedgeMode:  e.cfg.HedgeMode,
	})
}
