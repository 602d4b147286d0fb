package runner

import (
	"context"
	"time"

	"envelope_bot/internal/metrics"
	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"
	strategy "envelope_bot/internal/modules/strategy/service"
	"envelope_bot/pkg/logger"
	"envelope_bot/pkg/tracing"

	"github.com/pkg/errors"
)

// Engine приводит ордера на бирже к целевому состоянию стратегии за один проход.
type Engine struct {
	gw          Gateway
	strat       strategy.Engine
	cfg         config.StrategyConfig
	instruments []config.Instrument

	now func() time.Time
}

func NewEngine(gw Gateway, strat strategy.Engine, cfg *config.Config) *Engine {
	return &Engine{
		gw:          gw,
		strat:       strat,
		cfg:         cfg.Strategy,
		instruments: cfg.Instruments,
		now:         time.Now,
	}
}

// work — состояние инструмента внутри одного цикла.
type work struct {
	inst       config.Instrument
	snap       *models.MarketSnapshot
	orders     []models.Order
	triggers   []models.TriggerOrder
	filled     map[models.Side]int
	skipLadder bool // старые ордера сняты не все
}

func (w *work) symbol() string { return w.inst.Symbol }

// Reconcile: настройка → данные → обнаружение → отмена → позиции → лестницы → отправка.
// Фазы идут строго друг за другом, внутри фазы инструменты обрабатываются параллельно.
func (e *Engine) Reconcile(ctx context.Context) (rep *CycleReport, err error) {
	rep = newCycleReport(e.now())
	span, ctx := tracing.StartSpan(ctx, "reconcile")
	defer func() {
		rep.Finished = e.now()
		tracing.Finish(span, err)
	}()

	set, err := e.setup(ctx, rep)
	if err != nil {
		return rep, err
	}

	set = e.marketData(ctx, rep, set)

	bal, err := e.gw.Balance(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "fetch balance")
	}
	rep.Balance, rep.Equity = bal, bal.Total
	metrics.Equity.Set(bal.Total)
	logger.Info("[CYCLE] strategy=%s equity=%.2f free=%.2f instruments=%d", e.strat.Name(), bal.Total, bal.Free, len(set))

	set = e.discover(ctx, rep, set)
	set = e.cancelStale(ctx, rep, set)

	positions, err := e.syncPositions(ctx, rep)
	if err != nil {
		return rep, err
	}

	protection := e.planProtection(set, positions)
	ladders := e.planLadders(rep, set, positions)

	e.submit(ctx, rep, protection, ladders)

	ok, failed := rep.Placed()
	logger.Info("[CYCLE] done: placed=%d failed=%d dropped=%d", ok, failed, len(rep.Dropped))
	return rep, nil
}

func keep(set []*work, rep *CycleReport) []*work {
	out := set[:0]
	for _, w := range set {
		if _, dropped := rep.Dropped[w.symbol()]; !dropped {
			out = append(out, w)
		}
	}
	return out
}

func (e *Engine) symbols() []string {
	out := make([]string, 0, len(e.instruments))
	for _, inst := range e.instruments {
		out = append(out, inst.Symbol)
	}
	return out
}
