package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"envelope_bot/internal/metrics"
	"envelope_bot/internal/modules/config"
	tracker "envelope_bot/internal/modules/tracker/service"
	"envelope_bot/internal/notify"
	"envelope_bot/pkg/logger"
	"envelope_bot/pkg/tracing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Cycle — один запуск: состояние → сверка → статистика → отчёт → уведомление.
type Cycle struct {
	gw       Gateway
	engine   *Engine
	store    tracker.Store
	report   *tracker.Report
	notifier notify.Notifier
	metrics  config.MetricsConfig

	now func() time.Time
}

func NewCycle(
	gw Gateway,
	engine *Engine,
	store tracker.Store,
	report *tracker.Report,
	notifier notify.Notifier,
	cfg *config.Config,
) *Cycle {
	return &Cycle{
		gw:       gw,
		engine:   engine,
		store:    store,
		report:   report,
		notifier: notifier,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Run выполняет ровно один цикл. Gateway.Close вызывается один раз на любом пути,
// фатальная ошибка возвращается после него.
func (c *Cycle) Run(ctx context.Context) (err error) {
	started := c.now()
	span, ctx := tracing.StartSpan(ctx, "cycle")
	defer func() {
		if cerr := c.gw.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrap(cerr, "close gateway"))
		}
		metrics.CycleDuration.Observe(c.now().Sub(started).Seconds())
		if err == nil {
			metrics.LastSuccess.SetToCurrentTime()
		}
		if perr := metrics.Push(ctx, c.metrics.PushgatewayURL, c.metrics.Job); perr != nil {
			logger.Warn("[CYCLE] push metrics: %v", perr)
		}
		tracing.Finish(span, err)
	}()

	state, err := c.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load tracking")
	}

	rep, err := c.engine.Reconcile(ctx)
	if err != nil {
		c.alert(ctx, err)
		return errors.Wrap(err, "reconcile")
	}

	now := c.now()
	state = tracker.Update(state, rep.Equity, rep.Positions, now)
	if err := c.store.Save(ctx, state); err != nil {
		return errors.Wrap(err, "save tracking")
	}

	text := c.report.Build(state, rep.Equity, rep.Positions, now)
	if err := c.report.Append(text, now); err != nil {
		logger.Warn("[REPORT] %v", err)
	}

	msg := c.report.Summary(state, rep.Equity, len(rep.Positions)) + cycleDigest(rep)
	if err := c.notifier.Send(ctx, msg); err != nil {
		logger.Warn("[CYCLE] notify: %v", err)
	}

	if ferr := rep.Failures(); ferr != nil {
		logger.Warn("[CYCLE] %d order failures: %v", len(multierr.Errors(ferr)), ferr)
	}
	return nil
}

func (c *Cycle) alert(ctx context.Context, cause error) {
	if err := c.notifier.Send(ctx, fmt.Sprintf("envelope cycle failed: %v", cause)); err != nil {
		logger.Warn("[CYCLE] notify: %v", err)
	}
}

// cycleDigest — хвост уведомления: ордера и выпавшие инструменты.
func cycleDigest(rep *CycleReport) string {
	ok, failed := rep.Placed()
	var b strings.Builder
	fmt.Fprintf(&b, "\nOrders: placed %d, failed %d", ok, failed)
	if len(rep.Dropped) > 0 {
		syms := make([]string, 0, len(rep.Dropped))
		for s, reason := range rep.Dropped {
			syms = append(syms, fmt.Sprintf("%s (%s)", s, reason))
		}
		sort.Strings(syms)
		fmt.Fprintf(&b, "\nSkipped: %s", strings.Join(syms, ", "))
	}
	return b.String()
}
