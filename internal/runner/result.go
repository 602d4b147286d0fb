package runner

import (
	"fmt"
	"time"

	"envelope_bot/internal/models"

	"go.uber.org/multierr"
)

type DropReason string

const (
	DropNoPairInfo   DropReason = "no_pair_info"
	DropHistory      DropReason = "history"
	DropInsufficient DropReason = "insufficient_history"
	DropDiscover     DropReason = "discover"
	DropCancel       DropReason = "cancel"
)

// TaskResult — итог отправки одного ордера.
type TaskResult struct {
	Kind    models.IntentKind
	Symbol  string
	Intent  models.OrderIntent
	OrderID string
	Err     error
}

func (r TaskResult) OK() bool { return r.Err == nil }

// CycleReport — что цикл увидел на бирже и что сделал.
type CycleReport struct {
	Started  time.Time
	Finished time.Time

	Balance   models.Balance
	Equity    float64
	Positions []models.Position

	Snapshots     map[string]*models.MarketSnapshot
	Dropped       map[string]DropReason // без новых ступеней; при DropCancel защита позиции ставится
	Cancelled     map[string]int
	AlreadyFilled map[string]map[models.Side]int
	Results       []TaskResult
}

func newCycleReport(started time.Time) *CycleReport {
	return &CycleReport{
		Started:       started,
		Snapshots:     make(map[string]*models.MarketSnapshot),
		Dropped:       make(map[string]DropReason),
		Cancelled:     make(map[string]int),
		AlreadyFilled: make(map[string]map[models.Side]int),
	}
}

// Failures собирает ошибки всех задач в одну.
func (r *CycleReport) Failures() error {
	var errs error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s %s rung=%d: %w",
				res.Kind, res.Symbol, res.Intent.Side, res.Intent.Rung, res.Err))
		}
	}
	return errs
}

func (r *CycleReport) Placed() (ok, failed int) {
	for _, res := range r.Results {
		if res.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

func (r *CycleReport) drop(symbol string, reason DropReason) {
	if _, seen := r.Dropped[symbol]; !seen {
		r.Dropped[symbol] = reason
	}
}
