package tracker

import (
	"errors"

	"envelope_bot/internal/modules/config"
	"envelope_bot/internal/modules/tracker/service"
	"envelope_bot/pkg/db"

	"go.uber.org/fx"
)

type storeParams struct {
	fx.In

	Cfg *config.Config
	Tx  *db.PgTxManager `optional:"true"`
}

func newStore(p storeParams) (service.Store, error) {
	switch p.Cfg.Tracking.Backend {
	case "postgres":
		if p.Tx == nil {
			return nil, errors.New("tracking backend postgres: postgres module is not wired")
		}
		return service.NewPgStore(p.Tx, p.Cfg.Tracking.Name), nil
	default:
		return service.NewFileStore(p.Cfg.Tracking.Path), nil
	}
}

func newReport(cfg *config.Config) *service.Report {
	return service.NewReport(cfg.Report.CronlogPath)
}

func Module() fx.Option {
	return fx.Module("tracker",
		fx.Provide(
			newStore,
			newReport,
		),
	)
}
