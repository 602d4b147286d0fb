package runner

import (
	okx "envelope_bot/internal/modules/okx_client/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *okx.Client) Gateway { return c },
			NewEngine, // *Engine
			NewCycle,  // *Cycle
		),
	)
}
