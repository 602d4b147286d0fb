package config

import "go.uber.org/fx"

// Module отдаёт в граф уже прочитанный конфиг: от него зависит набор модулей.
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
	)
}
