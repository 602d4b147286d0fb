package main

import (
	"context"
	"log"
	"os"
	"time"

	"envelope_bot/internal/modules/config"
	okx "envelope_bot/internal/modules/okx_client"
	"envelope_bot/internal/modules/postgres"
	"envelope_bot/internal/modules/strategy"
	"envelope_bot/internal/modules/tracker"
	"envelope_bot/internal/notify"
	"envelope_bot/internal/runner"
	"envelope_bot/pkg/logger"
	"envelope_bot/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const serviceName = "envelope_bot"

// Один запуск = один цикл; расписание снаружи (cron).
func main() {
	os.Exit(start())
}

func start() int {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Print(err)
		return 1
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Print(err)
		return 1
	}
	defer logger.Sync()
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	_, closeTracer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Warn("[MAIN] tracer disabled: %v", err)
		closeTracer = func() {}
	}
	defer closeTracer()

	return run(cfg)
}

func run(cfg *config.Config) int {
	opts := []fx.Option{
		config.Module(cfg),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.InfoLogger}
		}),
		okx.Module(),
		strategy.Module(),
		tracker.Module(),
		notify.Module(),
		runner.Module(),
	}
	if cfg.Tracking.Backend == "postgres" {
		opts = append(opts, postgres.Module())
	}

	var cycle *runner.Cycle
	app := fx.New(append(opts, fx.Populate(&cycle))...)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.Error("[MAIN] start: %v", err)
		return 1
	}

	code := 0
	if err := cycle.Run(context.Background()); err != nil {
		logger.Error("[MAIN] cycle failed: %v", err)
		code = 1
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Warn("[MAIN] stop: %v", err)
	}
	return code
}
