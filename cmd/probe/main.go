// Команда nginx-probe опрашивает nginx stub_status и печатает метрики для агента сбора.
//
//	nginx-probe [flags] <METRIC_STATE> <HOST> <PORT> <PATH> <USER_NAME> <PASS_WORD>
//
// Код завершения и сообщение в stdout соответствуют виду отказа.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/25x8/nginx-probe/internal/app"
	"github.com/25x8/nginx-probe/internal/buildinfo"
	"github.com/25x8/nginx-probe/internal/config"
	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/logger"
	"go.uber.org/zap"
)

const name = "nginx-probe"

func main() {
	exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(name, args, getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stdout, errs.Message(err))
		return errs.ExitCode(err)
	}

	if cfg.ShowVersion {
		buildinfo.PrintBuildInfo(stdout)
		return 0
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Fprintln(stdout, err)
		return errs.ExitFailure
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probe, err := app.New(ctx, cfg, app.Options{Stdout: stdout})
	if err != nil {
		return fail(stdout, err)
	}
	defer func() {
		if err := probe.Close(); err != nil {
			logger.Log.Warn("failed to close snapshot storage", zap.Error(err))
		}
	}()

	if err := probe.Run(ctx); err != nil {
		return fail(stdout, err)
	}
	return 0
}

// fail печатает сообщение для агента и возвращает код завершения
func fail(stdout io.Writer, err error) int {
	logger.Log.Error("probe failed",
		zap.String("kind", errs.KindOf(err).String()),
		zap.Bool("storage", errs.IsStorage(err)),
		zap.Error(err),
	)
	fmt.Fprintln(stdout, errs.Message(err))
	return errs.ExitCode(err)
}

// exit - единственное место завершения процесса
func exit(code int) {
	os.Exit(code)
}
