// Команда stubstatus - эмулятор nginx stub_status для локальной проверки пробы.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/25x8/nginx-probe/internal/buildinfo"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/stubstatus"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type serverConfig struct {
	addr    string
	opts    stubstatus.Options
	level   string
	version bool
}

func main() {
	exit(run(os.Args[1:], os.Getenv, os.Stderr))
}

func parseFlags(args []string, getenv func(string) string, output io.Writer) (*serverConfig, error) {
	fs := flag.NewFlagSet("stubstatus", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := &serverConfig{}
	var allow string

	// Определение флагов
	fs.StringVar(&cfg.addr, "a", "localhost:8080", "HTTP server address")
	fs.StringVar(&cfg.opts.Path, "path", stubstatus.DefaultPath, "stub_status location")
	fs.StringVar(&cfg.opts.Username, "u", "", "Basic auth user name, empty disables auth")
	fs.StringVar(&cfg.opts.Password, "p", "", "Basic auth password")
	fs.StringVar(&allow, "allow", "", "Comma-separated list of allowed subnets")
	fs.BoolVar(&cfg.opts.AutoIncrement, "auto", true, "Count every request in accepts, handled and requests")
	fs.Int64Var(&cfg.opts.Initial.Active, "active", 1, "Active connections")
	fs.StringVar(&cfg.level, "l", "info", "Log level")
	fs.BoolVar(&cfg.version, "v", false, "Print build info and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Чтение переменных окружения с приоритетом
	if env := getenv("ADDRESS"); env != "" {
		cfg.addr = env
	}
	if env := getenv("STUB_STATUS_USER"); env != "" {
		cfg.opts.Username = env
	}
	if env := getenv("STUB_STATUS_PASSWORD"); env != "" {
		cfg.opts.Password = env
	}
	if env := getenv("ALLOW_SUBNETS"); env != "" {
		allow = env
	}

	if allow != "" {
		cfg.opts.AllowSubnets = strings.Split(allow, ",")
	}
	return cfg, nil
}

func run(args []string, getenv func(string) string, stderr io.Writer) int {
	cfg, err := parseFlags(args, getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if cfg.version {
		buildinfo.PrintBuildInfo(os.Stdout)
		return 0
	}

	if err := logger.Initialize(cfg.level); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Sync()

	router, err := stubstatus.NewServer(cfg.opts).Router()
	if err != nil {
		logger.Log.Error("invalid configuration", zap.Error(err))
		return 1
	}

	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("stub_status emulator started",
			zap.String("address", cfg.addr),
			zap.String("path", cfg.opts.Path),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
		logger.Log.Info("stub_status emulator stopped")
	}
	return 0
}

// exit - единственное место завершения процесса
func exit(code int) {
	os.Exit(code)
}
