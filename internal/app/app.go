package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/25x8/nginx-probe/internal/collectors"
	"github.com/25x8/nginx-probe/internal/config"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/models"
	"github.com/25x8/nginx-probe/internal/pipeline"
	"github.com/25x8/nginx-probe/internal/senders"
	"github.com/25x8/nginx-probe/internal/storage"
	"go.uber.org/zap"
)

// Options - зависимости запуска, подменяемые в тестах
type Options struct {
	Stdout    io.Writer
	Transport http.RoundTripper
	Now       func() time.Time
	Registry  *models.Registry
}

// App - один запуск пробы
type App struct {
	cfg       *config.ProbeConfig
	registry  *models.Registry
	store     storage.Store
	closeFn   func() error
	collector *collectors.StubStatusCollector
	pipeline  *pipeline.Pipeline
}

// New собирает пробу: хранилище, вывод, коллектор и конвейер
func New(ctx context.Context, cfg *config.ProbeConfig, opts Options) (*App, error) {
	registry := opts.Registry
	if registry == nil {
		registry = models.NginxRegistry()
	}

	sender, err := senders.New(cfg.OutputMode, opts.Stdout)
	if err != nil {
		return nil, err
	}

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	collector := collectors.NewStubStatusCollector(collectors.Options{
		Scheme:    cfg.Scheme,
		Host:      cfg.Host,
		Port:      cfg.Port,
		Path:      cfg.Path,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout,
		Transport: opts.Transport,
		Now:       opts.Now,
	})

	return &App{
		cfg:       cfg,
		registry:  registry,
		store:     store,
		closeFn:   closeFn,
		collector: collector,
		pipeline:  pipeline.New(registry, store, sender),
	}, nil
}

// openStore выбирает хранилище: PostgreSQL, если задан DSN, иначе файлы
func openStore(ctx context.Context, cfg *config.ProbeConfig) (storage.Store, func() error, error) {
	if cfg.DatabaseDSN != "" {
		db, err := storage.OpenDBStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Log.Debug("using PostgreSQL snapshot storage")
		return db, db.Close, nil
	}

	logger.Log.Debug("using file snapshot storage", zap.String("dir", cfg.StateDir))
	return storage.NewFileStore(cfg.StateDir), func() error { return nil }, nil
}

// Run выполняет проход. После первого запуска для цели проход
// повторяется один раз через RetryDelay, чтобы сразу получить вывод.
func (a *App) Run(ctx context.Context) error {
	result, err := a.Once(ctx)
	if err != nil {
		return err
	}
	if result.Outcome != pipeline.Bootstrapped || a.cfg.RetryDelay <= 0 {
		return nil
	}

	logger.Log.Info("rerunning after bootstrap", zap.Duration("delay", a.cfg.RetryDelay))

	timer := time.NewTimer(a.cfg.RetryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		// Bootstrapped - допустимый итог запуска
		return nil
	case <-timer.C:
	}

	_, err = a.Once(ctx)
	return err
}

// Once опрашивает сервер и передает снимок конвейеру
func (a *App) Once(ctx context.Context) (pipeline.Result, error) {
	current, err := a.collector.Collect(ctx, a.registry, a.cfg.Mask)
	if err != nil {
		return pipeline.Result{}, err
	}
	return a.pipeline.Observe(ctx, a.collector.Target(), current)
}

// Close освобождает хранилище
func (a *App) Close() error {
	return a.closeFn()
}
