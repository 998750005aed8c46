// Package pipeline связывает хранилище снимков, вычисление скоростей и вывод коллектору.
//
// Первый запуск для цели только сохраняет снимок (Bootstrapped). Последующие
// вычисляют записи, сохраняют текущий снимок и затем отправляют записи (Emitted).
package pipeline

import (
	"context"
	"fmt"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/models"
	"github.com/25x8/nginx-probe/internal/rate"
	"github.com/25x8/nginx-probe/internal/senders"
	"github.com/25x8/nginx-probe/internal/storage"
	"go.uber.org/zap"
)

// Outcome - результат одного прохода
type Outcome int

const (
	// Bootstrapped - прошлого снимка не было, текущий сохранен, вывода нет
	Bootstrapped Outcome = iota + 1
	// Emitted - записи вычислены и отправлены
	Emitted
)

func (o Outcome) String() string {
	switch o {
	case Bootstrapped:
		return "bootstrapped"
	case Emitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// Result - итог Observe
type Result struct {
	Outcome Outcome
	Records []models.OutputRecord
}

// Pipeline - структура прохода наблюдения
type Pipeline struct {
	registry *models.Registry
	store    storage.Store
	sender   senders.Sender
}

// New - конструктор для Pipeline
func New(registry *models.Registry, store storage.Store, sender senders.Sender) *Pipeline {
	return &Pipeline{
		registry: registry,
		store:    store,
		sender:   sender,
	}
}

// Observe обрабатывает текущий снимок цели.
// Ошибка отправки возвращается уже после сохранения снимка.
func (p *Pipeline) Observe(ctx context.Context, key models.TargetKey, current models.Snapshot) (Result, error) {
	for _, obs := range current {
		if _, ok := p.registry.ByID(obs.ID); !ok {
			return Result{}, errs.MetricNotFound(obs.ID)
		}
	}

	previous, found, err := p.store.Load(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if !found {
		if err := p.store.Save(ctx, key, current); err != nil {
			return Result{}, err
		}
		logger.Log.Info("no previous snapshot, bootstrapped",
			zap.String("target", key.String()),
			zap.Int("observations", len(current)),
		)
		return Result{Outcome: Bootstrapped}, nil
	}

	records, err := p.Records(previous, current)
	if err != nil {
		return Result{}, err
	}

	if err := p.store.Save(ctx, key, current); err != nil {
		return Result{}, err
	}

	result := Result{Outcome: Emitted, Records: records}
	if err := p.sender.Send(records); err != nil {
		return result, fmt.Errorf("send records for %s: %w", key, err)
	}

	logger.Log.Debug("records emitted",
		zap.String("target", key.String()),
		zap.Int("records", len(records)),
	)
	return result, nil
}

// Records вычисляет итоговые записи в порядке текущего снимка
func (p *Pipeline) Records(previous, current models.Snapshot) ([]models.OutputRecord, error) {
	records := make([]models.OutputRecord, 0, len(current))
	for _, obs := range current {
		def, ok := p.registry.ByID(obs.ID)
		if !ok {
			return nil, errs.MetricNotFound(obs.ID)
		}

		value, err := p.value(def, previous, obs)
		if err != nil {
			return nil, err
		}

		records = append(records, models.OutputRecord{
			ID:        obs.ID,
			Label:     def.Label,
			Timestamp: obs.Timestamp,
			Value:     value,
		})
	}
	return records, nil
}

func (p *Pipeline) value(def models.MetricDefinition, previous models.Snapshot, current models.Observation) (string, error) {
	if def.Kind == models.Gauge {
		return current.Value, nil
	}

	var prev *models.Observation
	if o, ok := previous.Find(current.ID); ok {
		prev = &o
	}
	return rate.Compute(prev, current)
}
