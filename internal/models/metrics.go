package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind определяет, как метрика выводится коллектору
type Kind int

const (
	// Gauge выводится как есть, мгновенное значение
	Gauge Kind = iota + 1
	// Counter выводится как скорость в секунду относительно прошлого снимка
	Counter
)

func (k Kind) String() string {
	switch k {
	case Gauge:
		return "gauge"
	case Counter:
		return "counter"
	default:
		return "unknown"
	}
}

// MetricDefinition описывает одну метрику stub_status
type MetricDefinition struct {
	Name  string // имя поля в ответе stub_status
	ID    string // идентификатор метрики для коллектора, "uuid:label:type"
	Label string // человекочитаемое название
	Kind  Kind
}

// UUID возвращает первую часть идентификатора (до двоеточия)
func (d MetricDefinition) UUID() string {
	return MetricUUID(d.ID)
}

// MetricUUID выделяет uuid из идентификатора вида "uuid:label:type"
func MetricUUID(id string) string {
	uuid, _, _ := strings.Cut(id, ":")
	return uuid
}

// Observation - одно значение метрики в момент времени.
// Value хранится текстом и разбирается в float64 при использовании.
type Observation struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Value     string    `json:"value"`
}

// NewObservation создает наблюдение с нормализованным временем
func NewObservation(id string, ts time.Time, value string) Observation {
	return Observation{
		ID:        id,
		Timestamp: NormalizeTime(ts),
		Value:     value,
	}
}

// NormalizeTime приводит время к UTC с точностью до миллисекунды,
// в таком виде оно без потерь проходит через JSON.
func NormalizeTime(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Millisecond)
}

// Float разбирает значение наблюдения
func (o Observation) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
}

// Snapshot - все наблюдения одного запуска в порядке сбора
type Snapshot []Observation

// Find ищет наблюдение по идентификатору метрики
func (s Snapshot) Find(id string) (Observation, bool) {
	for _, o := range s {
		if o.ID == id {
			return o, true
		}
	}
	return Observation{}, false
}

// Validate проверяет уникальность идентификаторов и корректность значений
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, o := range s {
		if o.ID == "" {
			return fmt.Errorf("observation %d: empty metric id", i)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("duplicate metric id %q", o.ID)
		}
		seen[o.ID] = struct{}{}
		if o.Timestamp.IsZero() {
			return fmt.Errorf("metric %q: missing timestamp", o.ID)
		}
		if _, err := o.Float(); err != nil {
			return fmt.Errorf("metric %q: invalid value %q", o.ID, o.Value)
		}
	}
	return nil
}

// OutputRecord - итоговая запись для коллектора
type OutputRecord struct {
	ID        string
	Label     string
	Timestamp time.Time
	Value     string
}

// TargetKey идентифицирует наблюдаемый сервер; у каждого ключа свой снимок
type TargetKey struct {
	Host string
	Port string
}

const snapshotFilePrefix = "nginx_"

// FileName возвращает имя файла снимка для цели
func (k TargetKey) FileName() string {
	return snapshotFilePrefix + k.Host + "_" + k.Port + ".dat"
}

func (k TargetKey) String() string {
	return k.Host + ":" + k.Port
}
