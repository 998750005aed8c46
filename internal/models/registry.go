package models

import "fmt"

// Registry - неизменяемый упорядоченный набор определений метрик.
// Порядок реестра совпадает с порядком позиций в маске METRIC_STATE.
type Registry struct {
	defs   []MetricDefinition
	byName map[string]int
	byID   map[string]int
}

// NewRegistry создает реестр, имена и идентификаторы должны быть уникальны
func NewRegistry(defs ...MetricDefinition) (*Registry, error) {
	r := &Registry{
		defs:   make([]MetricDefinition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
		byID:   make(map[string]int, len(defs)),
	}

	for _, d := range defs {
		if d.Name == "" || d.ID == "" {
			return nil, fmt.Errorf("metric definition requires name and id: %+v", d)
		}
		if d.Kind != Gauge && d.Kind != Counter {
			return nil, fmt.Errorf("metric %q: unsupported kind %d", d.Name, d.Kind)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate metric name %q", d.Name)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate metric id %q", d.ID)
		}
		r.byName[d.Name] = len(r.defs)
		r.byID[d.ID] = len(r.defs)
		r.defs = append(r.defs, d)
	}

	return r, nil
}

// MustNewRegistry как NewRegistry, но паникует при ошибке
func MustNewRegistry(defs ...MetricDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Definitions возвращает копию определений в порядке реестра
func (r *Registry) Definitions() []MetricDefinition {
	out := make([]MetricDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r *Registry) Len() int {
	return len(r.defs)
}

// ByName ищет определение по имени поля stub_status
func (r *Registry) ByName(name string) (MetricDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return MetricDefinition{}, false
	}
	return r.defs[i], true
}

// ByID ищет определение по идентификатору коллектора
func (r *Registry) ByID(id string) (MetricDefinition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return MetricDefinition{}, false
	}
	return r.defs[i], true
}

// Имена полей ответа stub_status
const (
	FieldActive   = "active"
	FieldAccepts  = "accepts"
	FieldHandled  = "handled"
	FieldRequests = "requests"
	FieldReading  = "reading"
	FieldWriting  = "writing"
	FieldWaiting  = "waiting"
)

// NginxRegistry возвращает реестр метрик nginx stub_status
func NginxRegistry() *Registry {
	return MustNewRegistry(
		MetricDefinition{Name: FieldActive, ID: "27:Active Connections:4", Label: "Active Connections", Kind: Gauge},
		MetricDefinition{Name: FieldAccepts, ID: "110:Accepted Connections/Sec:4", Label: "Accepted Connections/Sec", Kind: Counter},
		MetricDefinition{Name: FieldHandled, ID: "63:Handled Connections/Sec:4", Label: "Handled Connections/Sec", Kind: Counter},
		MetricDefinition{Name: FieldRequests, ID: "172:Requests/Sec:4", Label: "Requests/Sec", Kind: Counter},
		MetricDefinition{Name: FieldReading, ID: "151:Reading:4", Label: "Reading", Kind: Gauge},
		MetricDefinition{Name: FieldWriting, ID: "81:Writing:4", Label: "Writing", Kind: Gauge},
		MetricDefinition{Name: FieldWaiting, ID: "58:Waiting:4", Label: "Waiting", Kind: Gauge},
	)
}

// Mask - маска METRIC_STATE: включена ли метрика на позиции реестра
type Mask []bool

// Enabled сообщает, включена ли позиция; позиции за концом маски выключены
func (m Mask) Enabled(i int) bool {
	return i >= 0 && i < len(m) && m[i]
}

// AllEnabled возвращает маску, включающую все метрики реестра
func AllEnabled(r *Registry) Mask {
	m := make(Mask, r.Len())
	for i := range m {
		m[i] = true
	}
	return m
}
