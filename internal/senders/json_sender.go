package senders

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/25x8/nginx-probe/internal/models"
)

// TimestampLayout - формат времени записей в режиме legacy
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LegacyRecord - структура записи в режиме legacy
type LegacyRecord struct {
	VariableName string `json:"variableName"`
	MetricUUID   string `json:"metricUUID"`
	Timestamp    string `json:"timestamp"`
	Value        string `json:"value"`
}

// JSONSender пишет по одному JSON-объекту на строку
type JSONSender struct {
	w io.Writer
}

// NewJSONSender - конструктор для JSONSender
func NewJSONSender(w io.Writer) *JSONSender {
	return &JSONSender{w: w}
}

func (s *JSONSender) Send(records []models.OutputRecord) error {
	encoder := json.NewEncoder(s.w)
	for _, r := range records {
		if err := encoder.Encode(legacyRecord(r)); err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}
	return nil
}

func legacyRecord(r models.OutputRecord) LegacyRecord {
	return LegacyRecord{
		VariableName: r.Label,
		MetricUUID:   models.MetricUUID(r.ID),
		Timestamp:    r.Timestamp.UTC().Format(TimestampLayout),
		Value:        r.Value,
	}
}
