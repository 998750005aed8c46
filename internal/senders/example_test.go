package senders_test

import (
	"os"
	"time"

	"github.com/25x8/nginx-probe/internal/models"
	"github.com/25x8/nginx-probe/internal/senders"
)

// Example_outputModes демонстрирует оба формата вывода для коллектора.
func Example_outputModes() {
	records := []models.OutputRecord{{
		ID:        "172:Requests/Sec:4",
		Label:     "Requests/Sec",
		Timestamp: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		Value:     "1.00",
	}}

	for _, mode := range []string{senders.ModePipe, senders.ModeLegacy} {
		sender, err := senders.New(mode, os.Stdout)
		if err != nil {
			return
		}
		_ = sender.Send(records)
	}

	// Output:
	// 172:Requests/Sec:4|1.00|
	// {"variableName":"Requests/Sec","metricUUID":"172","timestamp":"2026-10-14T12:00:00.000Z","value":"1.00"}
}
