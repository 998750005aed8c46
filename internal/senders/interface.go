package senders

import (
	"fmt"
	"io"

	"github.com/25x8/nginx-probe/internal/models"
)

// Режимы вывода для коллектора
const (
	ModePipe   = "pipe"
	ModeLegacy = "legacy"
)

// Sender общий интерфейс для передачи итоговых записей коллектору
type Sender interface {
	Send(records []models.OutputRecord) error
}

// New создает отправитель для режима вывода
func New(mode string, w io.Writer) (Sender, error) {
	switch mode {
	case "", ModePipe:
		return NewPipeSender(w), nil
	case ModeLegacy:
		return NewJSONSender(w), nil
	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}
}
