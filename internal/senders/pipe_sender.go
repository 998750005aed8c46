package senders

import (
	"bufio"
	"fmt"
	"io"

	"github.com/25x8/nginx-probe/internal/models"
)

// PipeSender пишет записи строками вида "id|value|"
type PipeSender struct {
	w io.Writer
}

// NewPipeSender - конструктор для PipeSender
func NewPipeSender(w io.Writer) *PipeSender {
	return &PipeSender{w: w}
}

func (s *PipeSender) Send(records []models.OutputRecord) error {
	if len(records) == 0 {
		return nil
	}

	bw := bufio.NewWriter(s.w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s|%s|\n", r.ID, r.Value); err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}
