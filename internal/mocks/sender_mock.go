package mocks

import (
	"sync"

	"github.com/25x8/nginx-probe/internal/models"
)

// MockSender запоминает отправленные записи
type MockSender struct {
	mu      sync.Mutex
	Batches [][]models.OutputRecord
	Err     error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(records []models.OutputRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, records)
	return m.Err
}

// Calls возвращает число вызовов Send
func (m *MockSender) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Batches)
}
