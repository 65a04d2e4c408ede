package messagestore

import (
	"context"
	"sync"
)

// Mock is an in-memory MessageStore. Setting Err makes every Put fail with
// it.
type Mock struct {
	mu    sync.Mutex
	value string
	puts  int
	Err   error
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Put(ctx context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.value = value
	m.puts++
	return nil
}

// Value returns the last value stored.
func (m *Mock) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Puts returns the number of successful Puts.
func (m *Mock) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *Mock) Close() error {
	return nil
}
