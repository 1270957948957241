package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/finanvoice/voz/pkg/core/finance"
)

// Memory is an in-process Store.
type Memory struct {
	mu           sync.RWMutex
	transactions map[string]finance.Transaction
	goal         *finance.Goal
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{transactions: make(map[string]finance.Transaction)}
}

func (m *Memory) SaveTransaction(_ context.Context, t finance.Transaction) (finance.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.transactions[t.ID] = t
	return t, nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]finance.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]finance.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) SaveGoal(_ context.Context, g finance.Goal) (finance.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	m.goal = &g
	return g, nil
}

func (m *Memory) Goal(_ context.Context) (finance.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.goal == nil {
		return finance.Goal{}, ErrNotFound
	}
	return *m.goal, nil
}
