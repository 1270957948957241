// Package store persists transactions and the savings goal. Two
// implementations exist: an in-memory store for tests and offline use, and
// a PostgreSQL store for real deployments.
package store

import (
	"context"
	"errors"

	"github.com/finanvoice/voz/pkg/core/finance"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store persists the finance model. Implementations are safe for
// concurrent use.
type Store interface {
	// SaveTransaction inserts the transaction, assigning an ID when the
	// transaction has none.
	SaveTransaction(ctx context.Context, t finance.Transaction) (finance.Transaction, error)
	// ListTransactions returns all transactions, newest date first.
	ListTransactions(ctx context.Context) ([]finance.Transaction, error)
	// DeleteTransaction removes a transaction by ID.
	DeleteTransaction(ctx context.Context, id string) error
	// SaveGoal upserts the savings goal.
	SaveGoal(ctx context.Context, g finance.Goal) (finance.Goal, error)
	// Goal returns the savings goal, or ErrNotFound when unset.
	Goal(ctx context.Context) (finance.Goal, error)
}
