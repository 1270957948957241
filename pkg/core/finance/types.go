// Package finance models transactions, goals, and the derived summaries the
// voice assistant and adviser feed into their prompts.
package finance

import "time"

// TransactionType distinguishes the four movement kinds the assistant
// records. Values are the canonical pt-BR labels used on the wire and in
// exports.
type TransactionType string

const (
	Income     TransactionType = "RECEITA"
	Expense    TransactionType = "DESPESA"
	Reserve    TransactionType = "RESERVA"
	Investment TransactionType = "INVESTIMENTO"
)

// ValidTransactionType reports whether t is one of the four known kinds.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case Income, Expense, Reserve, Investment:
		return true
	}
	return false
}

// DefaultCategory is applied when a recorded transaction omits a category.
const DefaultCategory = "General"

// Transaction is a single recorded movement.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      float64         `json:"amount"`
	Date        string          `json:"date"` // ISO YYYY-MM-DD
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
}

// ParseDate parses the transaction's ISO date.
func (t Transaction) ParseDate() (time.Time, error) {
	return time.Parse("2006-01-02", t.Date)
}

// Goal is a savings target the user is working toward.
type Goal struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
}

// Snapshot is the read-only view of the user's finances a session is
// primed with at connect time. It is captured once; mid-session writes do
// not refresh it.
type Snapshot struct {
	UserName     string
	Transactions []Transaction
	Goal         *Goal
}
