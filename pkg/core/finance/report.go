package finance

import (
	"fmt"
	"strings"
	"time"
)

// MonthlyBalance returns the available balance for the month containing
// now: income minus expenses, reserves, and investments dated in that
// month. Transactions with unparseable dates are skipped.
func MonthlyBalance(transactions []Transaction, now time.Time) float64 {
	var balance float64
	for _, t := range transactions {
		d, err := t.ParseDate()
		if err != nil {
			continue
		}
		if d.Month() != now.Month() || d.Year() != now.Year() {
			continue
		}
		switch t.Type {
		case Income:
			balance += t.Amount
		case Expense, Reserve, Investment:
			balance -= t.Amount
		}
	}
	return balance
}

// BalanceSummary renders the one-line financial context the live session
// is primed with.
func BalanceSummary(transactions []Transaction, now time.Time) string {
	return fmt.Sprintf("Saldo atual disponível (descontando reservas e investimentos): R$ %.2f.",
		MonthlyBalance(transactions, now))
}

// HealthReport is the month-level view the adviser prompts are built on.
type HealthReport struct {
	// Balance is income minus realized expenses and reserves this month.
	Balance float64
	// Pending totals this month's expenses dated after now.
	Pending float64
	// Runway is Balance minus Pending; negative means the month does not
	// close.
	Runway float64
	Past   []Transaction
	Future []Transaction
}

// BuildHealthReport computes the month's health relative to now.
func BuildHealthReport(transactions []Transaction, now time.Time) HealthReport {
	var r HealthReport
	for _, t := range transactions {
		d, err := t.ParseDate()
		if err != nil {
			continue
		}
		if d.After(now) {
			r.Future = append(r.Future, t)
		} else {
			r.Past = append(r.Past, t)
		}

		if d.Month() != now.Month() || d.Year() != now.Year() {
			continue
		}
		switch t.Type {
		case Income:
			r.Balance += t.Amount
		case Expense:
			if d.After(now) {
				r.Pending += t.Amount
			} else {
				r.Balance -= t.Amount
			}
		case Reserve:
			if !d.After(now) {
				r.Balance -= t.Amount
			}
		}
	}
	r.Runway = r.Balance - r.Pending
	return r
}

// Format renders the report as the prompt block the adviser feeds the
// model. Only the first 20 past transactions are listed; future ones are
// listed in full so pending bills are never truncated away.
func (r HealthReport) Format() string {
	var b strings.Builder
	b.WriteString("--- ANÁLISE DE SAÚDE DO MÊS ---\n")
	fmt.Fprintf(&b, "Saldo Disponível AGORA: R$ %.2f\n", r.Balance)
	fmt.Fprintf(&b, "Total de Contas que AINDA VÃO VENCER este mês: R$ %.2f\n\n", r.Pending)

	b.WriteString("VEREDITO MATEMÁTICO:\n")
	if r.Runway >= 0 {
		fmt.Fprintf(&b, "✅ SOBRA PREVISTA: R$ %.2f\n", r.Runway)
	} else {
		fmt.Fprintf(&b, "❌ FALTA PREVISTA: R$ %.2f\n", -r.Runway)
	}

	b.WriteString("\n--- TRANSAÇÕES JÁ REALIZADAS ---\n")
	past := r.Past
	if len(past) > 20 {
		past = past[:20]
	}
	writeTransactionList(&b, past)

	b.WriteString("\n--- PRÓXIMAS CONTAS (A VENCER) ---\n")
	writeTransactionList(&b, r.Future)
	return b.String()
}

func writeTransactionList(b *strings.Builder, list []Transaction) {
	for _, t := range list {
		fmt.Fprintf(b, "- [%s] %s (%s): R$ %.2f - %s\n", t.Date, t.Type, t.Category, t.Amount, t.Description)
	}
}
