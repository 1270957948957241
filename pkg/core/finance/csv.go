package finance

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader matches the spreadsheet import format users already rely on.
var csvHeader = []string{"Data", "Tipo", "Categoria", "Descrição", "Valor"}

// ExportCSV writes transactions as CSV with the canonical pt-BR header.
// Amounts are rendered with two decimal places.
func ExportCSV(w io.Writer, transactions []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("finance: write csv header: %w", err)
	}
	for _, t := range transactions {
		record := []string{
			t.Date,
			string(t.Type),
			t.Category,
			t.Description,
			fmt.Sprintf("%.2f", t.Amount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("finance: write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
