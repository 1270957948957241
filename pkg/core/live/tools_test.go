package live

import (
	"testing"

	"github.com/finanvoice/voz/pkg/core/finance"
)

func validTransactionArgs() map[string]any {
	return map[string]any{
		"type":        "DESPESA",
		"amount":      42.5,
		"date":        "2026-03-15",
		"description": "almoço",
		"category":    "Alimentação",
	}
}

func TestParseTransactionArgs(t *testing.T) {
	tx, err := parseTransactionArgs(validTransactionArgs())
	if err != nil {
		t.Fatalf("parseTransactionArgs: %v", err)
	}
	if tx.Type != finance.Expense || tx.Amount != 42.5 || tx.Category != "Alimentação" {
		t.Errorf("parsed = %+v", tx)
	}
}

func TestParseTransactionArgsDefaultCategory(t *testing.T) {
	args := validTransactionArgs()
	delete(args, "category")
	tx, err := parseTransactionArgs(args)
	if err != nil {
		t.Fatalf("parseTransactionArgs: %v", err)
	}
	if tx.Category != finance.DefaultCategory {
		t.Errorf("category = %q, want %q", tx.Category, finance.DefaultCategory)
	}
}

func TestParseTransactionArgsRejections(t *testing.T) {
	mutations := map[string]func(map[string]any){
		"unknown type":        func(a map[string]any) { a["type"] = "GASTO" },
		"missing amount":      func(a map[string]any) { delete(a, "amount") },
		"string amount":       func(a map[string]any) { a["amount"] = "42" },
		"missing date":        func(a map[string]any) { delete(a, "date") },
		"bad date":            func(a map[string]any) { a["date"] = "15/03/2026" },
		"missing description": func(a map[string]any) { delete(a, "description") },
	}
	for name, mutate := range mutations {
		args := validTransactionArgs()
		mutate(args)
		if _, err := parseTransactionArgs(args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseNavigateArgs(t *testing.T) {
	for _, view := range []string{"HOME", "EXTRACT", "CALENDAR", "CHARTS"} {
		got, err := parseNavigateArgs(map[string]any{"view": view})
		if err != nil {
			t.Errorf("view %s: %v", view, err)
		}
		if got != View(view) {
			t.Errorf("view = %s, want %s", got, view)
		}
	}
	if _, err := parseNavigateArgs(map[string]any{"view": "SETTINGS"}); err == nil {
		t.Error("expected error for unknown view")
	}
	if _, err := parseNavigateArgs(map[string]any{}); err == nil {
		t.Error("expected error for missing view")
	}
}

func TestToolDeclarationsCoverContract(t *testing.T) {
	tools := ToolDeclarations()
	if len(tools) != 1 {
		t.Fatalf("got %d tool groups, want 1", len(tools))
	}
	names := map[string]bool{}
	for _, fd := range tools[0].FunctionDeclarations {
		names[fd.Name] = true
	}
	for _, want := range []string{toolAddTransaction, toolNavigate, toolCloseSession} {
		if !names[want] {
			t.Errorf("declaration %s missing", want)
		}
	}
}
