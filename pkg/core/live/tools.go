package live

import (
	"fmt"

	"github.com/finanvoice/voz/pkg/core/finance"
	"github.com/finanvoice/voz/pkg/gemini"
)

// Tool names the assistant can call.
const (
	toolAddTransaction = "addTransaction"
	toolNavigate       = "navigate"
	toolCloseSession   = "closeSession"
)

// ToolDeclarations returns the function set declared at session setup.
func ToolDeclarations() []gemini.Tool {
	return []gemini.Tool{{FunctionDeclarations: []gemini.FunctionDeclaration{
		{
			Name:        toolAddTransaction,
			Description: "Registra uma transação financeira. Identifique se é RECEITA, DESPESA, RESERVA (poupança/emergência) ou INVESTIMENTO (ações/cripto/renda variável).",
			Parameters: &gemini.Schema{
				Type: "OBJECT",
				Properties: map[string]*gemini.Schema{
					"type":        {Type: "STRING", Enum: []string{"RECEITA", "DESPESA", "RESERVA", "INVESTIMENTO"}},
					"amount":      {Type: "NUMBER"},
					"date":        {Type: "STRING", Description: "ISO YYYY-MM-DD. Hoje se não especificado."},
					"description": {Type: "STRING"},
					"category":    {Type: "STRING"},
				},
				Required: []string{"type", "amount", "date", "description", "category"},
			},
		},
		{
			Name:        toolNavigate,
			Description: "Muda a tela do app.",
			Parameters: &gemini.Schema{
				Type: "OBJECT",
				Properties: map[string]*gemini.Schema{
					"view": {Type: "STRING", Enum: []string{"HOME", "EXTRACT", "CALENDAR", "CHARTS"}},
				},
				Required: []string{"view"},
			},
		},
		{
			Name:        toolCloseSession,
			Description: "Encerrar sessão.",
			Parameters:  &gemini.Schema{Type: "OBJECT"},
		},
	}}}
}

// parseTransactionArgs validates an addTransaction call's arguments. A
// missing category falls back to the default; everything else is required.
func parseTransactionArgs(args map[string]any) (finance.Transaction, error) {
	typ, _ := args["type"].(string)
	if !finance.ValidTransactionType(finance.TransactionType(typ)) {
		return finance.Transaction{}, fmt.Errorf("invalid transaction type %q", typ)
	}
	amount, ok := args["amount"].(float64)
	if !ok {
		return finance.Transaction{}, fmt.Errorf("missing or non-numeric amount")
	}
	date, _ := args["date"].(string)
	if date == "" {
		return finance.Transaction{}, fmt.Errorf("missing date")
	}
	description, _ := args["description"].(string)
	if description == "" {
		return finance.Transaction{}, fmt.Errorf("missing description")
	}
	category, _ := args["category"].(string)
	if category == "" {
		category = finance.DefaultCategory
	}
	t := finance.Transaction{
		Type:        finance.TransactionType(typ),
		Amount:      amount,
		Date:        date,
		Description: description,
		Category:    category,
	}
	if _, err := t.ParseDate(); err != nil {
		return finance.Transaction{}, fmt.Errorf("invalid date %q", date)
	}
	return t, nil
}

// parseNavigateArgs validates a navigate call's view argument.
func parseNavigateArgs(args map[string]any) (View, error) {
	view, _ := args["view"].(string)
	v := View(view)
	if !ValidView(v) {
		return "", fmt.Errorf("invalid view %q", view)
	}
	return v, nil
}
