package finance

import "strings"

type categoryRule struct {
	icon     string
	keywords []string
}

// Ordered so more specific spending categories win over the fallback.
var categoryRules = []categoryRule{
	{"🍔", []string{"comida", "alimentação", "restaurante", "ifood", "mercado"}},
	{"🚗", []string{"transporte", "uber", "gasolina", "carro"}},
	{"🏠", []string{"casa", "aluguel", "luz", "água", "internet"}},
	{"💊", []string{"saúde", "farmácia", "médico"}},
	{"🍿", []string{"lazer", "cinema", "viagem"}},
	{"💰", []string{"salário", "pagamento", "venda"}},
	{"📚", []string{"educação", "curso", "faculdade"}},
	{"🛍️", []string{"roupa", "loja", "shopping"}},
	{"🛡️", []string{"reserva", "poupança"}},
	{"📈", []string{"investimento", "ação", "bitcoin", "cdb"}},
	{"💪", []string{"academia", "esporte"}},
	{"🐾", []string{"pet", "cachorro", "gato"}},
}

// CategoryIcon maps a free-form category to its display icon by keyword
// match. Unknown categories get the generic tag.
func CategoryIcon(category string) string {
	normalized := strings.ToLower(strings.TrimSpace(category))
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.icon
			}
		}
	}
	return "🏷️"
}
