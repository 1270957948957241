// Package adviser provides the one-shot analysis features that ride next
// to the voice session: the monthly coaching report, free-form questions
// over the user's data, and receipt extraction from photos.
package adviser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/finanvoice/voz/pkg/core"
	"github.com/finanvoice/voz/pkg/core/finance"
)

const (
	adviceModel  = "gemini-3-pro-preview"
	receiptModel = "gemini-3-flash-preview"
)

// Adviser runs one-shot generations against the Gemini API.
type Adviser struct {
	client *genai.Client
	now    func() time.Time
}

// New creates an adviser. The key is validated here so callers fail before
// any prompt is built.
func New(ctx context.Context, apiKey string) (*Adviser, error) {
	if apiKey == "" {
		return nil, core.NewConfigurationError(core.MsgMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewAPIError(fmt.Sprintf("adviser client init failed: %v", err))
	}
	return &Adviser{client: client, now: time.Now}, nil
}

// Advice generates the monthly coaching report over the user's data.
func (a *Adviser) Advice(ctx context.Context, transactions []finance.Transaction) (string, error) {
	now := a.now()
	prompt := advicePrompt(finance.BuildHealthReport(transactions, now), now)
	resp, err := a.client.Models.GenerateContent(ctx, adviceModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:    genai.Ptr[float32](0.7),
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](2048)},
	})
	if err != nil {
		return "", core.ClassifyRemote(err)
	}
	text := resp.Text()
	if text == "" {
		return "Não foi possível gerar o plano de ação no momento.", nil
	}
	return text, nil
}

// Ask answers a free-form question grounded on the user's data.
func (a *Adviser) Ask(ctx context.Context, transactions []finance.Transaction, question string) (string, error) {
	if len(transactions) > 100 {
		transactions = transactions[:100]
	}
	prompt := askPrompt(finance.BuildHealthReport(transactions, a.now()), question)
	resp, err := a.client.Models.GenerateContent(ctx, adviceModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](2048)},
	})
	if err != nil {
		return "", core.ClassifyRemote(err)
	}
	text := resp.Text()
	if text == "" {
		return "Desculpe, não consegui analisar isso agora.", nil
	}
	return text, nil
}

// ReceiptData is what AnalyzeReceipt extracts from a receipt photo.
type ReceiptData struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
}

// AnalyzeReceipt extracts a transaction from a JPEG receipt image.
func (a *Adviser) AnalyzeReceipt(ctx context.Context, imageJPEG []byte) (ReceiptData, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: imageJPEG}},
		{Text: "Analise este recibo/comprovante. Extraia o valor total, a data (formato YYYY-MM-DD), o nome do estabelecimento (para descrição) e categorize (Alimentação, Transporte, Saúde, etc). Se for indefinido, use a data de hoje."},
	}}}
	resp, err := a.client.Models.GenerateContent(ctx, receiptModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"amount":      {Type: genai.TypeNumber},
				"date":        {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"type":        {Type: genai.TypeString, Enum: []string{"DESPESA", "RECEITA"}},
				"category":    {Type: genai.TypeString},
			},
			Required: []string{"amount", "date", "description", "type", "category"},
		},
	})
	if err != nil {
		return ReceiptData{}, core.ClassifyRemote(err)
	}
	return parseReceiptJSON(resp.Text())
}

// parseReceiptJSON extracts the JSON object from the model's text. Even
// with a JSON response type, models sometimes wrap the object in prose, so
// only the outermost brace span is parsed.
func parseReceiptJSON(text string) (ReceiptData, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return ReceiptData{}, core.NewAPIError("receipt analysis returned no JSON object")
	}
	var data ReceiptData
	if err := json.Unmarshal([]byte(text[first:last+1]), &data); err != nil {
		return ReceiptData{}, core.NewAPIError(fmt.Sprintf("receipt analysis returned invalid JSON: %v", err))
	}
	return data, nil
}

func advicePrompt(report finance.HealthReport, now time.Time) string {
	return fmt.Sprintf(`Você é um Estrategista Financeiro de Elite e Coach de Riqueza.
Hoje é: %s.

DADOS DO USUÁRIO:
%s

SUA MISSÃO (Gere um relatório MarkDown estritamente com estas 3 seções):

### 1. 🔮 Visão de Raio-X (Real vs. Previsão)
- Comente explicitamente sobre o "VEREDITO MATEMÁTICO" acima.
- Se estiver sobrando, parabenize. Se estiver faltando, dê o alerta.

### 2. 🛡️ Plano de Reserva de Guerra (Prioridade Máxima)
- O usuário PRECISA poupar.
- Sugira um valor de "Micro-Reserva" para guardar HOJE.

### 3. 🚀 Plano de Ataque
- Dê 2 dicas ultra-práticas baseadas no padrão de gastos.
- Frase motivacional curta.`,
		now.Format("02/01/2006"), report.Format())
}

func askPrompt(report finance.HealthReport, question string) string {
	return fmt.Sprintf(`Você é um Consultor Financeiro Pessoal Sábio e AMIGO.

DADOS FINANCEIROS REAIS:
%s

PERGUNTA DO USUÁRIO:
%q

DIRETRIZES:
1. Se perguntarem "como estamos", "o que falta pagar" ou "vai dar para pagar?", OLHE O "VEREDITO MATEMÁTICO".
2. Seja honesto: Se o saldo atual for menor que o total pendente, avise.
3. Liste as contas futuras se solicitado.
4. Use tom coloquial e parceiro.`,
		report.Format(), question)
}
