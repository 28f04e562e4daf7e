package insights

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

const (
	defaultReceiptNote     = "Receipt"
	defaultReceiptCurrency = "USD"
)

func FinancePrompt(data FinanceData, prompt string) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger data: %w", err)
	}
	return "You are a financial assistant. Analyze the user's financial data and provide concise,\n" +
		"friendly, actionable insights. Highlight categories over budget and suggest actions.\n\n" +
		"User data:\n" + string(raw) + "\n\n" +
		"User question/prompt: " + prompt + "\n\n" +
		"Return your answer in clear bullet points or numbered list.\n", nil
}

func GeneralPrompt(question string) string {
	return "Answer the following question clearly and concisely. Provide useful information in readable text.\n\n" +
		"Question: " + question + "\n"
}

const extractTextPrompt = "Transcribe all text printed on this receipt image exactly as it appears, " +
	"one line per printed line. Return plain text only."

func receiptPrompt() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "Analyze this receipt image and extract expense information.\n" +
		"Return a JSON object with the following structure:\n" +
		"{\n" +
		"    \"amount\": <numeric value>,\n" +
		"    \"category\": \"<" + strings.Join(names, "/") + ">\",\n" +
		"    \"note\": \"<description from receipt>\",\n" +
		"    \"date\": \"<YYYY-MM-DD format>\",\n" +
		"    \"currency\": \"<currency code like USD, INR, etc>\"\n" +
		"}\n\n" +
		"Rules:\n" +
		"- Use today's date (YYYY-MM-DD) if date not found on receipt\n" +
		"- Default currency to USD if not specified\n" +
		"- Match category to: " + strings.Join(names, ", ") + "\n" +
		"- Be precise with amount extraction\n" +
		"Return ONLY valid JSON, no additional text.\n"
}

type receiptJSON struct {
	Amount   *decimal.Decimal `json:"amount"`
	Category string           `json:"category"`
	Note     string           `json:"note"`
	Date     string           `json:"date"`
	Currency string           `json:"currency"`
}

// ParseReceiptJSON decodes model output into a suggestion, filling defaults
// for anything the model left out.
func ParseReceiptJSON(raw string, now time.Time) (ReceiptSuggestion, error) {
	var r receiptJSON
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &r); err != nil {
		return ReceiptSuggestion{}, fmt.Errorf("%w: %v", ErrUnreadableReceipt, err)
	}
	if r.Amount == nil || r.Amount.IsNegative() {
		return ReceiptSuggestion{}, ErrUnreadableReceipt
	}

	s := ReceiptSuggestion{
		Amount:   r.Amount.Round(2),
		Category: matchCategory(r.Category),
		Note:     strings.TrimSpace(r.Note),
		Date:     models.NewDate(now),
		Currency: strings.ToUpper(strings.TrimSpace(r.Currency)),
	}
	if d, err := models.ParseDate(strings.TrimSpace(r.Date)); err == nil {
		s.Date = d
	}
	if s.Note == "" {
		s.Note = defaultReceiptNote
	}
	if len(s.Currency) != 3 {
		s.Currency = defaultReceiptCurrency
	}
	return s, nil
}

func matchCategory(name string) models.Category {
	name = strings.TrimSpace(name)
	for _, c := range models.Categories {
		if strings.EqualFold(name, string(c)) {
			return c
		}
	}
	return models.CategoryOther
}

// cleanJSON strips Markdown fences and any prose around a single JSON object.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
