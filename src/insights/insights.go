package insights

import (
	"context"
	"errors"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// ErrNoCredential is shown to the user as-is.
var ErrNoCredential = errors.New("No Gemini API key found. Please add it in Settings.")

var ErrUnreadableReceipt = errors.New("could not read an amount from the receipt")

// FinanceData is the ledger snapshot embedded in finance prompts.
type FinanceData struct {
	Expenses []models.Expense `json:"expenses"`
	Income   []models.Income  `json:"income"`
	Budgets  []models.Budget  `json:"budgets"`
}

type Generator interface {
	AnalyzeFinance(ctx context.Context, key string, data FinanceData, prompt string) (string, error)
	AnalyzeGeneral(ctx context.Context, key, question string) (string, error)
}

type ReceiptScanner interface {
	ExtractText(ctx context.Context, key string, image []byte, mime string) (string, error)
	ParseReceipt(ctx context.Context, key string, image []byte, mime string) (ReceiptSuggestion, error)
}

type ReceiptSuggestion struct {
	Amount   decimal.Decimal `json:"amount"`
	Category models.Category `json:"category"`
	Note     string          `json:"note"`
	Date     models.Date     `json:"date"`
	Currency string          `json:"currency"`
}
