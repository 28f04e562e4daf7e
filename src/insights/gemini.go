package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack-server/src/logger"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// generateFunc sends one user turn to the model and returns its text.
type generateFunc func(ctx context.Context, key, model string, parts []*genai.Part) (string, error)

// Gemini implements Generator and ReceiptScanner with per-user API keys.
type Gemini struct {
	model    string
	now      func() time.Time
	generate generateFunc
}

func NewGemini(model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{model: model, now: time.Now, generate: generateContent}
}

func generateContent(ctx context.Context, key, model string, parts []*genai.Part) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) call(ctx context.Context, key, op string, parts ...*genai.Part) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrNoCredential
	}
	log := logger.FromContext(ctx)
	start := time.Now()
	text, err := g.generate(ctx, key, g.model, parts)
	if err != nil {
		log.Error().Err(err).Str("op", op).Str("model", g.model).Msg("gemini call failed")
		return "", err
	}
	log.Debug().Str("op", op).Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("gemini call completed")
	return text, nil
}

func (g *Gemini) AnalyzeFinance(ctx context.Context, key string, data FinanceData, prompt string) (string, error) {
	full, err := FinancePrompt(data, prompt)
	if err != nil {
		return "", err
	}
	return g.call(ctx, key, "analyze_finance", &genai.Part{Text: full})
}

func (g *Gemini) AnalyzeGeneral(ctx context.Context, key, question string) (string, error) {
	return g.call(ctx, key, "analyze_general", &genai.Part{Text: GeneralPrompt(question)})
}

func imagePart(image []byte, mime string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: image}}
}

func (g *Gemini) ExtractText(ctx context.Context, key string, image []byte, mime string) (string, error) {
	text, err := g.call(ctx, key, "extract_text", &genai.Part{Text: extractTextPrompt}, imagePart(image, mime))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gemini) ParseReceipt(ctx context.Context, key string, image []byte, mime string) (ReceiptSuggestion, error) {
	text, err := g.call(ctx, key, "parse_receipt", &genai.Part{Text: receiptPrompt()}, imagePart(image, mime))
	if err != nil {
		return ReceiptSuggestion{}, err
	}
	return ParseReceiptJSON(text, g.now())
}
