package report

import (
	"bytes"
	"context"
	"time"

	"fintrack-server/src/ledger"
)

// InsightFunc produces narrative text for a prompt.
type InsightFunc func(ctx context.Context, prompt string) (string, error)

type Generator struct {
	src Source
	now func() time.Time
}

func NewGenerator(src Source) *Generator {
	return &Generator{src: src, now: time.Now}
}

func (g *Generator) CSV(ctx context.Context, userID string, rng ledger.DateRange) ([]byte, error) {
	d, err := g.Load(ctx, userID, rng)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF renders the full report. A failing insight call is written into the
// narrative section and does not fail the report.
func (g *Generator) PDF(ctx context.Context, userID string, rng ledger.DateRange, insight InsightFunc) ([]byte, error) {
	d, err := g.Load(ctx, userID, rng)
	if err != nil {
		return nil, err
	}
	charts, err := RenderCharts(d)
	if err != nil {
		return nil, err
	}
	narrative := Narrative(ctx, insight, InsightPrompt(rng))

	canvas := NewPDFCanvas()
	Render(canvas, d, charts, narrative)
	return canvas.Bytes()
}

// Narrative calls insight and converts a failure into display text.
func Narrative(ctx context.Context, insight InsightFunc, prompt string) string {
	if insight == nil {
		return "AI unavailable: no insight generator configured"
	}
	text, err := insight(ctx, prompt)
	if err != nil {
		return "AI unavailable: " + err.Error()
	}
	return text
}
