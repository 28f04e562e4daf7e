package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	kind string
	page int
	font string
	size float64
	x, y float64
	w, h float64
	text string
}

type recordingCanvas struct {
	ops  []op
	page int
	font string
	size float64
}

func (c *recordingCanvas) AddPage() {
	c.page++
	c.ops = append(c.ops, op{kind: "page", page: c.page})
}

func (c *recordingCanvas) SetFont(style string, size float64) {
	c.font, c.size = style, size
}

func (c *recordingCanvas) Text(x, y float64, s string) {
	c.ops = append(c.ops, op{kind: "text", page: c.page, font: c.font, size: c.size, x: x, y: y, text: s})
}

func (c *recordingCanvas) TextRight(right, y float64, s string) {
	c.ops = append(c.ops, op{kind: "text", page: c.page, font: c.font, size: c.size, x: right, y: y, text: s})
}

func (c *recordingCanvas) Image(name string, _ []byte, x, y, w, h float64) {
	c.ops = append(c.ops, op{kind: "image", page: c.page, x: x, y: y, w: w, h: h, text: name})
}

func blankPNG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func bigDataset(nExpenses, nIncomes int) *Dataset {
	var expenses []models.Expense
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < nExpenses; i++ {
		expenses = append(expenses, models.Expense{
			Amount:   decimal.NewFromInt(int64(i + 1)),
			Category: models.Categories[i%len(models.Categories)],
			Note:     fmt.Sprintf("expense number %d with a note long enough to be cut off somewhere", i),
			Date:     models.NewDate(start.AddDate(0, 0, nExpenses-i)),
			Currency: "USD",
		})
	}
	var incomes []models.Income
	for i := 0; i < nIncomes; i++ {
		incomes = append(incomes, models.Income{
			Amount: decimal.NewFromInt(1000), Source: models.SourceSalary,
			Date: models.NewDate(start.AddDate(0, 0, nIncomes-i)), Currency: "USD",
		})
	}
	return NewDataset("Ada", ledger.DateRange{}, expenses, incomes, start)
}

func fourCharts(t *testing.T) []Chart {
	img := blankPNG(t, 624, 250)
	return []Chart{{"Income vs Expense", img}, {"Expenses by Category", img}, {"Monthly Expense Trend", img}, {"Top Expense Categories", img}}
}

// Every drawn block must fit above the bottom limit of its page.
func TestRenderKeepsBlocksInsidePage(t *testing.T) {
	c := &recordingCanvas{}
	narrative := strings.Repeat("Spending on food rose sharply this quarter. ", 120)
	Render(c, bigDataset(230, 80), fourCharts(t), narrative)

	require.Greater(t, c.page, 5)
	images := 0
	for _, o := range c.ops {
		switch o.kind {
		case "text":
			assert.LessOrEqual(t, o.y, bottomLimit, "text %q on page %d", o.text, o.page)
			assert.GreaterOrEqual(t, o.y, margin)
		case "image":
			images++
			assert.LessOrEqual(t, o.y+o.h+chartSpacing, bottomLimit+0.001, "image %s on page %d", o.text, o.page)
		}
	}
	assert.Equal(t, 4, images)
}

// A table continued on a new page starts with its title and column headers.
func TestRenderRedrawsTableHeaderAfterBreak(t *testing.T) {
	c := &recordingCanvas{}
	Render(c, bigDataset(200, 0), nil, "ok")

	inExpenses := false
	breaks := 0
	for i, o := range c.ops {
		if o.kind == "text" && o.text == "Expenses" && o.font == "B" {
			inExpenses = true
		}
		if o.kind == "text" && o.text == "Incomes" && o.font == "B" {
			break
		}
		if o.kind == "page" && inExpenses {
			breaks++
			require.Greater(t, len(c.ops), i+2)
			assert.Equal(t, "Expenses", c.ops[i+1].text)
			assert.Equal(t, margin, c.ops[i+1].y)
			assert.Equal(t, "Date", c.ops[i+2].text)
		}
	}
	assert.GreaterOrEqual(t, breaks, 2)
}

func TestRenderRowsInDescendingDateOrder(t *testing.T) {
	c := &recordingCanvas{}
	d := bigDataset(30, 0)
	Render(c, d, nil, "")

	var dates []string
	for _, o := range c.ops {
		if o.kind == "text" && o.size == 9 && o.font == "" && o.x == columnX[0] && len(o.text) == 10 {
			dates = append(dates, o.text)
		}
	}
	require.Len(t, dates, 30)
	for i := 1; i < len(dates); i++ {
		assert.GreaterOrEqual(t, dates[i-1], dates[i])
	}
}

func TestRenderShowsInsightFailure(t *testing.T) {
	c := &recordingCanvas{}
	Render(c, bigDataset(1, 1), nil, "AI unavailable: quota exceeded")

	var found bool
	for _, o := range c.ops {
		if o.kind == "text" && o.text == "AI unavailable: quota exceeded" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCoverBlock(t *testing.T) {
	c := &recordingCanvas{}
	start, end := models.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), models.NewDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	d := NewDataset("Ada", ledger.NewDateRange(&start, &end), nil, nil, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC))
	Render(c, d, nil, "")

	var texts []string
	for _, o := range c.ops[:10] {
		if o.kind == "text" {
			texts = append(texts, o.text)
		}
	}
	assert.Equal(t, "Expense Tracker Report - Ada", texts[0])
	assert.Equal(t, "Range: 2024-01-01 to 2024-01-31", texts[1])
	assert.Equal(t, "Generated: 2024-02-01 09:30 UTC", texts[2])
	assert.Equal(t, "Total Income  : 0.00", texts[4])
}

func TestWrapText(t *testing.T) {
	lines := wrapText("alpha beta gamma delta", 11)
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, lines)

	lines = wrapText(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, lines)

	lines = wrapText("one\n\ntwo", 95)
	assert.Equal(t, []string{"one", "", "two"}, lines)

	for _, l := range wrapText(strings.Repeat("word ", 100), wrapColumns) {
		assert.LessOrEqual(t, len(l), wrapColumns)
	}
}

func TestFitImageKeepsAspect(t *testing.T) {
	w, h := fitImage(blankPNG(t, 200, 200), chartWidth, chartHeight)
	assert.InDelta(t, chartHeight, h, 0.001)
	assert.InDelta(t, chartHeight, w, 0.001)

	w, h = fitImage([]byte("not a png"), chartWidth, chartHeight)
	assert.Equal(t, chartWidth, w)
	assert.Equal(t, chartHeight, h)
}
