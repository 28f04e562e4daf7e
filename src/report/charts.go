package report

import (
	"bytes"
	"fmt"
	"image/color"

	"fintrack-server/src/ledger"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	pieSlices   = 8
	topBars     = 10
	chartWidth  = 6.5 * 72
	chartHeight = 2.6 * 72
)

var (
	incomeColor  = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	expenseColor = color.RGBA{R: 205, G: 92, B: 92, A: 255}
	barColor     = color.RGBA{R: 70, G: 130, B: 180, A: 255}
)

// Chart is a rendered PNG with the caption printed above it.
type Chart struct {
	Title string
	PNG   []byte
}

// RenderCharts draws, in order: income vs expense, the category pie, the
// monthly trend and the top categories. Charts without data are left out.
func RenderCharts(d *Dataset) ([]Chart, error) {
	var charts []Chart
	add := func(title string, render func() ([]byte, error)) error {
		png, err := render()
		if err != nil {
			return fmt.Errorf("render %s chart: %w", title, err)
		}
		charts = append(charts, Chart{Title: title, PNG: png})
		return nil
	}

	if d.TotalIncome.IsPositive() || d.TotalExpense.IsPositive() {
		if err := add("Income vs Expense", func() ([]byte, error) { return incomeVsExpense(d.TotalIncome, d.TotalExpense) }); err != nil {
			return nil, err
		}
	}

	categories := ledger.CategoryTotals(d.Expenses)
	if d.TotalExpense.IsPositive() {
		if err := add("Expenses by Category", func() ([]byte, error) { return categoryPie(PieSlices(categories)) }); err != nil {
			return nil, err
		}
	}

	if months := ledger.MonthlyTotals(d.Expenses); len(months) > 0 {
		if err := add("Monthly Expense Trend", func() ([]byte, error) { return monthlyTrend(months) }); err != nil {
			return nil, err
		}
	}

	if len(categories) > 0 {
		top := categories
		if len(top) > topBars {
			top = top[:topBars]
		}
		if err := add("Top Expense Categories", func() ([]byte, error) { return topCategories(top) }); err != nil {
			return nil, err
		}
	}
	return charts, nil
}

// PieSlices keeps the largest categories and folds the rest into "Other".
func PieSlices(totals []ledger.CategoryTotal) []ledger.CategoryTotal {
	if len(totals) <= pieSlices {
		return totals
	}
	slices := append([]ledger.CategoryTotal{}, totals[:pieSlices]...)
	rest := decimal.Zero
	for _, t := range totals[pieSlices:] {
		rest = rest.Add(t.Total)
	}
	for i := range slices {
		if slices[i].Category == "Other" {
			slices[i].Total = slices[i].Total.Add(rest)
			return slices
		}
	}
	return append(slices, ledger.CategoryTotal{Category: "Other", Total: rest})
}

func categoryPie(slices []ledger.CategoryTotal) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if !s.Total.IsPositive() {
			continue
		}
		values = append(values, chart.Value{Value: s.Total.InexactFloat64(), Label: s.Category})
	}
	pie := chart.PieChart{
		Width:  900,
		Height: 360,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	return p
}

func encodePlot(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(vg.Length(chartWidth), vg.Length(chartHeight), "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func monthlyTrend(months []ledger.MonthTotal) ([]byte, error) {
	p := newPlot("")
	p.Y.Label.Text = "Spent"
	pts := make(plotter.XYs, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		pts[i].X = float64(i)
		pts[i].Y = m.Total.InexactFloat64()
		labels[i] = m.Month
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = expenseColor
	points.GlyphStyle.Color = expenseColor
	p.Add(line, points, plotter.NewGrid())
	p.NominalX(labels...)
	return encodePlot(p)
}

func topCategories(top []ledger.CategoryTotal) ([]byte, error) {
	p := newPlot("")
	// Largest at the top: the bar chart draws index 0 at the bottom.
	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, t := range top {
		j := len(top) - 1 - i
		values[j] = t.Total.InexactFloat64()
		labels[j] = t.Category
	}
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)
	return encodePlot(p)
}

func incomeVsExpense(income, expense decimal.Decimal) ([]byte, error) {
	p := newPlot("")
	in, err := plotter.NewBarChart(plotter.Values{income.InexactFloat64(), 0}, vg.Points(40))
	if err != nil {
		return nil, err
	}
	in.Color = incomeColor
	in.LineStyle.Width = 0
	out, err := plotter.NewBarChart(plotter.Values{0, expense.InexactFloat64()}, vg.Points(40))
	if err != nil {
		return nil, err
	}
	out.Color = expenseColor
	out.LineStyle.Width = 0
	p.Add(in, out)
	p.NominalX("Income", "Expense")
	return encodePlot(p)
}
