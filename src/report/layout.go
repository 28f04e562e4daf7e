package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"unicode/utf8"
)

const (
	pageHeight     = 792.0
	margin         = 40.0
	bottomLimit    = pageHeight - 60
	sectionSpacing = 20.0

	chartTitleHeight = 14.0
	chartSpacing     = 10.0

	tableStartSpace = 120.0
	rowHeight       = 11.0
	lineHeight      = 12.0
	wrapColumns     = 95

	categoryWidth = 25
	noteWidth     = 40
)

// Table column offsets from the left margin.
var columnX = [5]float64{margin, margin + 90, margin + 250, margin + 330, margin + 420}

const amountRight = margin + 250 + 30

type layout struct {
	c Canvas
	y float64
}

func (l *layout) newPage() {
	l.c.AddPage()
	l.y = margin
}

// ensure starts a new page unless a block of height h fits below the cursor.
// It reports whether a page break happened.
func (l *layout) ensure(h float64) bool {
	if l.y+h <= bottomLimit {
		return false
	}
	l.newPage()
	return true
}

func (l *layout) line(font string, size float64, s string, advance float64) {
	l.c.SetFont(font, size)
	l.c.Text(margin, l.y, s)
	l.y += advance
}

type table struct {
	title   string
	headers []string
	rows    [][]string
}

// Render lays out the whole report onto c.
func Render(c Canvas, d *Dataset, charts []Chart, narrative string) {
	l := &layout{c: c}
	l.newPage()

	l.cover(d)
	l.charts(charts)
	l.table(expenseTable(d))
	l.table(incomeTable(d))
	l.narrative(narrative)
}

func (l *layout) cover(d *Dataset) {
	name := d.UserName
	if name == "" {
		name = "User"
	}
	l.line("B", 18, "Expense Tracker Report - "+name, 25)
	l.line("", 11, fmt.Sprintf("Range: %s to %s", d.Range.StartLabel(), d.Range.EndLabel()), 16)
	l.line("", 11, "Generated: "+d.GeneratedAt.Format("2006-01-02 15:04 UTC"), 30)

	l.line("B", 13, "Summary Overview", 18)
	l.line("", 11, "Total Income  : "+FormatAmount(d.TotalIncome), 14)
	l.line("", 11, "Total Expense : "+FormatAmount(d.TotalExpense), 14)
	l.line("", 11, "Balance       : "+FormatAmount(d.Balance), 0)
	l.y += sectionSpacing
}

func (l *layout) charts(charts []Chart) {
	l.ensure(20 + chartTitleHeight + chartHeight + chartSpacing)
	l.line("B", 14, "Dashboard Charts", 20)
	if len(charts) == 0 {
		l.line("", 10, "No chart data for this range.", 14)
	}
	for i, ch := range charts {
		l.ensure(chartTitleHeight + chartHeight + chartSpacing)
		l.line("B", 12, ch.Title, chartTitleHeight)
		w, h := fitImage(ch.PNG, chartWidth, chartHeight)
		l.c.Image(fmt.Sprintf("chart-%d", i), ch.PNG, margin, l.y, w, h)
		l.y += chartHeight + chartSpacing
	}
	l.y += sectionSpacing
}

func (l *layout) table(t table) {
	if l.y > pageHeight-tableStartSpace {
		l.newPage()
	}
	l.tableHeader(t)
	if len(t.rows) == 0 {
		l.ensure(rowHeight)
		l.line("", 9, "No records in this range.", rowHeight)
	}
	for _, row := range t.rows {
		if l.ensure(rowHeight) {
			l.tableHeader(t)
		}
		l.c.SetFont("", 9)
		for i, cell := range row {
			if i == 2 {
				l.c.TextRight(amountRight, l.y, cell)
				continue
			}
			l.c.Text(columnX[i], l.y, cell)
		}
		l.y += rowHeight
	}
	l.y += sectionSpacing
}

func (l *layout) tableHeader(t table) {
	l.line("B", 13, t.title, 16)
	l.c.SetFont("B", 9)
	for i, h := range t.headers {
		if i == 2 {
			l.c.TextRight(amountRight, l.y, h)
			continue
		}
		l.c.Text(columnX[i], l.y, h)
	}
	l.y += 12
}

func (l *layout) narrative(text string) {
	if l.y > pageHeight-tableStartSpace {
		l.newPage()
	}
	l.line("B", 14, "AI Insights Summary", 20)
	l.c.SetFont("", 10)
	for _, s := range wrapText(text, wrapColumns) {
		if l.ensure(lineHeight) {
			l.c.SetFont("", 10)
		}
		l.c.Text(margin, l.y, s)
		l.y += lineHeight
	}
}

func expenseTable(d *Dataset) table {
	t := table{title: "Expenses", headers: []string{"Date", "Category", "Amount", "Currency", "Note"}}
	for _, e := range d.Expenses {
		t.rows = append(t.rows, []string{
			e.Date.String(), truncate(string(e.Category), categoryWidth), FormatAmount(e.Amount), e.Currency, truncate(e.Note, noteWidth),
		})
	}
	return t
}

func incomeTable(d *Dataset) table {
	t := table{title: "Incomes", headers: []string{"Date", "Source", "Amount", "Currency"}}
	for _, i := range d.Incomes {
		t.rows = append(t.rows, []string{i.Date.String(), truncate(string(i.Source), categoryWidth), FormatAmount(i.Amount), i.Currency})
	}
	return t
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// wrapText breaks s into lines of at most width runes, splitting on spaces
// and cutting words that are longer than a line. Blank lines are kept.
func wrapText(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var cur []rune
		for _, w := range words {
			word := []rune(w)
			for len(word) > width {
				if len(cur) > 0 {
					lines = append(lines, string(cur))
					cur = nil
				}
				lines = append(lines, string(word[:width]))
				word = word[width:]
			}
			switch {
			case len(cur) == 0:
				cur = word
			case len(cur)+1+len(word) <= width:
				cur = append(append(cur, ' '), word...)
			default:
				lines = append(lines, string(cur))
				cur = word
			}
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
	}
	return lines
}

// fitImage scales the image to fit inside a maxW x maxH box keeping its aspect ratio.
func fitImage(png []byte, maxW, maxH float64) (float64, float64) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return maxW, maxH
	}
	w, h := maxW, maxW*float64(cfg.Height)/float64(cfg.Width)
	if h > maxH {
		w, h = maxH*float64(cfg.Width)/float64(cfg.Height), maxH
	}
	return w, h
}
