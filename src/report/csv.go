package report

import (
	"encoding/csv"
	"io"
	"time"
)

var csvHeader = []string{"record_type", "date", "category_or_source", "amount", "currency", "note", "created_at"}

// WriteCSV writes one row per expense and then one per income entry.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range d.Expenses {
		row := []string{"expense", e.Date.String(), string(e.Category), FormatAmount(e.Amount), e.Currency, e.Note, e.CreatedAt.UTC().Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, i := range d.Incomes {
		row := []string{"income", i.Date.String(), string(i.Source), FormatAmount(i.Amount), i.Currency, "", i.CreatedAt.UTC().Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
