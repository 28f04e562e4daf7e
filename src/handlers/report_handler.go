package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	store "fintrack-server/src/db/sql"
	"fintrack-server/src/insights"
	"fintrack-server/src/ledger"
	"fintrack-server/src/middleware"
	"fintrack-server/src/report"
	"fintrack-server/src/session"
	"fintrack-server/src/util"
)

var errInsightsDisabled = errors.New("AI insights are not configured")

const (
	csvMIME = "text/csv"
	pdfMIME = "application/pdf"
)

func financeData(ctx context.Context, s *store.Store, userID string) (insights.FinanceData, error) {
	var d insights.FinanceData
	var err error
	if d.Expenses, err = s.ListExpenses(ctx, userID, store.ListOptions{}); err != nil {
		return d, err
	}
	if d.Income, err = s.ListIncome(ctx, userID, store.ListOptions{}); err != nil {
		return d, err
	}
	if d.Budgets, err = s.ListBudgets(ctx, userID); err != nil {
		return d, err
	}
	return d, nil
}

// reportInsight feeds the PDF narrative from the caller's Gemini key.
func reportInsight(env *Env, sess *session.Session) report.InsightFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		if env.Insights == nil {
			return "", errInsightsDisabled
		}
		key, err := sess.Credential(ctx, env.Store)
		if err != nil {
			return "", err
		}
		data, err := financeData(ctx, env.Store, sess.UserID)
		if err != nil {
			return "", err
		}
		return env.Insights.AnalyzeFinance(ctx, key, data, prompt)
	}
}

func writeAttachment(w http.ResponseWriter, mime, filename string, data []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func ReportCSV(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		rng, res := parseRange(r)
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}
		data, err := env.Reports.CSV(r.Context(), sess.UserID, rng)
		if err != nil {
			writeStoreError(w, r, err, "report")
			return
		}
		writeAttachment(w, csvMIME, "report.csv", data)
	}
}

func ReportPDF(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		rng, res := parseRange(r)
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}
		data, err := env.Reports.PDF(r.Context(), sess.UserID, rng, reportInsight(env, sess))
		if err != nil {
			writeStoreError(w, r, err, "report")
			return
		}
		writeAttachment(w, pdfMIME, "report.pdf", data)
	}
}

// EmailReport renders a report and mails it as an attachment.
func EmailReport(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			To     string `json:"to"`
			Format string `json:"format"`
			Start  string `json:"start"`
			End    string `json:"end"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		to := strings.TrimSpace(req.To)
		if to == "" {
			to = sess.Email
		}
		res := util.CheckEmail("to", to)
		format := strings.ToLower(strings.TrimSpace(req.Format))
		if format == "" {
			format = "pdf"
		}
		if res.OK && format != "pdf" && format != "csv" {
			res = util.Invalid("format", util.ReasonRequired, "format must be pdf or csv")
		}
		var rng ledger.DateRange
		if res.OK {
			rng, res = rangeFrom(req.Start, req.End)
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		var (
			data     []byte
			err      error
			mime     = pdfMIME
			filename = "report.pdf"
		)
		if format == "csv" {
			mime, filename = csvMIME, "report.csv"
			data, err = env.Reports.CSV(r.Context(), sess.UserID, rng)
		} else {
			data, err = env.Reports.PDF(r.Context(), sess.UserID, rng, reportInsight(env, sess))
		}
		if err != nil {
			writeStoreError(w, r, err, "report")
			return
		}

		subject := "Your finance report (" + rng.Label() + ")"
		body := "Hi " + sess.Name + ",\n\nYour finance report for " + rng.Label() + " is attached.\n"
		if err := env.Mailer.SendReport(r.Context(), to, subject, body, filename, mime, data); err != nil {
			writeServiceError(w, r, err, "email")
			return
		}

		requestLog(r).Info().Str("to", to).Str("format", format).Msg("emailed report")
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "report sent to " + to})
	}
}
