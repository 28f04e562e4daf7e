package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"fintrack-server/src/insights"
	"fintrack-server/src/middleware"
	"fintrack-server/src/util"
)

const maxReceiptBytes = 10 << 20

type receiptResponse struct {
	Text       string                      `json:"text"`
	Suggestion *insights.ReceiptSuggestion `json:"suggestion,omitempty"`
	Warning    string                      `json:"warning,omitempty"`
}

// Insights answers a prompt about the caller's own ledger.
func Insights(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		prompt := strings.TrimSpace(req.Prompt)
		if res := util.Required("prompt", prompt); !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		text, err := reportInsight(env, sess)(r.Context(), prompt)
		if err != nil {
			writeServiceError(w, r, err, "gemini")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

// Chat answers a general question that is not tied to the ledger.
func Chat(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Question string `json:"question"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		question := strings.TrimSpace(req.Question)
		if res := util.Required("question", question); !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}
		if env.Insights == nil {
			writeServiceError(w, r, errInsightsDisabled, "gemini")
			return
		}

		key, err := sess.Credential(r.Context(), env.Store)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		text, err := env.Insights.AnalyzeGeneral(r.Context(), key, question)
		if err != nil {
			writeServiceError(w, r, err, "gemini")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

// ScanReceipt reads the multipart "image" field and returns the receipt text
// plus a suggested expense. Either half may fail on its own.
func ScanReceipt(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		if env.Scanner == nil {
			writeServiceError(w, r, errInsightsDisabled, "gemini")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
		file, header, err := r.FormFile("image")
		if err != nil {
			middleware.WriteInvalid(w, util.Invalid("image", util.ReasonRequired, "image is required"))
			return
		}
		defer file.Close()
		image, err := io.ReadAll(file)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "failed to read image")
			return
		}
		mime := header.Header.Get("Content-Type")
		if !strings.HasPrefix(mime, "image/") {
			mime = http.DetectContentType(image)
		}
		if !strings.HasPrefix(mime, "image/") {
			middleware.WriteInvalid(w, util.Invalid("image", util.ReasonRequired, "upload must be an image"))
			return
		}

		key, err := sess.Credential(r.Context(), env.Store)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}

		text, textErr := env.Scanner.ExtractText(r.Context(), key, image, mime)
		suggestion, parseErr := env.Scanner.ParseReceipt(r.Context(), key, image, mime)
		if textErr != nil && parseErr != nil {
			writeServiceError(w, r, textErr, "gemini")
			return
		}

		resp := receiptResponse{Text: text}
		if parseErr == nil {
			resp.Suggestion = &suggestion
		}
		if err := errors.Join(textErr, parseErr); err != nil {
			requestLog(r).Error().Err(err).Msg("receipt scan partially failed")
			resp.Warning = err.Error()
		}
		requestLog(r).Info().Int("bytes", len(image)).Bool("suggested", resp.Suggestion != nil).Msg("scanned receipt")
		middleware.WriteJSON(w, http.StatusOK, resp)
	}
}
