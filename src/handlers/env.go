package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack-server/src/db"
	store "fintrack-server/src/db/sql"
	"fintrack-server/src/insights"
	"fintrack-server/src/ledger"
	"fintrack-server/src/logger"
	"fintrack-server/src/mailer"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/report"
	"fintrack-server/src/session"
	"fintrack-server/src/util"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Converter expresses foreign amounts in the base currency.
type Converter interface {
	Base() string
	Convert(ctx context.Context, amount decimal.Decimal, from string) decimal.Decimal
}

// Env carries the dependencies shared by every handler.
type Env struct {
	Store        *store.Store
	Cache        *db.LedgerCache
	Reports      *report.Generator
	FX           Converter
	Insights     insights.Generator
	Scanner      insights.ReceiptScanner
	Mailer       mailer.Sender
	JWTSecret    string
	BaseCurrency string
	// Now is the ledger clock (default dates, periods, budget months).
	// Token expiry always uses the wall clock.
	Now          func() time.Time
}

func (env *Env) now() time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

// ledgerChanged invalidates cached results derived from the user's history.
func (env *Env) ledgerChanged(userID string) {
	if env.Cache != nil {
		env.Cache.BumpHistory(userID)
	}
}

func requestLog(r *http.Request) *zerolog.Logger {
	log := logger.FromContext(r.Context())
	return &log
}

// currentSession returns the caller's session, writing a 401 when absent.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return sess, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		requestLog(r).Error().Err(err).Str("path", r.URL.Path).Msg("failed to decode request body")
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

// writeStoreError maps data-access errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrDuplicate):
		middleware.WriteError(w, http.StatusConflict, what+" already exists")
	default:
		requestLog(r).Error().Err(err).Str("entity", what).Msg("storage failure")
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeServiceError reports a failed call to an external collaborator.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, service string) {
	if errors.Is(err, insights.ErrNoCredential) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestLog(r).Error().Err(err).Str("service", service).Msg("external service failure")
	middleware.WriteError(w, http.StatusBadGateway, err.Error())
}

// Amount accepts a JSON number or string and keeps the raw text so it can be
// validated with a reason code instead of failing the whole decode.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	*a = Amount(raw)
	return nil
}

// checkDate parses an optional YYYY-MM-DD value, falling back to fallback when empty.
func checkDate(field, raw string, fallback models.Date) (models.Date, util.Result) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, util.Valid()
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, util.Invalid(field, util.ReasonInvalidDate, "%s must be a YYYY-MM-DD date", field)
	}
	return d, util.Valid()
}

// parseRange reads the optional start and end query parameters.
func parseRange(r *http.Request) (ledger.DateRange, util.Result) {
	q := r.URL.Query()
	return rangeFrom(q.Get("start"), q.Get("end"))
}

func rangeFrom(startRaw, endRaw string) (ledger.DateRange, util.Result) {
	var rng ledger.DateRange
	if strings.TrimSpace(startRaw) != "" {
		d, res := checkDate("start", startRaw, models.Date{})
		if !res.OK {
			return ledger.DateRange{}, res
		}
		rng.Start = &d
	}
	if strings.TrimSpace(endRaw) != "" {
		d, res := checkDate("end", endRaw, models.Date{})
		if !res.OK {
			return ledger.DateRange{}, res
		}
		rng.End = &d
	}
	if rng.Start != nil && rng.End != nil && rng.End.Before(rng.Start.Time) {
		return ledger.DateRange{}, util.Invalid("end", util.ReasonInvalidDate, "end must not be before start")
	}
	return rng, util.Valid()
}

// parseListOptions reads limit, start and end.
func parseListOptions(r *http.Request) (store.ListOptions, util.Result) {
	rng, res := parseRange(r)
	if !res.OK {
		return store.ListOptions{}, res
	}
	opts := store.ListOptions{Range: rng}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return store.ListOptions{}, util.Invalid("limit", util.ReasonNotNumeric, "limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, util.Valid()
}

func wantBase(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("base"))
	return v
}
