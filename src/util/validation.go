package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	amountRe   = regexp.MustCompile(`^-?\d{1,12}(\.\d{1,8})?$`)
	lowerRe    = regexp.MustCompile("[a-z]")
	upperRe    = regexp.MustCompile("[A-Z]")
	digitRe    = regexp.MustCompile("[0-9]")
	specialRe  = regexp.MustCompile(`[^A-Za-z0-9]`)
)

type Reason string

const (
	ReasonRequired          Reason = "required"
	ReasonNotNumeric        Reason = "not_numeric"
	ReasonNegativeAmount    Reason = "negative_amount"
	ReasonNonPositiveAmount Reason = "non_positive_amount"
	ReasonInvalidCategory   Reason = "invalid_category"
	ReasonInvalidSource     Reason = "invalid_source"
	ReasonInvalidCurrency   Reason = "invalid_currency"
	ReasonInvalidDate       Reason = "invalid_date"
	ReasonInvalidEmail      Reason = "invalid_email"
	ReasonInvalidSplit      Reason = "invalid_split"
	ReasonInvalidUsername   Reason = "invalid_username"
	ReasonWeakPassword      Reason = "weak_password"
)

// Result is the outcome of validating one input field.
type Result struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func Valid() Result {
	return Result{OK: true}
}

func Invalid(field string, reason Reason, format string, args ...any) Result {
	return Result{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (r Result) Error() string {
	return r.Message
}

// First returns the first failing result, or a passing one when all pass.
func First(results ...Result) Result {
	for _, r := range results {
		if !r.OK {
			return r
		}
	}
	return Valid()
}

func Required(field, value string) Result {
	if strings.TrimSpace(value) == "" {
		return Invalid(field, ReasonRequired, "%s is required", field)
	}
	return Valid()
}

// maxAmount bounds amounts to what a NUMERIC(14,2) column holds.
var maxAmount = decimal.New(1, 12)

// ParseAmount parses a plain decimal money amount, accepting thousands
// separators ("1,234.50"). Exponents and more than 12 integer digits are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if !amountRe.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("amount %q out of range", s)
	}
	return d, nil
}

// CheckAmount validates a non-negative amount.
func CheckAmount(field, raw string) (decimal.Decimal, Result) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, Invalid(field, ReasonRequired, "%s is required", field)
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, Invalid(field, ReasonNotNumeric, "%s must be a number", field)
	}
	if d.IsNegative() {
		return decimal.Zero, Invalid(field, ReasonNegativeAmount, "%s cannot be negative", field)
	}
	return d, Valid()
}

// CheckPositiveAmount validates an amount that must be greater than zero.
func CheckPositiveAmount(field, raw string) (decimal.Decimal, Result) {
	d, res := CheckAmount(field, raw)
	if !res.OK {
		if res.Reason == ReasonNegativeAmount {
			res.Reason = ReasonNonPositiveAmount
			res.Message = fmt.Sprintf("%s must be greater than zero", field)
		}
		return decimal.Zero, res
	}
	if !d.IsPositive() {
		return decimal.Zero, Invalid(field, ReasonNonPositiveAmount, "%s must be greater than zero", field)
	}
	return d, Valid()
}

// NormalizeCurrency upper-cases a currency code, defaulting to fallback when empty.
func NormalizeCurrency(code, fallback string) (string, Result) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		c = fallback
	}
	if !currencyRe.MatchString(c) {
		return "", Invalid("currency", ReasonInvalidCurrency, "currency must be a three-letter code")
	}
	return c, Valid()
}

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func CheckEmail(field, email string) Result {
	if strings.TrimSpace(email) == "" {
		return Invalid(field, ReasonRequired, "%s is required", field)
	}
	if !ValidateEmail(email) {
		return Invalid(field, ReasonInvalidEmail, "invalid email format")
	}
	return Valid()
}

func ValidateUsername(username string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	return n >= 1 && n <= 60
}

func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		specialRe.MatchString(password)
}

func CheckPassword(password string) Result {
	if !ValidatePassword(password) {
		return Invalid("password", ReasonWeakPassword,
			"password must be at least 8 characters with uppercase, lowercase, digit, and special character")
	}
	return Valid()
}
