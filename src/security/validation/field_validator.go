package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/finboard/src/models"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxTickerLength        = 10
	MaxCompanyNameLength   = 255
	MaxSectorLength        = 64
	MaxNoteLength          = 2000
	MaxWatchlistNameLength = 64
	MaxWatchlistTickers    = 50
	MaxShares              = 1e9
	MaxPrice               = 1e7
)

// sellTolerance absorbs float residue when selling a whole position.
const sellTolerance = 1e-9

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Numeric Validators ---

// ValidatePositive checks that v is a finite number in (0, max].
func ValidatePositive(v float64, max float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a number", ErrValidationFailed, fieldName)
	}
	if v <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrValidationFailed, fieldName)
	}
	if v > max {
		return fmt.Errorf("%w: %s must not exceed %g", ErrValidationFailed, fieldName, max)
	}
	return nil
}

// --- Date Validator ---

// ValidateTradeDate checks s is a YYYY-MM-DD date no later than today.
func ValidateTradeDate(s string, today time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "date"); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(models.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, s, err)
	}
	if t.Format(models.DateLayout) != trimmed {
		return time.Time{}, fmt.Errorf("%w: date ('%s') is an invalid date", ErrValidationFailed, s)
	}
	if t.Format(models.DateLayout) > today.Format(models.DateLayout) {
		return time.Time{}, fmt.Errorf("%w: date ('%s') is in the future", ErrValidationFailed, s)
	}
	return t, nil
}

// --- Specific Format Validators ---

var (
	tickerRegex       = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// NormalizeTicker trims and upper-cases a symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateTicker checks an already normalized ticker symbol.
func ValidateTicker(s string) error {
	if err := ValidateStringNotEmpty(s, "ticker"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(s, MaxTickerLength, "ticker"); err != nil {
		return err
	}
	return ValidateStringRegex(s, tickerRegex, "ticker", "letters, digits, '.' or '-'")
}

// ValidateTransactionType accepts "Buy" or "Sell" in any case and returns
// the canonical spelling.
func ValidateTransactionType(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return models.TransactionBuy, nil
	case "sell":
		return models.TransactionSell, nil
	}
	return "", fmt.Errorf("%w: type ('%s') must be Buy or Sell", ErrValidationFailed, s)
}

// ValidateTransactionInput normalizes and checks a trade. It does not check
// share ownership; see ValidateSell.
func ValidateTransactionInput(in models.TransactionInput, today time.Time) (models.TransactionInput, error) {
	out := in
	out.Ticker = NormalizeTicker(in.Ticker)
	if err := ValidateTicker(out.Ticker); err != nil {
		return in, err
	}

	txType, err := ValidateTransactionType(in.Type)
	if err != nil {
		return in, err
	}
	out.Type = txType

	if err := ValidatePositive(in.Shares, MaxShares, "shares"); err != nil {
		return in, err
	}
	if err := ValidatePositive(in.Price, MaxPrice, "price"); err != nil {
		return in, err
	}
	if _, err := ValidateTradeDate(in.Date, today); err != nil {
		return in, err
	}
	out.Date = strings.TrimSpace(in.Date)

	out.CompanyName = strings.TrimSpace(SanitizeText(StripUnprintable(in.CompanyName)))
	if out.CompanyName == "" {
		out.CompanyName = out.Ticker
	}
	if err := ValidateStringMaxLength(out.CompanyName, MaxCompanyNameLength, "company name"); err != nil {
		return in, err
	}
	out.Sector = strings.TrimSpace(SanitizeText(StripUnprintable(in.Sector)))
	if err := ValidateStringMaxLength(out.Sector, MaxSectorLength, "sector"); err != nil {
		return in, err
	}
	return out, nil
}

// ValidateSell rejects selling more shares than are owned.
func ValidateSell(ticker string, shares, owned float64) error {
	if shares > owned+sellTolerance {
		return fmt.Errorf("%w: cannot sell %g shares of %s, only %g owned", ErrValidationFailed, shares, ticker, math.Max(owned, 0))
	}
	return nil
}

// ValidateNote checks a ticker note's length and content.
func ValidateNote(note, ticker string) error {
	if err := ValidateStringMaxLength(note, MaxNoteLength, "note"); err != nil {
		return err
	}
	return CheckXSSPatterns(note, "note", ticker)
}

// ValidateWatchlist checks a watchlist name and its tickers, returning the
// normalized, deduplicated tickers.
func ValidateWatchlist(name string, tickers []string) ([]string, error) {
	if err := ValidateStringNotEmpty(name, "watchlist name"); err != nil {
		return nil, err
	}
	if err := ValidateStringMaxLength(name, MaxWatchlistNameLength, "watchlist name"); err != nil {
		return nil, err
	}
	if len(tickers) > MaxWatchlistTickers {
		return nil, fmt.Errorf("%w: a watchlist holds at most %d tickers", ErrValidationFailed, MaxWatchlistTickers)
	}
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = NormalizeTicker(t)
		if err := ValidateTicker(t); err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// ValidateGoal checks a net worth target and optional target date.
func ValidateGoal(goal models.Goal) error {
	if goal.Target < 0 || math.IsNaN(goal.Target) || math.IsInf(goal.Target, 0) {
		return fmt.Errorf("%w: goal target must be zero or positive", ErrValidationFailed)
	}
	if goal.TargetDate == "" {
		return nil
	}
	if _, err := time.Parse(models.DateLayout, goal.TargetDate); err != nil {
		return fmt.Errorf("%w: goal date ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, goal.TargetDate)
	}
	return nil
}

var allowedThemes = map[string]bool{"light": true, "dark": true}

// ValidateProfile checks and sanitizes profile settings.
func ValidateProfile(p models.Profile) (models.Profile, error) {
	out := p
	out.DisplayName = strings.TrimSpace(SanitizeText(StripUnprintable(p.DisplayName)))
	if err := ValidateStringMaxLength(out.DisplayName, DefaultMaxStringLength, "display name"); err != nil {
		return p, err
	}
	if out.Theme == "" {
		out.Theme = "light"
	}
	if !allowedThemes[out.Theme] {
		return p, fmt.Errorf("%w: theme must be light or dark", ErrValidationFailed)
	}
	if out.Currency == "" {
		out.Currency = "USD"
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(out.Currency))
	if !currencyCodeRegex.MatchString(out.Currency) {
		return p, fmt.Errorf("%w: currency ('%s') must be 3 uppercase letters", ErrValidationFailed, p.Currency)
	}
	out.RiskProfile = strings.TrimSpace(SanitizeText(out.RiskProfile))
	if err := ValidateStringMaxLength(out.RiskProfile, MaxSectorLength, "risk profile"); err != nil {
		return p, err
	}
	return out, nil
}
