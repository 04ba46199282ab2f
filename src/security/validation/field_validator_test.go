package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
)

var today = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func validInput() models.TransactionInput {
	return models.TransactionInput{
		Date: "2024-06-14", Type: "buy", Ticker: " aapl ", CompanyName: "<b>Apple</b> Inc.",
		Sector: "Technology", Shares: 10, Price: 180.5,
	}
}

func TestValidateTransactionInput_NormalizesFields(t *testing.T) {
	out, err := ValidateTransactionInput(validInput(), today)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Ticker)
	assert.Equal(t, models.TransactionBuy, out.Type)
	assert.Equal(t, "Apple Inc.", out.CompanyName)
}

func TestValidateTransactionInput_DefaultsCompanyNameToTicker(t *testing.T) {
	in := validInput()
	in.CompanyName = "  "
	out, err := ValidateTransactionInput(in, today)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.CompanyName)
}

func TestValidateTransactionInput_Rejects(t *testing.T) {
	cases := map[string]func(*models.TransactionInput){
		"zero shares":     func(in *models.TransactionInput) { in.Shares = 0 },
		"negative shares": func(in *models.TransactionInput) { in.Shares = -1 },
		"zero price":      func(in *models.TransactionInput) { in.Price = 0 },
		"bad type":        func(in *models.TransactionInput) { in.Type = "Short" },
		"empty ticker":    func(in *models.TransactionInput) { in.Ticker = "" },
		"bad ticker":      func(in *models.TransactionInput) { in.Ticker = "AA PL" },
		"long ticker":     func(in *models.TransactionInput) { in.Ticker = "ABCDEFGHIJK" },
		"bad date":        func(in *models.TransactionInput) { in.Date = "14-06-2024" },
		"impossible date": func(in *models.TransactionInput) { in.Date = "2024-02-30" },
		"future date":     func(in *models.TransactionInput) { in.Date = "2024-06-16" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := ValidateTransactionInput(in, today)
		assert.True(t, errors.Is(err, ErrValidationFailed), name)
	}
}

func TestValidateTradeDate_TodayIsAllowed(t *testing.T) {
	_, err := ValidateTradeDate("2024-06-15", today)
	assert.NoError(t, err)
}

func TestValidateSell(t *testing.T) {
	assert.NoError(t, ValidateSell("AAPL", 5, 10))
	assert.NoError(t, ValidateSell("AAPL", 10, 10))
	err := ValidateSell("AAPL", 10.5, 10)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, ValidateSell("AAPL", 1, 0), ErrValidationFailed)
}

func TestValidateWatchlist(t *testing.T) {
	tickers, err := ValidateWatchlist("Tech", []string{"aapl", "MSFT", "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	_, err = ValidateWatchlist("", []string{"AAPL"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateWatchlist("Bad", []string{"not a ticker"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateNote(t *testing.T) {
	assert.NoError(t, ValidateNote("Trim on earnings", "AAPL"))
	assert.ErrorIs(t, ValidateNote(`<script>alert(1)</script>`, "AAPL"), ErrValidationFailed)
}

func TestValidateGoal(t *testing.T) {
	assert.NoError(t, ValidateGoal(models.Goal{Target: 250000, TargetDate: "2030-01-01"}))
	assert.ErrorIs(t, ValidateGoal(models.Goal{Target: -1}), ErrValidationFailed)
	assert.ErrorIs(t, ValidateGoal(models.Goal{Target: 1, TargetDate: "soon"}), ErrValidationFailed)
}

func TestValidateProfile(t *testing.T) {
	p, err := ValidateProfile(models.Profile{DisplayName: "Sam", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "light", p.Theme)

	_, err = ValidateProfile(models.Profile{Theme: "neon"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSanitizeHTMLKeepsFormattingOnly(t *testing.T) {
	out := SanitizeHTML(`<p>Hold <strong>steady</strong></p><script>x()</script>`)
	assert.Contains(t, out, "<strong>steady</strong>")
	assert.NotContains(t, out, "script")
}
