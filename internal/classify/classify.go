package classify

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// Provider and output failures are distinct so the normalizer can pick a
// different fallback tag for each.
var (
	// ErrProvider means the model call itself failed (unreachable, quota,
	// timeout).
	ErrProvider = errors.New("classifier provider error")

	// ErrMalformed means the model answered but the output could not be
	// parsed into the expected shape.
	ErrMalformed = errors.New("classifier returned malformed output")
)

// Guess is a best-effort categorization for a single transaction.
type Guess struct {
	Category string
	Tags     []string
	Kind     domain.Kind
}

// Line is one transaction descriptor extracted from a bulk statement.
type Line struct {
	Date        civil.Date
	Amount      decimal.Decimal // negative for purchases, positive for refunds
	Description string
	Refund      bool
}

// EmailResult is a transaction extracted from a bank notification email.
type EmailResult struct {
	Amount      decimal.Decimal
	Description string
	Date        civil.Date
	Account     string
	Kind        domain.Kind
}

// Classifier is the external categorization oracle. It is best-effort and
// unreliable: every method can fail, and callers must fall back
// deterministically.
type Classifier interface {
	// Categorize returns a category/tags/kind guess for a description and
	// signed amount. Errors wrap ErrProvider or ErrMalformed.
	Categorize(ctx context.Context, description string, amount decimal.Decimal) (Guess, error)

	// ParseStatement extracts transaction lines from raw statement text.
	// On any failure it returns an empty slice and no error, so the
	// importer simply has nothing to process.
	ParseStatement(ctx context.Context, text string) ([]Line, error)

	// ParseEmail extracts a transaction from a bank email, or nil when
	// none is found (including on failure).
	ParseEmail(ctx context.Context, subject, body string) (*EmailResult, error)
}
