package ledger

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// Normalizer turns a raw input tuple into a canonical record. It invokes
// the classifier and applies deterministic fallbacks when it fails. It
// never persists anything; appending is the caller's job.
type Normalizer struct {
	classifier classify.Classifier
	now        func() time.Time
}

// NewNormalizer creates a Normalizer backed by the given classifier.
func NewNormalizer(classifier classify.Classifier) *Normalizer {
	return &Normalizer{
		classifier: classifier,
		now:        time.Now,
	}
}

// ManualInput is a caller-signed transaction from the manual or
// quick-text path. The sign is taken as given: the caller may already
// report a positive credit.
type ManualInput struct {
	Amount      decimal.Decimal
	Description string
	Date        civil.Date // zero value means "today"
	Account     string
	Source      domain.Source
}

// NormalizeManual builds a record from generic manual input. The kind
// comes from the classifier's stated type; on classifier failure it is
// inferred purely from the amount sign.
func (n *Normalizer) NormalizeManual(ctx context.Context, in ManualInput) *domain.Record {
	rec := n.newRecord(in.Amount, in.Description, in.Date, in.Account, in.Source)

	guess, err := n.classifier.Categorize(ctx, in.Description, in.Amount)
	if err != nil {
		applyFallback(rec, err)
		return rec
	}

	rec.Category = guess.Category
	rec.Tags = guess.Tags
	rec.Kind = guess.Kind
	return rec
}

// NormalizePurchase builds an expense record from a card-present debit.
// The raw amount is treated as unsigned and always stored negative,
// regardless of the sign the caller passed.
func (n *Normalizer) NormalizePurchase(ctx context.Context, amount decimal.Decimal, description string, date civil.Date, account string, source domain.Source) *domain.Record {
	signed := amount.Abs().Neg()
	rec := n.newRecord(signed, description, date, account, source)
	rec.Kind = domain.KindExpense

	guess, err := n.classifier.Categorize(ctx, description, signed)
	if err != nil {
		applyFallback(rec, err)
		rec.Kind = domain.KindExpense // purchase path: kind is never up for debate
		return rec
	}

	rec.Category = guess.Category
	rec.Tags = guess.Tags
	return rec
}

func (n *Normalizer) newRecord(amount decimal.Decimal, description string, date civil.Date, account string, source domain.Source) *domain.Record {
	if !date.IsValid() {
		date = civil.DateOf(n.now())
	}
	if account == "" {
		account = domain.DefaultAccount
	}
	return &domain.Record{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Description: description,
		Source:      source,
		Account:     account,
		Status:      domain.StatusConfirmed,
		Kind:        domain.KindFromAmount(amount),
	}
}

// applyFallback fills classifier fields deterministically after a failure.
// Provider errors and malformed output keep distinct tags so the two
// failure modes stay visible in the ledger.
func applyFallback(rec *domain.Record, err error) {
	rec.Category = "Other"
	if errors.Is(err, classify.ErrProvider) {
		rec.Tags = []string{"error"}
	} else {
		rec.Tags = []string{"unclassified"}
	}
	rec.Kind = domain.KindFromAmount(rec.Amount)
}
