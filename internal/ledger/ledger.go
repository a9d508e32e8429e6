package ledger

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// reportFetchLimit bounds how much history reporting operations read.
// The core holds no caches; every operation re-reads what it needs.
const reportFetchLimit = 1000

// Ledger wires the normalizer, reconciler, and aggregation functions to
// the row store. It is the single entry point adapters talk to.
type Ledger struct {
	store      domain.Store
	normalizer *Normalizer
	reconciler *Reconciler
	log        zerolog.Logger
}

// New creates a Ledger with explicit dependencies. No globals.
func New(store domain.Store, classifier classify.Classifier, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:      store,
		normalizer: NewNormalizer(classifier),
		reconciler: NewReconciler(store),
		log:        log,
	}
}

// AddManual normalizes and persists a caller-signed transaction.
func (l *Ledger) AddManual(ctx context.Context, in ManualInput) (*domain.Record, error) {
	rec := l.normalizer.NormalizeManual(ctx, in)
	if err := l.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("AddManual: append: %w", err)
	}
	l.log.Info().
		Str("record_id", rec.ID).
		Str("category", rec.Category).
		Str("amount", rec.Amount.StringFixed(2)).
		Msg("transaction recorded")
	return rec, nil
}

// AddPurchase normalizes and persists a card purchase. The amount is
// treated as unsigned and stored negative.
func (l *Ledger) AddPurchase(ctx context.Context, amount decimal.Decimal, description string, date civil.Date, account string, source domain.Source) (*domain.Record, error) {
	rec := l.normalizer.NormalizePurchase(ctx, amount, description, date, account, source)
	if err := l.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("AddPurchase: append: %w", err)
	}
	l.log.Info().
		Str("record_id", rec.ID).
		Str("category", rec.Category).
		Str("amount", rec.Amount.StringFixed(2)).
		Msg("purchase recorded")
	return rec, nil
}

// AddRefund reconciles a refund against recent history and persists it.
func (l *Ledger) AddRefund(ctx context.Context, in RefundInput) (*domain.Record, error) {
	rec, err := l.reconciler.Reconcile(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("AddRefund: %w", err)
	}
	if err := l.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("AddRefund: append: %w", err)
	}
	l.log.Info().
		Str("record_id", rec.ID).
		Str("original_id", rec.OriginalID).
		Str("amount", rec.Amount.StringFixed(2)).
		Msg("refund recorded")
	return rec, nil
}

// Report aggregates the given calendar month with balance semantics.
func (l *Ledger) Report(ctx context.Context, year int, month time.Month) (Summary, error) {
	rows, err := l.store.Recent(ctx, reportFetchLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("Report: %w", err)
	}
	return MonthlyReport(rows, year, month), nil
}

// Balance sums the given calendar month's signed amounts.
func (l *Ledger) Balance(ctx context.Context, year int, month time.Month) (decimal.Decimal, error) {
	rows, err := l.store.Recent(ctx, reportFetchLimit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Balance: %w", err)
	}
	return MonthlyBalance(rows, year, month), nil
}

// CardReport aggregates one account over an inclusive date range with
// card spend semantics.
func (l *Ledger) CardReport(ctx context.Context, account string, start, end civil.Date) (CardSummary, error) {
	rows, err := l.store.Recent(ctx, reportFetchLimit)
	if err != nil {
		return CardSummary{}, fmt.Errorf("CardReport: %w", err)
	}
	return SummarizeCard(rows, account, start, end), nil
}

// Categories lists the user-extensible taxonomy from the store.
func (l *Ledger) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: %w", err)
	}
	return cats, nil
}

// Setting resolves a named setting from the store.
// domain.ErrSettingNotFound means the setting is absent.
func (l *Ledger) Setting(ctx context.Context, name string) (string, error) {
	return l.store.Setting(ctx, name)
}
