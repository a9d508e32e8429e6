package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

const (
	// refundWindowDays is the trailing search window: a purchase older
	// than this cannot be the original for an incoming refund.
	refundWindowDays = 90

	// fuzzySearchLimit bounds how much recent history a fuzzy search scans.
	fuzzySearchLimit = 100

	// idLookupLimit bounds how much history an exact ID lookup scans.
	idLookupLimit = 1000
)

// Reconciler links a refund to its originating purchase. It reads recent
// ledger history, picks the most plausible original, and constructs the
// refund record; it does not persist.
type Reconciler struct {
	store domain.Store
	now   func() time.Time
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store domain.Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// RefundInput describes an incoming refund signal.
type RefundInput struct {
	Amount      decimal.Decimal // refund magnitude; sign is ignored
	Description string
	Date        civil.Date // zero value means "today"
	Account     string
	Source      domain.Source
	OriginalID  string // optional exact back-reference
}

// Reconcile builds a refund record. A store failure propagates as an
// error; finding no original is not an error, it is the documented
// fallback (category "Refund", no link).
func (r *Reconciler) Reconcile(ctx context.Context, in RefundInput) (*domain.Record, error) {
	date := in.Date
	if !date.IsValid() {
		date = civil.DateOf(r.now())
	}
	account := in.Account
	if account == "" {
		account = domain.DefaultAccount
	}
	amount := in.Amount.Abs()

	var original *domain.Record
	var err error

	if in.OriginalID != "" {
		original, err = r.findByID(ctx, in.OriginalID)
		if err != nil {
			return nil, fmt.Errorf("Reconcile: %w", err)
		}
	}
	if original == nil {
		// Either no identifier was supplied or the lookup missed; fall
		// through to the fuzzy search rather than failing.
		original, err = r.findOriginal(ctx, in.Description, amount, date)
		if err != nil {
			return nil, fmt.Errorf("Reconcile: %w", err)
		}
	}

	rec := &domain.Record{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Description: "REFUND: " + in.Description,
		Source:      in.Source,
		Kind:        domain.KindRefund,
		Account:     account,
		Status:      domain.StatusConfirmed,
	}

	if original != nil {
		rec.Category = original.Category
		rec.Tags = append([]string(nil), original.Tags...)
		rec.OriginalID = original.ID
	} else {
		rec.Category = "Refund"
		rec.Tags = []string{"refund"}
	}

	return rec, nil
}

// findByID scans recent history for an exact record ID.
func (r *Reconciler) findByID(ctx context.Context, id string) (*domain.Record, error) {
	rows, err := r.store.Recent(ctx, idLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("findByID: %w", err)
	}
	for _, row := range rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, nil
}

// findOriginal scans recent history for the first purchase that matches
// the refund by window, amount tolerance, and description substring.
// The FIRST qualifying candidate in store order wins; no further ranking
// by date proximity or similarity strength is applied.
func (r *Reconciler) findOriginal(ctx context.Context, description string, amount decimal.Decimal, refundDate civil.Date) (*domain.Record, error) {
	rows, err := r.store.Recent(ctx, fuzzySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("findOriginal: %w", err)
	}

	cutoff := refundDate.AddDays(-refundWindowDays)
	search := strings.ToLower(description)

	for _, row := range rows {
		if !row.Date.After(cutoff) {
			continue // 91+ days old, outside the trailing window
		}
		if row.Date.After(refundDate) {
			continue // a refund cannot precede its purchase
		}
		if !row.Amount.IsNegative() {
			continue // only an outgoing charge can be the original
		}
		if !domain.AmountsMatch(row.Amount, amount) {
			continue
		}
		desc := strings.ToLower(row.Description)
		if !strings.Contains(desc, search) && !strings.Contains(search, desc) {
			continue
		}
		return row, nil
	}

	return nil, nil
}
