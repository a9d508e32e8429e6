package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind is the semantic type of a ledger record.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
	KindRefund  Kind = "refund"
)

// ParseKind maps free-form classifier output onto a known Kind.
// Unknown values fall back to a sign-derived kind.
func ParseKind(s string, amount decimal.Decimal) Kind {
	switch Kind(s) {
	case KindExpense, KindIncome, KindRefund:
		return Kind(s)
	}
	return KindFromAmount(amount)
}

// KindFromAmount derives a kind purely from the amount sign:
// negative means money out, everything else is income.
func KindFromAmount(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Source is the origin of a ledger record.
type Source string

const (
	SourceManual     Source = "manual"
	SourceCreditCard Source = "credit_card"
	SourceEmail      Source = "email"
	SourceImport     Source = "import"
)

// Status of a ledger record. Only confirmed records are modeled;
// corrections are new compensating records, never edits.
type Status string

const StatusConfirmed Status = "confirmed"

// DefaultAccount is used when the caller does not name an account.
const DefaultAccount = "default"

// amountTolerance is the epsilon for amount equality at currency scale.
var amountTolerance = decimal.NewFromFloat(0.01)

// Record is one persisted financial event. A record is created exactly
// once, appended to the ledger store, and never mutated afterwards.
type Record struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"` // negative = money out, positive = money in
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
	Source      Source          `json:"source"`
	Kind        Kind            `json:"kind"`
	Account     string          `json:"account"`
	Status      Status          `json:"status"`

	// OriginalID points at the purchase this record refunds.
	// Empty when the record is not a refund or no match was found.
	OriginalID string `json:"original_id,omitempty"`
}

// AmountsMatch reports whether two magnitudes agree within the
// currency-scale tolerance of 0.01.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Abs().Sub(b.Abs()).Abs().LessThan(amountTolerance)
}
