package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// LedgerRow mirrors the ledger.transactions table schema.
type LedgerRow struct {
	RecordID    string              `bigquery:"record_id"`   // REQUIRED
	EntryDate   civil.Date          `bigquery:"entry_date"`  // REQUIRED
	Amount      *big.Rat            `bigquery:"amount"`      // REQUIRED NUMERIC
	Description string              `bigquery:"description"` // REQUIRED
	Category    string              `bigquery:"category"`
	Tags        []string            `bigquery:"tags"` // REPEATED
	Source      string              `bigquery:"source"`
	Kind        string              `bigquery:"kind"`
	Account     string              `bigquery:"account"`
	Status      string              `bigquery:"status"`
	OriginalID  bigquery.NullString `bigquery:"original_id"`
	CreatedTS   time.Time           `bigquery:"created_ts"`
}

// SettingRow mirrors the ledger.settings table schema.
type SettingRow struct {
	Name  string `bigquery:"name"`
	Value string `bigquery:"value"`
}

// CategoryRow mirrors the ledger.categories table schema.
type CategoryRow struct {
	Name     string              `bigquery:"category_name"`
	Keywords bigquery.NullString `bigquery:"keywords"`
	Budget   bigquery.NullString `bigquery:"budget"`
	Color    bigquery.NullString `bigquery:"color"`
}

func rowFromRecord(rec *domain.Record) *LedgerRow {
	row := &LedgerRow{
		RecordID:    rec.ID,
		EntryDate:   rec.Date,
		Amount:      rec.Amount.Rat(),
		Description: rec.Description,
		Category:    rec.Category,
		Tags:        rec.Tags,
		Source:      string(rec.Source),
		Kind:        string(rec.Kind),
		Account:     rec.Account,
		Status:      string(rec.Status),
		CreatedTS:   time.Now(),
	}
	if rec.OriginalID != "" {
		row.OriginalID = bigquery.NullString{StringVal: rec.OriginalID, Valid: true}
	}
	return row
}

func (r *LedgerRow) toRecord() *domain.Record {
	rec := &domain.Record{
		ID:          r.RecordID,
		Date:        r.EntryDate,
		Amount:      decimal.NewFromBigRat(r.Amount, 2),
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Source:      domain.Source(r.Source),
		Kind:        domain.Kind(r.Kind),
		Account:     r.Account,
		Status:      domain.Status(r.Status),
	}
	if r.OriginalID.Valid {
		rec.OriginalID = r.OriginalID.StringVal
	}
	return rec
}
