package sheets

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// Sheet column layout for the Transactions tab (A through K):
// date, amount, description, category, tags, source, kind, account,
// status, original_id, record_id. Every accessor below goes through this
// mapping; nothing else indexes cells by position.
const (
	colDate = iota
	colAmount
	colDescription
	colCategory
	colTags
	colSource
	colKind
	colAccount
	colStatus
	colOriginalID
	colRecordID
	columnCount
)

const dateFormat = "2006-01-02"

// recordToRow flattens a record into one sheet row.
func recordToRow(rec *domain.Record) []interface{} {
	return []interface{}{
		rec.Date.String(),
		rec.Amount.StringFixed(2),
		rec.Description,
		rec.Category,
		strings.Join(rec.Tags, ", "),
		string(rec.Source),
		string(rec.Kind),
		rec.Account,
		string(rec.Status),
		rec.OriginalID,
		rec.ID,
	}
}

// rowToRecord parses one sheet row back into a record. Rows a human
// edited into an unparsable state yield an error; callers may skip them.
func rowToRecord(row []interface{}) (*domain.Record, error) {
	if len(row) < colKind+1 {
		return nil, fmt.Errorf("rowToRecord: %d cells, want at least %d", len(row), colKind+1)
	}

	date, err := civil.ParseDate(cell(row, colDate))
	if err != nil {
		return nil, fmt.Errorf("rowToRecord: date: %w", err)
	}
	amount, err := decimal.NewFromString(cell(row, colAmount))
	if err != nil {
		return nil, fmt.Errorf("rowToRecord: amount: %w", err)
	}

	rec := &domain.Record{
		ID:          cell(row, colRecordID),
		Date:        date,
		Amount:      amount,
		Description: cell(row, colDescription),
		Category:    cell(row, colCategory),
		Tags:        splitTags(cell(row, colTags)),
		Source:      domain.Source(cell(row, colSource)),
		Kind:        domain.Kind(cell(row, colKind)),
		Account:     cell(row, colAccount),
		Status:      domain.Status(cell(row, colStatus)),
		OriginalID:  cell(row, colOriginalID),
	}
	if rec.Account == "" {
		rec.Account = domain.DefaultAccount
	}
	if rec.Status == "" {
		rec.Status = domain.StatusConfirmed
	}
	return rec, nil
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, ok := row[idx].(string)
	if !ok {
		return strings.TrimSpace(fmt.Sprint(row[idx]))
	}
	return strings.TrimSpace(s)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
