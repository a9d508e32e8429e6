package sheets

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

func TestRecordRowRoundTrip(t *testing.T) {
	rec := &domain.Record{
		ID:          "550e8400-e29b-41d4-a716-446655440000",
		Date:        civil.Date{Year: 2024, Month: time.March, Day: 15},
		Amount:      decimal.NewFromFloat(-25.50),
		Description: "Coffee at Starbucks",
		Category:    "Food",
		Tags:        []string{"coffee", "morning"},
		Source:      domain.SourceManual,
		Kind:        domain.KindExpense,
		Account:     "visa",
		Status:      domain.StatusConfirmed,
		OriginalID:  "",
	}

	row := recordToRow(rec)
	if len(row) != columnCount {
		t.Fatalf("row has %d cells, want %d", len(row), columnCount)
	}

	got, err := rowToRecord(row)
	if err != nil {
		t.Fatalf("rowToRecord failed: %v", err)
	}

	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if got.Date != rec.Date {
		t.Errorf("Date = %v, want %v", got.Date, rec.Date)
	}
	if !got.Amount.Equal(rec.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, rec.Amount)
	}
	if got.Description != rec.Description {
		t.Errorf("Description = %q, want %q", got.Description, rec.Description)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "coffee" || got.Tags[1] != "morning" {
		t.Errorf("Tags = %v, want [coffee morning]", got.Tags)
	}
	if got.Kind != domain.KindExpense || got.Source != domain.SourceManual {
		t.Errorf("Kind/Source = %q/%q", got.Kind, got.Source)
	}
	if got.Account != "visa" {
		t.Errorf("Account = %q, want visa", got.Account)
	}
}

func TestRowToRecord_Defaults(t *testing.T) {
	row := []interface{}{
		"2024-03-15", "-10.00", "Lunch", "Food", "", "manual", "expense",
	}

	got, err := rowToRecord(row)
	if err != nil {
		t.Fatalf("rowToRecord failed: %v", err)
	}

	if got.Account != domain.DefaultAccount {
		t.Errorf("Account = %q, want default", got.Account)
	}
	if got.Status != domain.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed", got.Status)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
}

func TestRowToRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
	}{
		{"too short", []interface{}{"2024-03-15", "-10.00"}},
		{"bad date", []interface{}{"March 15th", "-10.00", "Lunch", "Food", "", "manual", "expense"}},
		{"bad amount", []interface{}{"2024-03-15", "ten dollars", "Lunch", "Food", "", "manual", "expense"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rowToRecord(tt.row); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"coffee", []string{"coffee"}},
		{"coffee, morning", []string{"coffee", "morning"}},
		{" coffee , , morning ", []string{"coffee", "morning"}},
	}

	for _, tt := range tests {
		got := splitTags(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitTags(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
