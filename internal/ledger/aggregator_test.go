package ledger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

func row(amount float64, category string, date civil.Date) *domain.Record {
	return &domain.Record{
		ID:       "id",
		Date:     date,
		Amount:   decimal.NewFromFloat(amount),
		Category: category,
		Account:  domain.DefaultAccount,
	}
}

func march(day int) civil.Date {
	return civil.Date{Year: 2024, Month: time.March, Day: day}
}

func TestMonthlyReport(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "Food", march(1)),
		row(-20, "Transport", march(2)),
		row(5, "Refund", march(3)),
		row(-99, "Food", civil.Date{Year: 2024, Month: time.February, Day: 28}), // other month
	}

	s := MonthlyReport(rows, 2024, time.March)

	if !s.TotalExpense.Equal(decimal.NewFromInt(30)) {
		t.Errorf("TotalExpense = %s, want 30", s.TotalExpense)
	}
	if !s.TotalIncome.Equal(decimal.NewFromInt(5)) {
		t.Errorf("TotalIncome = %s, want 5", s.TotalIncome)
	}
	if !s.Net.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("Net = %s, want -25", s.Net)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}

	// Breakdown covers expenses only, sorted by magnitude descending.
	if len(s.Categories) != 2 {
		t.Fatalf("Categories = %v, want 2 entries", s.Categories)
	}
	if s.Categories[0].Category != "Transport" || !s.Categories[0].Total.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Categories[0] = %+v, want Transport 20", s.Categories[0])
	}
	if s.Categories[1].Category != "Food" || !s.Categories[1].Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Categories[1] = %+v, want Food 10", s.Categories[1])
	}
}

func TestMonthlyReport_Idempotent(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "Food", march(1)),
		row(5, "Refund", march(3)),
	}

	first := MonthlyReport(rows, 2024, time.March)
	second := MonthlyReport(rows, 2024, time.March)

	if !first.Net.Equal(second.Net) || first.Count != second.Count {
		t.Errorf("repeated aggregation differs: %+v vs %+v", first, second)
	}
}

func TestMonthlyReport_EqualTotalsKeepEncounterOrder(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "Food", march(1)),
		row(-10, "Transport", march(2)),
	}

	s := MonthlyReport(rows, 2024, time.March)

	if len(s.Categories) != 2 {
		t.Fatalf("Categories = %v, want 2 entries", s.Categories)
	}
	if s.Categories[0].Category != "Food" || s.Categories[1].Category != "Transport" {
		t.Errorf("equal totals reordered: %+v", s.Categories)
	}
}

func TestMonthlyReport_EmptyCategoryBucketsAsOther(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "", march(1)),
	}

	s := MonthlyReport(rows, 2024, time.March)

	if len(s.Categories) != 1 || s.Categories[0].Category != "Other" {
		t.Errorf("Categories = %+v, want single Other entry", s.Categories)
	}
}

func TestMonthlyBalance(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "Food", march(1)),
		row(-20, "Transport", march(2)),
		row(5, "Refund", march(3)),
		row(1000, "Salary", civil.Date{Year: 2024, Month: time.April, Day: 1}),
	}

	got := MonthlyBalance(rows, 2024, time.March)
	if !got.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("MonthlyBalance = %s, want -25", got)
	}
}

func TestSummarizeCard(t *testing.T) {
	visa := func(amount float64, category string, date civil.Date) *domain.Record {
		r := row(amount, category, date)
		r.Account = "visa"
		return r
	}

	rows := []*domain.Record{
		visa(-10, "Food", march(1)),
		visa(-20, "Transport", march(2)),
		visa(5, "Food", march(3)), // refund
		visa(-50, "Food", march(31)),
		row(-99, "Food", march(4)),                                         // different account
		visa(-99, "Food", civil.Date{Year: 2024, Month: time.April, Day: 1}), // out of range
	}

	s := SummarizeCard(rows, "visa", march(1), march(31))

	if !s.TotalSpent.Equal(decimal.NewFromInt(80)) {
		t.Errorf("TotalSpent = %s, want 80", s.TotalSpent)
	}
	if !s.TotalRefunds.Equal(decimal.NewFromInt(5)) {
		t.Errorf("TotalRefunds = %s, want 5", s.TotalRefunds)
	}
	if !s.NetSpent.Equal(decimal.NewFromInt(75)) {
		t.Errorf("NetSpent = %s, want 75", s.NetSpent)
	}
	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.Account != "visa" {
		t.Errorf("Account = %q, want visa", s.Account)
	}
}

func TestSummarizeCard_InclusiveBounds(t *testing.T) {
	rows := []*domain.Record{
		row(-10, "Food", march(1)),
		row(-20, "Food", march(31)),
	}

	s := SummarizeCard(rows, domain.DefaultAccount, march(1), march(31))

	if s.Count != 2 {
		t.Errorf("Count = %d, want 2 (range is inclusive)", s.Count)
	}
}
