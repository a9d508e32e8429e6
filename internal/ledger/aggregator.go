package ledger

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// CategoryTotal is one line of a category breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Summary aggregates a window of rows with balance semantics:
// Net = TotalIncome - TotalExpense.
type Summary struct {
	TotalExpense decimal.Decimal // positive magnitude
	TotalIncome  decimal.Decimal
	Net          decimal.Decimal
	Categories   []CategoryTotal // expenses only, sorted by magnitude desc
	Count        int
}

// CardSummary aggregates a card-scoped window with spend semantics:
// NetSpent = TotalSpent - TotalRefunds. The sign convention differs from
// Summary on purpose; "balance" and "card net spend" are different
// mental models.
type CardSummary struct {
	Account      string
	Start, End   civil.Date
	TotalSpent   decimal.Decimal // positive magnitude
	TotalRefunds decimal.Decimal
	NetSpent     decimal.Decimal
	Categories   []CategoryTotal
	Count        int
}

// MonthlyReport aggregates all rows falling in the given calendar month.
// Pure function: same rows in, same summary out.
func MonthlyReport(rows []*domain.Record, year int, month time.Month) Summary {
	var s Summary
	bd := newBreakdown()

	for _, row := range rows {
		if row.Date.Year != year || row.Date.Month != month {
			continue
		}
		s.Count++
		if row.Amount.IsNegative() {
			s.TotalExpense = s.TotalExpense.Add(row.Amount.Abs())
			bd.add(row.Category, row.Amount.Abs())
		} else {
			s.TotalIncome = s.TotalIncome.Add(row.Amount)
		}
	}

	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	s.Categories = bd.sorted()
	return s
}

// MonthlyBalance sums all signed amounts in the given calendar month.
func MonthlyBalance(rows []*domain.Record, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if row.Date.Year == year && row.Date.Month == month {
			total = total.Add(row.Amount)
		}
	}
	return total
}

// SummarizeCard aggregates rows for one account inside an inclusive
// [start, end] date range. Non-negative amounts count as refunds here.
func SummarizeCard(rows []*domain.Record, account string, start, end civil.Date) CardSummary {
	s := CardSummary{Account: account, Start: start, End: end}
	bd := newBreakdown()

	for _, row := range rows {
		if row.Account != account {
			continue
		}
		if row.Date.Before(start) || row.Date.After(end) {
			continue
		}
		s.Count++
		if row.Amount.IsNegative() {
			s.TotalSpent = s.TotalSpent.Add(row.Amount.Abs())
			bd.add(row.Category, row.Amount.Abs())
		} else {
			s.TotalRefunds = s.TotalRefunds.Add(row.Amount)
		}
	}

	s.NetSpent = s.TotalSpent.Sub(s.TotalRefunds)
	s.Categories = bd.sorted()
	return s
}

// breakdown accumulates per-category totals while remembering first
// encounter order, so equal totals keep a stable display order.
type breakdown struct {
	totals map[string]decimal.Decimal
	order  []string
}

func newBreakdown() *breakdown {
	return &breakdown{totals: make(map[string]decimal.Decimal)}
}

func (b *breakdown) add(category string, amount decimal.Decimal) {
	if category == "" {
		category = "Other"
	}
	if _, seen := b.totals[category]; !seen {
		b.order = append(b.order, category)
	}
	b.totals[category] = b.totals[category].Add(amount)
}

func (b *breakdown) sorted() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(b.order))
	for _, cat := range b.order {
		out = append(out, CategoryTotal{Category: cat, Total: b.totals[cat]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
