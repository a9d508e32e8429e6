package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/ledger"
)

const startText = `Welcome to your Personal Finance Bot!

Commands:
/add [amount] [description] - Add transaction
/balance - Current balance
/report - Monthly report
/categories - View categories
/refund [amount] [description] - Process refund
/ccreport - Credit card summary

You can also just type: "25.50 Coffee" to add quickly!`

const helpText = `Personal Finance Bot Help

Adding transactions:
/add 25.50 Coffee at Starbucks
25.50 Coffee (quick format)
-100 Grocery shopping (negative for expenses)

Reports:
/balance - Current month balance
/report - Detailed monthly report
/ccreport - Credit card summary
/categories - View all categories

Transactions are categorized automatically; bank emails are parsed when
forwarded to the email webhook.`

// topCategories is how many breakdown lines reports show.
const topCategories = 5

func formatRecordAdded(rec *domain.Record) string {
	var b strings.Builder
	b.WriteString("Transaction added!\n")
	fmt.Fprintf(&b, "Amount: $%s\n", rec.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	return b.String()
}

func formatRefundAdded(rec *domain.Record) string {
	var b strings.Builder
	b.WriteString("Refund processed!\n")
	fmt.Fprintf(&b, "Amount: +$%s\n", rec.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	if rec.OriginalID != "" {
		b.WriteString("Linked to the original purchase.\n")
	} else {
		b.WriteString("No matching purchase found.\n")
	}
	return b.String()
}

func formatBalance(now time.Time, balance decimal.Decimal) string {
	return fmt.Sprintf("Monthly Balance (%s)\nTotal: $%s",
		now.Format("January 2006"), balance.StringFixed(2))
}

func formatReport(now time.Time, s ledger.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly Report (%s)\n\n", now.Format("January 2006"))
	fmt.Fprintf(&b, "Income: $%s\n", s.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Expenses: $%s\n", s.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "Net: $%s\n", s.Net.StringFixed(2))
	writeBreakdown(&b, "Top Categories:", s.Categories)
	return b.String()
}

func formatCardReport(now time.Time, s ledger.CardSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Credit Card Report (%s)\n\n", now.Format("January 2006"))
	fmt.Fprintf(&b, "Total Spent: $%s\n", s.TotalSpent.StringFixed(2))
	fmt.Fprintf(&b, "Total Refunds: $%s\n", s.TotalRefunds.StringFixed(2))
	fmt.Fprintf(&b, "Net Spent: $%s\n", s.NetSpent.StringFixed(2))
	fmt.Fprintf(&b, "Transactions: %d\n", s.Count)
	writeBreakdown(&b, "Category Breakdown:", s.Categories)
	return b.String()
}

func writeBreakdown(b *strings.Builder, header string, cats []ledger.CategoryTotal) {
	if len(cats) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n")
	for i, ct := range cats {
		if i == topCategories {
			break
		}
		fmt.Fprintf(b, "- %s: $%s\n", ct.Category, ct.Total.StringFixed(2))
	}
}

func formatCategories(cats []domain.Category) string {
	var b strings.Builder
	b.WriteString("Categories:\n\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "- %s\n", c.Name)
	}
	return b.String()
}

func formatEmailDetected(rec *domain.Record, from string) string {
	var b strings.Builder
	b.WriteString("Bank Transaction Detected!\n")
	fmt.Fprintf(&b, "Amount: $%s\n", rec.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	fmt.Fprintf(&b, "Source: %s\n", from)
	return b.String()
}

func formatImportResult(imported, rejected int, account string) string {
	return fmt.Sprintf("Statement import finished for %s.\nImported: %d\nRejected: %d",
		account, imported, rejected)
}
