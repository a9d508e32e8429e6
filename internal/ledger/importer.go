package ledger

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// importConcurrency bounds parallel item processing during batch import.
const importConcurrency = 4

// ImportFailure records one descriptor that could not be imported.
type ImportFailure struct {
	Index int
	Line  classify.Line
	Err   error
}

// ImportResult is the outcome of a batch import. The batch as a whole
// always completes; per-item errors land in Failed.
type ImportResult struct {
	Succeeded []*domain.Record
	Failed    []ImportFailure
}

// ImportBatch feeds each statement line through the normalizer or the
// reconciler depending on its sign: negative means purchase, positive
// means refund. Items are independent and processed with bounded
// parallelism; one item's failure never aborts the batch, and both
// result lists keep input order regardless of execution order.
func (l *Ledger) ImportBatch(ctx context.Context, lines []classify.Line, account string) *ImportResult {
	type slot struct {
		rec *domain.Record
		err error
	}
	slots := make([]slot, len(lines))

	var g errgroup.Group
	g.SetLimit(importConcurrency)

	for i, line := range lines {
		g.Go(func() error {
			rec, err := l.importLine(ctx, line, account)
			slots[i] = slot{rec: rec, err: err}
			return nil // item errors are collected, never propagated
		})
	}
	_ = g.Wait()

	result := &ImportResult{}
	for i, s := range slots {
		if s.err != nil {
			l.log.Warn().
				Err(s.err).
				Int("index", i).
				Str("description", lines[i].Description).
				Msg("statement line failed")
			result.Failed = append(result.Failed, ImportFailure{Index: i, Line: lines[i], Err: s.err})
			continue
		}
		result.Succeeded = append(result.Succeeded, s.rec)
	}

	l.log.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Str("account", account).
		Msg("statement import finished")
	return result
}

func (l *Ledger) importLine(ctx context.Context, line classify.Line, account string) (*domain.Record, error) {
	if strings.TrimSpace(line.Description) == "" {
		return nil, fmt.Errorf("importLine: empty description")
	}
	if line.Amount.IsZero() {
		return nil, fmt.Errorf("importLine: zero amount")
	}

	if line.Amount.IsNegative() {
		return l.AddPurchase(ctx, line.Amount, line.Description, line.Date, account, domain.SourceImport)
	}

	return l.AddRefund(ctx, RefundInput{
		Amount:      line.Amount,
		Description: line.Description,
		Date:        line.Date,
		Account:     account,
		Source:      domain.SourceImport,
	})
}
