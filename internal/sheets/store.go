// Package sheets implements the ledger row store on a Google Sheets
// spreadsheet with Transactions, Categories, and Settings tabs.
package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

const (
	transactionsRange = "Transactions!A:K"
	categoriesRange   = "Categories!A2:D"
	settingsRange     = "Settings!A:B"
)

// Store is a Google Sheets-backed domain.Store. The spreadsheet is
// treated as append-only: rows are added at the bottom and never edited.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// New creates a Store for the given spreadsheet. Credentials come from
// Application Default Credentials unless overridden via opts.
func New(ctx context.Context, spreadsheetID string, log zerolog.Logger, opts ...option.ClientOption) (*Store, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.New: create service: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, log: log}, nil
}

// Append implements domain.Store.
func (s *Store) Append(ctx context.Context, rec *domain.Record) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{recordToRow(rec)},
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, transactionsRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets.Append: %w", err)
	}
	return nil
}

// Recent implements domain.Store. Rows come back in sheet order, which
// is insertion order, oldest first. Rows a human edited into an
// unparsable state are skipped with a warning rather than failing the
// whole read.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	rng := fmt.Sprintf("Transactions!A2:K%d", limit+1)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets.Recent: %w", err)
	}

	recs := make([]*domain.Record, 0, len(resp.Values))
	for i, row := range resp.Values {
		rec, err := rowToRecord(row)
		if err != nil {
			s.log.Warn().Err(err).Int("row", i+2).Msg("skipping unparsable sheet row")
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Setting implements domain.Store.
func (s *Store) Setting(ctx context.Context, name string) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, settingsRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets.Setting: %w", err)
	}
	for _, row := range resp.Values {
		if cell(row, 0) == name {
			return cell(row, 1), nil
		}
	}
	return "", domain.ErrSettingNotFound
}

// Categories implements domain.Store.
func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, categoriesRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets.Categories: %w", err)
	}

	cats := make([]domain.Category, 0, len(resp.Values))
	for _, row := range resp.Values {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		cats = append(cats, domain.Category{
			Name:     name,
			Keywords: cell(row, 1),
			Budget:   cell(row, 2),
			Color:    cell(row, 3),
		})
	}
	return cats, nil
}

var _ domain.Store = (*Store)(nil)
