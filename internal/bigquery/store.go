// Package bigquery implements the ledger row store on a BigQuery
// dataset, for setups that outgrow the spreadsheet backend.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

const (
	transactionsTable = "transactions"
	settingsTable     = "settings"
	categoriesTable   = "categories"
)

// Store is a BigQuery-backed domain.Store. It holds a shared client to
// avoid creating a new connection for each operation.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// NewStore creates a Store for the given project and dataset.
func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Append implements domain.Store via the streaming inserter.
func (s *Store) Append(ctx context.Context, rec *domain.Record) error {
	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rowFromRecord(rec)); err != nil {
		return fmt.Errorf("Append: inserting row: %w", err)
	}
	return nil
}

// Recent implements domain.Store: the last `limit` rows by insertion
// time, returned oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT *
		FROM (
			SELECT
				record_id, entry_date, amount, description, category,
				tags, source, kind, account, status, original_id, created_ts
			FROM %s.%s
			ORDER BY created_ts DESC
			LIMIT @row_limit
		)
		ORDER BY created_ts
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "row_limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Recent: query read: %w", err)
	}

	var recs []*domain.Record
	for {
		var r LedgerRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Recent: iter next: %w", err)
		}
		recs = append(recs, r.toRecord())
	}
	return recs, nil
}

// Setting implements domain.Store.
func (s *Store) Setting(ctx context.Context, name string) (string, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT name, value
		FROM %s.%s
		WHERE name = @name
		LIMIT 1
	`, s.dataset, settingsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "name", Value: name},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("Setting: query read: %w", err)
	}

	var row SettingRow
	if err := it.Next(&row); err == iterator.Done {
		return "", domain.ErrSettingNotFound
	} else if err != nil {
		return "", fmt.Errorf("Setting: iter next: %w", err)
	}
	return row.Value, nil
}

// Categories implements domain.Store.
func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT category_name, keywords, budget, color
		FROM %s.%s
		ORDER BY category_name
	`, s.dataset, categoriesTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: query read: %w", err)
	}

	var cats []domain.Category
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Categories: iter next: %w", err)
		}
		cats = append(cats, domain.Category{
			Name:     r.Name,
			Keywords: r.Keywords.StringVal,
			Budget:   r.Budget.StringVal,
			Color:    r.Color.StringVal,
		})
	}
	return cats, nil
}

var _ domain.Store = (*Store)(nil)
