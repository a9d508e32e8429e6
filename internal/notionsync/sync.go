package notionsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/logger"
)

const (
	// fetchLimit caps how many ledger rows one sync run considers.
	fetchLimit = 5000

	// BatchSize defines the number of records to process in a single batch.
	BatchSize = 100
)

// SyncRecords syncs ledger records to Notion within the specified date range.
// Existing Notion pages are matched on the "Record ID" property, so re-running
// the sync is idempotent: records already present are skipped, missing ones
// are created. Nothing is deleted from Notion.
func SyncRecords(ctx context.Context, store domain.Store, notionClient NotionService, notionDBID string, startDate, endDate civil.Date, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("start_date", startDate.String()).
		Str("end_date", endDate.String()).
		Bool("dry_run", dryRun).
		Msg("Starting ledger sync to Notion")

	rows, err := store.Recent(ctx, fetchLimit)
	if err != nil {
		return fmt.Errorf("SyncRecords: fetch records: %w", err)
	}

	// Keep only rows inside the requested date range.
	var records []*domain.Record
	for _, row := range rows {
		if row.Date.Before(startDate) || row.Date.After(endDate) {
			continue
		}
		records = append(records, row)
	}

	log.Info().Int("record_count", len(records)).Msg("Retrieved ledger records")

	log.Info().Msg("Querying existing pages from Notion")
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncRecords: query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existingRecordIDs := make(map[string]bool)
	for _, page := range notionPages {
		recID := extractRecordID(page)
		if recID != "" {
			existingRecordIDs[recID] = true
		}
	}

	var created, skipped int
	for i := 0; i < len(records); i += BatchSize {
		end := i + BatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[i:end]
		log.Info().
			Int("batch_start", i).
			Int("batch_end", end).
			Int("batch_size", len(batch)).
			Msg("Processing batch")

		for _, rec := range batch {
			if existingRecordIDs[rec.ID] {
				skipped++
				continue
			}

			if dryRun {
				log.Info().
					Str("record_id", rec.ID).
					Msg("[DRY RUN] Would create new Notion page")
				created++
				continue
			}

			props := RecordToNotionProperties(rec)

			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("record_id", rec.ID).
					Msg("Failed to create Notion page")
				// Continue processing other records
				continue
			}
			log.Info().
				Str("record_id", rec.ID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			created++
		}
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(records)).
		Msg("Ledger sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
