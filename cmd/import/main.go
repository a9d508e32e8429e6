package main

import (
	"context"
	"flag"
	"os"

	"github.com/kimdat546/bot-than-giu-cua/internal/bigquery"
	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/config"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/gcs"
	"github.com/kimdat546/bot-than-giu-cua/internal/ledger"
	"github.com/kimdat546/bot-than-giu-cua/internal/logger"
	"github.com/kimdat546/bot-than-giu-cua/internal/sheets"
)

// Imports a bulk statement into the ledger in one shot, without going
// through the webhook service. Reads statement text from a local file
// or a GCS object.
func main() {
	var (
		filePath = flag.String("file", "", "Path to a local statement text file")
		gcsURI   = flag.String("gcs", "", "GCS URI of the statement (gs://bucket/object)")
		account  = flag.String("account", domain.DefaultAccount, "Account the statement belongs to")
	)
	flag.Parse()

	log := logger.New()

	if (*filePath == "") == (*gcsURI == "") {
		log.Fatal().Msg("Exactly one of -file and -gcs is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	var store domain.Store
	switch cfg.LedgerBackend {
	case config.BackendSheets:
		s, err := sheets.New(ctx, cfg.SpreadsheetID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Sheets store")
		}
		store = s
	case config.BackendBigQuery:
		s, err := bigquery.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer s.Close()
		store = s
	default:
		log.Fatal().Str("backend", cfg.LedgerBackend).Msg("Unknown ledger backend")
	}

	classifier, err := classify.NewGemini(ctx, cfg.GeminiModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini classifier")
	}

	var text string
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read statement file")
		}
		text = string(data)
	} else {
		data, err := gcs.Fetch(ctx, *gcsURI)
		if err != nil {
			log.Fatal().Err(err).Str("gcs_uri", *gcsURI).Msg("Failed to fetch statement from GCS")
		}
		text = string(data)
	}

	lines, err := classifier.ParseStatement(ctx, text)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse statement")
	}
	if len(lines) == 0 {
		log.Warn().Msg("No transactions found in statement")
		return
	}

	book := ledger.New(store, classifier, log)

	result := book.ImportBatch(ctx, lines, *account)

	for _, failure := range result.Failed {
		log.Warn().
			Err(failure.Err).
			Int("index", failure.Index).
			Str("description", failure.Line.Description).
			Msg("Line rejected")
	}

	log.Info().
		Int("imported", len(result.Succeeded)).
		Int("rejected", len(result.Failed)).
		Str("account", *account).
		Msg("Import finished")
}
