// Package config loads service configuration from the environment,
// with optional .env support for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend names for the ledger store.
const (
	BackendSheets   = "sheets"
	BackendBigQuery = "bigquery"
)

// Config carries everything the commands need to wire the service.
type Config struct {
	Port string

	// Ledger store backend: "sheets" or "bigquery".
	LedgerBackend string

	// Sheets backend.
	SpreadsheetID string

	// BigQuery backend.
	BigQueryProject string
	BigQueryDataset string

	// Gemini model; the API key is read by the genai client itself.
	GeminiModel string

	// Telegram delivery.
	TelegramToken string

	// Notion sync.
	NotionToken string
	NotionDBID  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; a missing file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "3000"),
		LedgerBackend:   getenv("LEDGER_BACKEND", BackendSheets),
		SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_ID"),
		BigQueryProject: os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset: getenv("BIGQUERY_DATASET", "ledger"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		NotionToken:     os.Getenv("NOTION_TOKEN"),
		NotionDBID:      os.Getenv("NOTION_DB_ID"),
	}

	switch cfg.LedgerBackend {
	case BackendSheets:
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("config.Load: GOOGLE_SHEETS_ID is required for the sheets backend")
		}
	case BackendBigQuery:
		if cfg.BigQueryProject == "" {
			return nil, fmt.Errorf("config.Load: BIGQUERY_PROJECT is required for the bigquery backend")
		}
	default:
		return nil, fmt.Errorf("config.Load: unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
