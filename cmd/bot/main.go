package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kimdat546/bot-than-giu-cua/internal/api/handlers"
	"github.com/kimdat546/bot-than-giu-cua/internal/api/middleware"
	"github.com/kimdat546/bot-than-giu-cua/internal/bigquery"
	"github.com/kimdat546/bot-than-giu-cua/internal/bot"
	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/config"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/gcs"
	"github.com/kimdat546/bot-than-giu-cua/internal/jobs"
	"github.com/kimdat546/bot-than-giu-cua/internal/jobs/inmemory"
	"github.com/kimdat546/bot-than-giu-cua/internal/ledger"
	"github.com/kimdat546/bot-than-giu-cua/internal/logger"
	"github.com/kimdat546/bot-than-giu-cua/internal/sheets"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	// Ledger backend
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

	book := ledger.New(store, classifier, log)

	sender := bot.NewTelegramSender(cfg.TelegramToken)
	service := bot.NewService(book, classifier, sender, log)

	// Job infrastructure for statement imports
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ImportStatementJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("account", job.Account).
			Msg("Processing import job")

		text := job.Text
		if job.GCSURI != "" {
			data, err := gcs.Fetch(ctx, job.GCSURI)
			if err != nil {
				return fmt.Errorf("fetch statement: %w", err)
			}
			text = string(data)
		}

		lines, err := classifier.ParseStatement(ctx, text)
		if err != nil {
			return fmt.Errorf("parse statement: %w", err)
		}

		result := book.ImportBatch(ctx, lines, job.Account)
		job.Imported = len(result.Succeeded)
		job.Rejected = len(result.Failed)

		log.Info().
			Str("job_id", job.JobID).
			Int("imported", job.Imported).
			Int("rejected", job.Rejected).
			Msg("Import job completed")

		if job.ChatID != 0 {
			if err := service.NotifyImportResult(ctx, job.ChatID, job.Imported, job.Rejected, job.Account); err != nil {
				log.Warn().Err(err).Int64("chat_id", job.ChatID).Msg("Failed to notify import result")
			}
		}

		return nil
	}

	go func() {
		log.Info().Msg("Starting import worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Import worker stopped with error")
		}
	}()

	webhookHandler := handlers.NewWebhookHandler(service, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/webhook/telegram", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.TelegramUpdate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/webhook/email", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.Email(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/webhook/statement", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.ImportStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(mux),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.LedgerBackend).Msg("Starting bot server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
