package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kimdat546/bot-than-giu-cua/internal/api/middleware"
	"github.com/kimdat546/bot-than-giu-cua/internal/bot"
	"github.com/kimdat546/bot-than-giu-cua/internal/jobs"
	"github.com/rs/zerolog"
)

// WebhookHandler handles inbound webhook endpoints.
type WebhookHandler struct {
	service   *bot.Service
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *bot.Service, publisher jobs.Publisher, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:   service,
		publisher: publisher,
		log:       log,
	}
}

// TelegramUpdate handles POST /webhook/telegram
func (h *WebhookHandler) TelegramUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var update bot.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Telegram retries on non-200, so handler failures are logged and
	// acknowledged rather than surfaced.
	if err := h.service.HandleUpdate(ctx, &update); err != nil {
		h.log.Error().Err(err).Int64("update_id", update.UpdateID).Msg("Failed to handle update")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Email handles POST /webhook/email
func (h *WebhookHandler) Email(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
		From    string `json:"from"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Body == "" && req.Subject == "" {
		middleware.WriteError(w, http.StatusBadRequest, "subject or body is required")
		return
	}

	if err := h.service.HandleEmail(ctx, req.Subject, req.Body, req.From); err != nil {
		h.log.Error().Err(err).Msg("Failed to handle email webhook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process email")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// ImportStatement handles POST /webhook/statement
func (h *WebhookHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Account string `json:"account"`
		Text    string `json:"text"`
		GCSURI  string `json:"gcs_uri"`
		ChatID  int64  `json:"chat_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" && req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text or gcs_uri is required")
		return
	}
	if req.Text != "" && req.GCSURI != "" {
		middleware.WriteError(w, http.StatusBadRequest, "text and gcs_uri are mutually exclusive")
		return
	}

	job := &jobs.ImportStatementJob{
		Account: req.Account,
		Text:    req.Text,
		GCSURI:  req.GCSURI,
		ChatID:  req.ChatID,
	}

	if err := h.publisher.PublishImport(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("account", job.Account).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.Store
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.Store, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
