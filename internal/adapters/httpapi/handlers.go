package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

type generateResponseRequest struct {
	CustomContext string `json:"custom_context"`
}

type sendResponseRequest struct {
	CustomResponse string `json:"custom_response"`
}

type updateEmailRequest struct {
	DraftResponse *string `json:"draft_response"`
	ResponseSent  *bool   `json:"response_sent"`
	Processed     *bool   `json:"processed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	filter := core.ListFilter{
		Priority:  r.URL.Query().Get("priority_filter"),
		Sentiment: r.URL.Query().Get("sentiment_filter"),
		Offset:    queryInt(r, "skip", 0),
		Limit:     queryInt(r, "limit", 100),
	}
	if v := r.URL.Query().Get("processed_filter"); v != "" {
		processed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid processed_filter")
			return
		}
		filter.Processed = &processed
	}

	records, err := s.repo.List(r.Context(), filter)
	if err != nil {
		s.serverError(w, "failed to list emails", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUrgentEmails(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.List(r.Context(), core.ListFilter{
		Priority: core.PriorityUrgent,
		Limit:    queryInt(r, "limit", 100),
	})
	if err != nil {
		s.serverError(w, "failed to list urgent emails", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUnprocessedEmails(w http.ResponseWriter, r *http.Request) {
	processed := false
	records, err := s.repo.List(r.Context(), core.ListFilter{
		Processed: &processed,
		Limit:     queryInt(r, "limit", 100),
	})
	if err != nil {
		s.serverError(w, "failed to list unprocessed emails", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupEmail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleFetch triggers a mailbox fetch in the background and returns
// immediately.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	daysBack := queryInt(r, "days_back", 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.service.FetchAndIngest(ctx, daysBack); err != nil {
			s.logger.Error("Background mailbox fetch failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Email fetching started in background",
	})
}

func (s *Server) handleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.emailID(w, r)
	if !ok {
		return
	}

	var req generateResponseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	rec, err := s.service.GenerateDraft(r.Context(), id, req.CustomContext)
	if err != nil {
		if errors.Is(err, core.ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.serverError(w, "failed to generate response", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email_id":       rec.ID,
		"draft_response": rec.DraftResponse,
		"message":        "Response generated successfully",
	})
}

func (s *Server) handleSendResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.emailID(w, r)
	if !ok {
		return
	}

	var req sendResponseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := s.service.SendReply(r.Context(), id, req.CustomResponse)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrEmailNotFound):
		writeError(w, http.StatusNotFound, "Email not found")
		return
	case errors.Is(err, core.ErrResponseAlreadySent):
		writeError(w, http.StatusBadRequest, "Response already sent for this email")
		return
	case errors.Is(err, core.ErrNoResponseDraft):
		writeError(w, http.StatusBadRequest, "No response available to send")
		return
	default:
		s.serverError(w, "failed to send response", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email_id": id,
		"message":  "Response sent successfully",
	})
}

func (s *Server) handleMarkProcessed(w http.ResponseWriter, r *http.Request) {
	id, ok := s.emailID(w, r)
	if !ok {
		return
	}

	if err := s.service.MarkProcessed(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.serverError(w, "failed to mark email processed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email_id": id,
		"message":  "Email marked as processed",
	})
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupEmail(w, r)
	if !ok {
		return
	}

	var req updateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	if req.DraftResponse != nil {
		rec.DraftResponse = *req.DraftResponse
	}
	if req.ResponseSent != nil {
		rec.ResponseSent = *req.ResponseSent
		if *req.ResponseSent {
			rec.ResponseSentAt = &now
		}
	}
	if req.Processed != nil {
		rec.Processed = *req.Processed
	}
	rec.UpdatedAt = now

	if err := s.repo.Update(r.Context(), rec); err != nil {
		s.serverError(w, "failed to update email", err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.emailID(w, r)
	if !ok {
		return
	}

	if err := s.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.serverError(w, "failed to delete email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email_id": id,
		"message":  "Email deleted successfully",
	})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.serverError(w, "failed to compute dashboard stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleRecentEmails returns a trimmed preview of the newest records for the
// dashboard.
func (s *Server) handleRecentEmails(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.List(r.Context(), core.ListFilter{
		Limit: queryInt(r, "limit", 10),
	})
	if err != nil {
		s.serverError(w, "failed to list recent emails", err)
		return
	}

	previews := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		subject := rec.Subject
		if len(subject) > 100 {
			subject = subject[:100] + "..."
		}
		previews = append(previews, map[string]interface{}{
			"id":           rec.ID,
			"sender_email": rec.SenderEmail,
			"subject":      subject,
			"priority":     rec.Priority,
			"sentiment":    rec.Sentiment,
			"category":     rec.Category,
			"processed":    rec.Processed,
			"received_at":  rec.ReceivedAt,
		})
	}

	writeJSON(w, http.StatusOK, previews)
}

// lookupEmail fetches the record addressed by the URL, writing the error
// response itself when the lookup fails.
func (s *Server) lookupEmail(w http.ResponseWriter, r *http.Request) (*core.EmailRecord, bool) {
	id, ok := s.emailID(w, r)
	if !ok {
		return nil, false
	}

	rec, err := s.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "Email not found")
			return nil, false
		}
		s.serverError(w, "failed to load email", err)
		return nil, false
	}
	return rec, true
}

func (s *Server) emailID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "emailID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email ID")
		return 0, false
	}
	return id, true
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
