package handlers

import (
	"net/http"

	"saodo/internal/ranking"
	"saodo/internal/service"
)

// LogHandler serves daily discipline logs
type LogHandler struct {
	logService *service.LogService
}

// NewLogHandler creates a new log handler
func NewLogHandler(logService *service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// periodFromQuery parses ?period=, defaulting to the whole year
func periodFromQuery(w http.ResponseWriter, r *http.Request) (ranking.Period, bool) {
	period, err := ranking.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidPeriod, "", nil)
		return ranking.Period{}, false
	}
	return period, true
}

// ListLogs returns the logs in a period, newest first
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newLogViews(h.logService.List(period)))
}

// GetLog returns one log
func (h *LogHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.logService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, "Error loading log", err)
		return
	}
	respondJSON(w, http.StatusOK, newLogView(*log))
}

// CreateLog records a daily log for a class
func (h *LogHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var in service.LogInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	log, err := h.logService.Create(r.Context(), GetUserFromContext(r.Context()), in)
	if err != nil {
		respondServiceError(w, "Error creating log", err)
		return
	}
	respondJSON(w, http.StatusCreated, newLogView(*log))
}

// UpdateLog replaces a log's content
func (h *LogHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	var in service.LogInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	log, err := h.logService.Update(r.Context(), GetUserFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, "Error updating log", err)
		return
	}
	respondJSON(w, http.StatusOK, newLogView(*log))
}

// DeleteLog removes a log
func (h *LogHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.logService.Delete(r.Context(), GetUserFromContext(r.Context()), r.PathValue("id")); err != nil {
		respondServiceError(w, "Error deleting log", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
