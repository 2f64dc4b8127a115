package handlers

import (
	"net/http"
	"strconv"

	"saodo/internal/service"
)

// ReportHandler serves the generated weekly reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func weekFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid week", "", nil)
		return 0, false
	}
	return week, true
}

// Latest returns the newest report
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Latest(r.Context())
	if err != nil {
		respondServiceError(w, "Error loading latest report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// List returns every report, newest first
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.List(r.Context())
	if err != nil {
		respondServiceError(w, "Error listing reports", err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// ForWeek returns the newest report for a week
func (h *ReportHandler) ForWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	report, err := h.reportService.ForWeek(r.Context(), week)
	if err != nil {
		respondServiceError(w, "Error loading report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Generate writes a new report for a week. Older versions are kept.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	report, err := h.reportService.GenerateWeekly(r.Context(), GetUserFromContext(r.Context()), week)
	if err != nil {
		respondServiceError(w, "Error generating report", err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}
