package handlers

import (
	"net/http"
	"strconv"

	"saodo/internal/service"
)

// AnnouncementHandler serves dashboard announcements
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// List returns announcements, pinned first. ?limit= caps the count.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	announcements, err := h.announcementService.List(r.Context(), limit)
	if err != nil {
		respondServiceError(w, "Error listing announcements", err)
		return
	}
	respondJSON(w, http.StatusOK, announcements)
}

// Create publishes an announcement
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.AnnouncementInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	a, err := h.announcementService.Create(r.Context(), GetUserFromContext(r.Context()), in)
	if err != nil {
		respondServiceError(w, "Error creating announcement", err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// Delete removes an announcement
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.announcementService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, "Error deleting announcement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
