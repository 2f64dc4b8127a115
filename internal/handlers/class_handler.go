package handlers

import (
	"net/http"

	"saodo/internal/service"
)

// ClassHandler serves classes and the criteria they are scored on
type ClassHandler struct {
	classService    *service.ClassService
	criteriaService *service.CriteriaService
}

// NewClassHandler creates a new class handler
func NewClassHandler(classService *service.ClassService, criteriaService *service.CriteriaService) *ClassHandler {
	return &ClassHandler{classService: classService, criteriaService: criteriaService}
}

// ListClasses returns every class
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classService.List(r.Context())
	if err != nil {
		respondServiceError(w, "Error listing classes", err)
		return
	}
	respondJSON(w, http.StatusOK, classes)
}

// CreateClass adds a class
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var in service.ClassInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	class, err := h.classService.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, "Error creating class", err)
		return
	}
	respondJSON(w, http.StatusCreated, class)
}

// UpdateClass renames or regrades a class
func (h *ClassHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var in service.ClassInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	class, err := h.classService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, "Error updating class", err)
		return
	}
	respondJSON(w, http.StatusOK, class)
}

// DeleteClass removes a class; its logs stay in history
func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	if err := h.classService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, "Error deleting class", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCriteria returns every criteria config
func (h *ClassHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteriaService.List(r.Context())
	if err != nil {
		respondServiceError(w, "Error listing criteria", err)
		return
	}
	respondJSON(w, http.StatusOK, criteria)
}

// CreateCriteria adds a criteria config
func (h *ClassHandler) CreateCriteria(w http.ResponseWriter, r *http.Request) {
	var in service.CriteriaInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	criteria, err := h.criteriaService.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, "Error creating criteria", err)
		return
	}
	respondJSON(w, http.StatusCreated, criteria)
}

// UpdateCriteria changes a criteria config
func (h *ClassHandler) UpdateCriteria(w http.ResponseWriter, r *http.Request) {
	var in service.CriteriaInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	criteria, err := h.criteriaService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, "Error updating criteria", err)
		return
	}
	respondJSON(w, http.StatusOK, criteria)
}

// DeleteCriteria removes a criteria config
func (h *ClassHandler) DeleteCriteria(w http.ResponseWriter, r *http.Request) {
	if err := h.criteriaService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, "Error deleting criteria", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
