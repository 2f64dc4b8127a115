package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"saodo/internal/models"
	"saodo/internal/realtime"
	"saodo/internal/service"
)

// AdminHandler handles account administration, settings and backups
type AdminHandler struct {
	authService   *service.AuthService
	logService    *service.LogService
	backupService *service.BackupService
	store         *realtime.Store
	logger        *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, logService *service.LogService, backupService *service.BackupService, store *realtime.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		logService:    logService,
		backupService: backupService,
		store:         store,
		logger:        logger.With(slog.String("component", "admin")),
	}
}

type schoolYearRequest struct {
	SchoolYearStart string `json:"schoolYearStart"`
}

// ListUsers returns every account
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, "Error listing users", err)
		return
	}
	views := make([]UserView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i])
	}
	respondJSON(w, http.StatusOK, views)
}

// CreateUser provisions an account and returns its initial password once
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	user, password, err := h.authService.CreateUser(r.Context(), in)
	if err != nil {
		respondServiceError(w, "Error creating user", err)
		return
	}
	h.logger.Info("user_provisioned", slog.String("user", user.ID), slog.String("by", GetUserFromContext(r.Context()).ID))
	respondJSON(w, http.StatusCreated, CreatedUserView{User: newUserView(user), Password: password})
}

// DeleteUser removes an account
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if actor := GetUserFromContext(r.Context()); actor != nil && actor.ID == id {
		respondWithError(w, http.StatusConflict, "You cannot delete your own account", "", nil)
		return
	}
	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, "Error deleting user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword generates a new password for an account
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.authService.ResetPassword(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, "Error resetting password", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// GetSchoolYear returns the school year start and the current week
func (h *AdminHandler) GetSchoolYear(w http.ResponseWriter, r *http.Request) {
	start, err := h.logService.SchoolYearStart(r.Context())
	if err != nil {
		respondServiceError(w, "Error loading school year start", err)
		return
	}
	week, err := h.logService.CurrentWeek(r.Context())
	if err != nil {
		respondServiceError(w, "Error computing current week", err)
		return
	}
	respondJSON(w, http.StatusOK, SchoolYearView{SchoolYearStart: start.Format(models.DateLayout), CurrentWeek: week})
}

// SetSchoolYear changes the first day of the school year
func (h *AdminHandler) SetSchoolYear(w http.ResponseWriter, r *http.Request) {
	var req schoolYearRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if _, err := h.logService.SetSchoolYearStart(r.Context(), req.SchoolYearStart); err != nil {
		respondServiceError(w, "Error saving school year start", err)
		return
	}
	h.GetSchoolYear(w, r)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("saodo_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := h.backupService.ExportToWriter(r.Context(), w); err != nil {
		// Headers may already be sent; the log is the only reliable signal
		h.logger.Error("backup_export_failed", slog.Any("err", err))
		return
	}

	h.logger.Info("database_exported", slog.String("by", user.Email))
}

// ImportDatabase replaces all records with an uploaded backup
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBodyBytes)

	backup, err := h.backupService.ImportFromReader(r.Context(), r.Body, true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import backup", "Error importing backup", err)
		return
	}

	if err := h.store.ReloadAll(r.Context()); err != nil {
		h.logger.Error("snapshot_reload_failed", slog.Any("err", err))
	}

	h.logger.Warn("database_imported", slog.String("by", user.Email), slog.Int("logs", len(backup.Logs)))
	respondJSON(w, http.StatusOK, BackupSummaryView{
		Version:       backup.Version,
		Users:         len(backup.Users),
		Classes:       len(backup.Classes),
		Criteria:      len(backup.Criteria),
		Logs:          len(backup.Logs),
		Announcements: len(backup.Announcements),
		Reports:       len(backup.Reports),
	})
}
