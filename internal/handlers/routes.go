package handlers

import "net/http"

// Handlers bundles every HTTP handler for route registration
type Handlers struct {
	Middleware    *Middleware
	Startup       *StartupStatus
	Auth          *AuthHandler
	Classes       *ClassHandler
	Logs          *LogHandler
	Rankings      *RankingHandler
	Announcements *AnnouncementHandler
	Reports       *ReportHandler
	Admin         *AdminHandler
}

// Register mounts all routes on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	m := h.Middleware
	auth := m.RequireAuth
	reporter := func(next http.HandlerFunc) http.HandlerFunc { return m.RequireReporter(m.CSRFProtect(next)) }
	admin := func(next http.HandlerFunc) http.HandlerFunc { return m.RequireAdmin(m.CSRFProtect(next)) }

	mux.HandleFunc("GET /healthz", h.Startup.Health)

	// Authentication
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", auth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/password", auth(m.CSRFProtect(h.Auth.ChangePassword)))
	mux.HandleFunc("GET /api/auth/providers", h.Auth.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", m.RateLimit(h.Auth.OAuthCallback))

	// Classes and criteria
	mux.HandleFunc("GET /api/classes", h.Classes.ListClasses)
	mux.HandleFunc("POST /api/classes", admin(h.Classes.CreateClass))
	mux.HandleFunc("PUT /api/classes/{id}", admin(h.Classes.UpdateClass))
	mux.HandleFunc("DELETE /api/classes/{id}", admin(h.Classes.DeleteClass))
	mux.HandleFunc("GET /api/criteria", h.Classes.ListCriteria)
	mux.HandleFunc("POST /api/criteria", admin(h.Classes.CreateCriteria))
	mux.HandleFunc("PUT /api/criteria/{id}", admin(h.Classes.UpdateCriteria))
	mux.HandleFunc("DELETE /api/criteria/{id}", admin(h.Classes.DeleteCriteria))

	// Daily logs
	mux.HandleFunc("GET /api/logs", h.Logs.ListLogs)
	mux.HandleFunc("POST /api/logs", reporter(h.Logs.CreateLog))
	mux.HandleFunc("GET /api/logs/{id}", h.Logs.GetLog)
	mux.HandleFunc("PUT /api/logs/{id}", reporter(h.Logs.UpdateLog))
	mux.HandleFunc("DELETE /api/logs/{id}", reporter(h.Logs.DeleteLog))

	// Rankings
	mux.HandleFunc("GET /api/rankings", h.Rankings.Rankings)
	mux.HandleFunc("GET /api/rankings/podium", h.Rankings.Podium)
	mux.HandleFunc("GET /api/rankings/stream", h.Rankings.Stream)
	mux.HandleFunc("GET /api/rankings/{classId}/logs", h.Rankings.ClassDetail)

	// Announcements
	mux.HandleFunc("GET /api/announcements", h.Announcements.List)
	mux.HandleFunc("POST /api/announcements", admin(h.Announcements.Create))
	mux.HandleFunc("DELETE /api/announcements/{id}", admin(h.Announcements.Delete))

	// Weekly reports
	mux.HandleFunc("GET /api/reports", h.Reports.List)
	mux.HandleFunc("GET /api/reports/latest", h.Reports.Latest)
	mux.HandleFunc("GET /api/reports/{week}", h.Reports.ForWeek)
	mux.HandleFunc("POST /api/reports/{week}/generate", admin(h.Reports.Generate))

	// Administration
	mux.HandleFunc("GET /api/admin/orphans", m.RequireAdmin(h.Rankings.Orphans))
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(h.Admin.ListUsers))
	mux.HandleFunc("POST /api/admin/users", admin(h.Admin.CreateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", admin(h.Admin.DeleteUser))
	mux.HandleFunc("POST /api/admin/users/{id}/reset-password", admin(h.Admin.ResetPassword))
	mux.HandleFunc("GET /api/admin/settings/school-year-start", m.RequireAdmin(h.Admin.GetSchoolYear))
	mux.HandleFunc("PUT /api/admin/settings/school-year-start", admin(h.Admin.SetSchoolYear))
	mux.HandleFunc("GET /api/admin/backup", m.RequireAdmin(h.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/backup", admin(h.Admin.ImportDatabase))
}
