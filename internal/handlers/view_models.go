package handlers

import (
	"time"

	"saodo/internal/models"
	"saodo/internal/ranking"
)

type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauthProvider,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SessionView struct {
	User      UserView  `json:"user"`
	CSRFToken string    `json:"csrfToken,omitempty"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type CreatedUserView struct {
	User     UserView `json:"user"`
	Password string   `json:"password"`
}

type DeductionView struct {
	CriteriaID string `json:"criteriaId"`
	PointsLost int    `json:"pointsLost"`
	Note       string `json:"note,omitempty"`
}

type LogView struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	Week           int             `json:"week"`
	ClassID        string          `json:"classId"`
	Deductions     []DeductionView `json:"deductions"`
	BonusPoints    int             `json:"bonusPoints"`
	TotalScore     int             `json:"totalScore"`
	ViolationCount int             `json:"violationCount"`
	ReporterID     string          `json:"reporterId"`
	ReporterName   string          `json:"reporterName"`
	Comment        string          `json:"comment,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type RankingsView struct {
	Period string         `json:"period"`
	Items  []ranking.Item `json:"items"`
}

type ClassDetailView struct {
	ClassID string    `json:"classId"`
	Period  string    `json:"period"`
	Logs    []LogView `json:"logs"`
}

type SchoolYearView struct {
	SchoolYearStart string `json:"schoolYearStart"`
	CurrentWeek     int    `json:"currentWeek"`
}

type BackupSummaryView struct {
	Version       string `json:"version"`
	Users         int    `json:"users"`
	Classes       int    `json:"classes"`
	Criteria      int    `json:"criteria"`
	Logs          int    `json:"logs"`
	Announcements int    `json:"announcements"`
	Reports       int    `json:"reports"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt,
	}
}

func newLogView(l models.DailyLog) LogView {
	deductions := make([]DeductionView, len(l.Deductions))
	for i, d := range l.Deductions {
		deductions[i] = DeductionView{CriteriaID: d.CriteriaID, PointsLost: d.PointsLost, Note: d.Note}
	}
	return LogView{
		ID:             l.ID,
		Date:           l.Date.Format(models.DateLayout),
		Week:           l.Week,
		ClassID:        l.ClassID,
		Deductions:     deductions,
		BonusPoints:    l.BonusPoints,
		TotalScore:     l.TotalScore,
		ViolationCount: l.ViolationCount(),
		ReporterID:     l.ReporterID,
		ReporterName:   l.ReporterName,
		Comment:        l.Comment,
		CreatedAt:      l.CreatedAt,
	}
}

func newLogViews(logs []models.DailyLog) []LogView {
	views := make([]LogView, len(logs))
	for i, l := range logs {
		views[i] = newLogView(l)
	}
	return views
}
