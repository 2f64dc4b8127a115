package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				UserID:    "u-1",
				ExpiresAt: tt.expiresAt,
				IssuedAt:  time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestCalculateTotalScore(t *testing.T) {
	tests := []struct {
		name       string
		deductions []Deduction
		bonus      int
		bonusOnly  bool
		want       int
	}{
		{
			name: "no deductions",
			want: 100,
		},
		{
			name:       "deductions and bonus",
			deductions: []Deduction{{CriteriaID: "late", PointsLost: 5}, {CriteriaID: "uniform", PointsLost: 2}},
			bonus:      3,
			want:       96,
		},
		{
			name:       "floor at zero before bonus",
			deductions: []Deduction{{CriteriaID: "late", PointsLost: 80}, {CriteriaID: "noise", PointsLost: 40}},
			bonus:      10,
			want:       10,
		},
		{
			name:      "bonus only",
			bonus:     15,
			bonusOnly: true,
			want:      15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTotalScore(tt.deductions, tt.bonus, tt.bonusOnly)
			if result != tt.want {
				t.Errorf("CalculateTotalScore() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestDailyLogCounts(t *testing.T) {
	log := DailyLog{
		Deductions: []Deduction{
			{CriteriaID: "late", PointsLost: 5},
			{CriteriaID: "dirty", PointsLost: 10},
		},
	}

	if got := log.ViolationCount(); got != 2 {
		t.Errorf("ViolationCount() = %v, want 2", got)
	}
	if got := log.PointsLost(); got != 15 {
		t.Errorf("PointsLost() = %v, want 15", got)
	}
}

func TestUserRoles(t *testing.T) {
	admin := User{Role: RoleAdmin}
	reporter := User{Role: RoleReporter}
	other := User{Role: "viewer"}

	if !admin.IsAdmin() || !admin.CanReport() {
		t.Error("admin should be able to administer and report")
	}
	if reporter.IsAdmin() || !reporter.CanReport() {
		t.Error("reporter should report but not administer")
	}
	if other.CanReport() {
		t.Error("unknown role should not report")
	}
}
