package config

import (
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "empty", raw: "", expected: nil},
		{name: "single", raw: "a@school.vn", expected: []string{"a@school.vn"}},
		{name: "spaces and blanks", raw: " a , ,b ", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitList(tt.raw)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitList(%q) = %v, want %v", tt.raw, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitList(%q)[%d] = %v, want %v", tt.raw, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDefaultSchoolYearStart(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{name: "autumn term", now: time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), expected: "2023-09-04"},
		{name: "spring term", now: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), expected: "2023-09-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := defaultSchoolYearStart(tt.now).Format("2006-01-02")
			if result != tt.expected {
				t.Errorf("defaultSchoolYearStart() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SCHOOL_YEAR_START", "2023-09-05")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %v, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %v, want sqlite", cfg.DatabaseType)
	}
	if cfg.SessionDuration != 7*24*time.Hour {
		t.Errorf("SessionDuration = %v, want 168h", cfg.SessionDuration)
	}
	if got := cfg.SchoolYearStart.Format("2006-01-02"); got != "2023-09-05" {
		t.Errorf("SchoolYearStart = %v, want 2023-09-05", got)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Errorf("KafkaBrokers = %v, want 2 entries", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsBadSchoolYearStart(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SCHOOL_YEAR_START", "05/09/2023")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for a malformed SCHOOL_YEAR_START")
	}
}
