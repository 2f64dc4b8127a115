package models

import "time"

// BaseDailyScore is the score a class starts each day with before deductions
const BaseDailyScore = 100

// DateLayout is the calendar date format used for log dates
const DateLayout = "2006-01-02"

// DailyLog is one scoring event for one class on one day
type DailyLog struct {
	ID           string
	Date         time.Time
	Week         int // 1-35
	ClassID      string
	Deductions   []Deduction
	BonusPoints  int
	TotalScore   int
	ReporterID   string
	ReporterName string
	Comment      string
	CreatedAt    time.Time
}

// Deduction is a point loss inside a daily log, tied to a criteria config
type Deduction struct {
	CriteriaID string
	PointsLost int
	Note       string
}

// ViolationCount returns the number of deductions recorded in the log
func (l *DailyLog) ViolationCount() int {
	return len(l.Deductions)
}

// PointsLost sums the points lost across all deductions
func (l *DailyLog) PointsLost() int {
	total := 0
	for _, d := range l.Deductions {
		total += d.PointsLost
	}
	return total
}

// CalculateTotalScore computes the stored score for a log.
// Normal entries start from BaseDailyScore, floor at zero after deductions and
// then add the bonus. Bonus-only entries score exactly the bonus.
func CalculateTotalScore(deductions []Deduction, bonusPoints int, bonusOnly bool) int {
	if bonusOnly {
		return bonusPoints
	}
	lost := 0
	for _, d := range deductions {
		lost += d.PointsLost
	}
	base := BaseDailyScore - lost
	if base < 0 {
		base = 0
	}
	return base + bonusPoints
}
