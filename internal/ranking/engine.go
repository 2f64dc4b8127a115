package ranking

import (
	"sort"

	"saodo/internal/models"
)

// Item is one class's aggregate score and rank for a period
type Item struct {
	ClassID        string `json:"classId"`
	ClassName      string `json:"className"`
	TotalScore     int    `json:"totalScore"`
	ViolationCount int    `json:"violationCount"`
	Rank           int    `json:"rank"`
}

// Filter returns the logs recorded inside the period, preserving input order
func Filter(logs []models.DailyLog, period Period) []models.DailyLog {
	filtered := make([]models.DailyLog, 0, len(logs))
	for _, log := range logs {
		if period.Contains(log.Week) {
			filtered = append(filtered, log)
		}
	}
	return filtered
}

// ComputeRankings aggregates the period's logs per class and ranks every class.
//
// Every class appears exactly once, classes without logs score zero, and ranks
// run 1..len(classes) without gaps. Equal totals keep the order of the classes
// slice. Logs whose ClassID matches no class are ignored.
func ComputeRankings(logs []models.DailyLog, classes []models.Class, period Period) []Item {
	items := make([]Item, len(classes))
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		items[i] = Item{ClassID: c.ID, ClassName: c.Name}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	for i := range logs {
		log := &logs[i]
		if !period.Contains(log.Week) {
			continue
		}
		pos, ok := index[log.ClassID]
		if !ok {
			continue
		}
		items[pos].TotalScore += log.TotalScore
		items[pos].ViolationCount += len(log.Deductions)
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].TotalScore > items[b].TotalScore
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// DetailFor returns the class's logs inside the period, most recent first.
// Logs on the same date keep their input order.
func DetailFor(classID string, logs []models.DailyLog, period Period) []models.DailyLog {
	detail := make([]models.DailyLog, 0)
	for _, log := range logs {
		if log.ClassID == classID && period.Contains(log.Week) {
			detail = append(detail, log)
		}
	}
	sort.SliceStable(detail, func(a, b int) bool {
		return detail[a].Date.After(detail[b].Date)
	})
	return detail
}

// Orphans returns the period's logs that reference a class not present in classes.
// They are the logs ComputeRankings silently leaves out.
func Orphans(logs []models.DailyLog, classes []models.Class, period Period) []models.DailyLog {
	known := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		known[c.ID] = struct{}{}
	}
	var orphans []models.DailyLog
	for _, log := range logs {
		if !period.Contains(log.Week) {
			continue
		}
		if _, ok := known[log.ClassID]; !ok {
			orphans = append(orphans, log)
		}
	}
	return orphans
}

// Top returns at most n leading items
func Top(items []Item, n int) []Item {
	if n < 0 {
		n = 0
	}
	if len(items) < n {
		n = len(items)
	}
	out := make([]Item, n)
	copy(out, items[:n])
	return out
}
