package ranking

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// WeeksPerYear is the number of school weeks in a year
	WeeksPerYear = 35
	// FirstSemesterLastWeek is the last week belonging to semester 1
	FirstSemesterLastWeek = 18
)

// PeriodKind tags which variant of Period is active
type PeriodKind int

const (
	KindWeek PeriodKind = iota + 1
	KindSemester
	KindYear
)

// Period selects the time window logs are aggregated over.
// Exactly one variant is active; build values with Week, Semester or Year.
type Period struct {
	kind  PeriodKind
	value int
}

// Week selects logs recorded in school week n
func Week(n int) Period {
	return Period{kind: KindWeek, value: n}
}

// Semester selects logs in semester s (1: weeks 1-18, 2: weeks 19-35)
func Semester(s int) Period {
	return Period{kind: KindSemester, value: s}
}

// Year selects every log
func Year() Period {
	return Period{kind: KindYear}
}

// Kind returns the active variant
func (p Period) Kind() PeriodKind {
	return p.kind
}

// Value returns the week or semester number; zero for Year
func (p Period) Value() int {
	return p.value
}

// Contains reports whether a log recorded in the given week falls inside the period.
// Out of range selectors match nothing rather than failing.
func (p Period) Contains(week int) bool {
	switch p.kind {
	case KindWeek:
		return week == p.value
	case KindSemester:
		switch p.value {
		case 1:
			return week >= 1 && week <= FirstSemesterLastWeek
		case 2:
			return week > FirstSemesterLastWeek && week <= WeeksPerYear
		}
		return false
	case KindYear:
		return true
	}
	return false
}

// String renders the canonical form accepted by ParsePeriod
func (p Period) String() string {
	switch p.kind {
	case KindWeek:
		return "week:" + strconv.Itoa(p.value)
	case KindSemester:
		return "semester:" + strconv.Itoa(p.value)
	case KindYear:
		return "year"
	}
	return ""
}

// ParsePeriod parses "week:12", "semester:1", "year" and the short forms "w12" and "s1".
// An empty string selects the whole year.
func ParsePeriod(raw string) (Period, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "year" || s == "y" {
		return Year(), nil
	}

	var kind, num string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		kind, num = s[:i], s[i+1:]
	} else if len(s) > 1 {
		kind, num = s[:1], s[1:]
	} else {
		return Period{}, fmt.Errorf("invalid period %q", raw)
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", raw, err)
	}

	switch kind {
	case "week", "w":
		return Week(n), nil
	case "semester", "s":
		return Semester(n), nil
	}
	return Period{}, fmt.Errorf("invalid period %q", raw)
}
