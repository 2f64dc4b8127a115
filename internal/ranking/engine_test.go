package ranking

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"saodo/internal/models"
)

func date(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func deductions(n int) []models.Deduction {
	out := make([]models.Deduction, n)
	for i := range out {
		out[i] = models.Deduction{CriteriaID: "late", PointsLost: 1}
	}
	return out
}

var twoClasses = []models.Class{
	{ID: "5A", Name: "5A", Grade: 5},
	{ID: "4B", Name: "4B", Grade: 4},
}

func TestComputeRankingsWeek(t *testing.T) {
	logs := []models.DailyLog{
		{ID: "1", ClassID: "5A", Week: 12, TotalScore: 98, Deductions: deductions(1)},
		{ID: "2", ClassID: "4B", Week: 12, TotalScore: 95, Deductions: deductions(1)},
	}

	result := ComputeRankings(logs, twoClasses, Week(12))
	expected := []Item{
		{ClassID: "5A", ClassName: "5A", TotalScore: 98, ViolationCount: 1, Rank: 1},
		{ClassID: "4B", ClassName: "4B", TotalScore: 95, ViolationCount: 1, Rank: 2},
	}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("ComputeRankings() = %+v, want %+v", result, expected)
	}
}

func TestComputeRankingsEmptyLogs(t *testing.T) {
	result := ComputeRankings(nil, twoClasses, Year())

	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}
	for i, item := range result {
		if item.TotalScore != 0 || item.ViolationCount != 0 {
			t.Errorf("item %d = %+v, want zero score and violations", i, item)
		}
		if item.ClassID != twoClasses[i].ID {
			t.Errorf("position %d: got %v, want %v (input order)", i, item.ClassID, twoClasses[i].ID)
		}
		if item.Rank != i+1 {
			t.Errorf("position %d: rank %d, want %d", i, item.Rank, i+1)
		}
	}
}

func TestComputeRankingsEmptyClasses(t *testing.T) {
	logs := []models.DailyLog{{ClassID: "5A", Week: 1, TotalScore: 100}}
	result := ComputeRankings(logs, nil, Year())
	if len(result) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestComputeRankingsDropsOrphans(t *testing.T) {
	logs := []models.DailyLog{
		{ClassID: "5A", Week: 3, TotalScore: 100},
		{ClassID: "9Z", Week: 3, TotalScore: 500, Deductions: deductions(4)},
	}

	result := ComputeRankings(logs, twoClasses, Year())
	total := 0
	for _, item := range result {
		total += item.TotalScore
		if item.ClassID == "9Z" {
			t.Errorf("orphan class should not be ranked: %+v", item)
		}
	}
	if total != 100 {
		t.Errorf("sum of totals = %d, want 100", total)
	}

	orphans := Orphans(logs, twoClasses, Year())
	if len(orphans) != 1 || orphans[0].ClassID != "9Z" {
		t.Errorf("Orphans() = %+v, want the 9Z log", orphans)
	}
}

func TestComputeRankingsSemesterBoundary(t *testing.T) {
	logs := []models.DailyLog{
		{ClassID: "5A", Week: 18, TotalScore: 90},
		{ClassID: "5A", Week: 19, TotalScore: 80},
	}

	first := ComputeRankings(logs, twoClasses[:1], Semester(1))
	if first[0].TotalScore != 90 {
		t.Errorf("semester 1 total = %d, want 90", first[0].TotalScore)
	}
	second := ComputeRankings(logs, twoClasses[:1], Semester(2))
	if second[0].TotalScore != 80 {
		t.Errorf("semester 2 total = %d, want 80", second[0].TotalScore)
	}
}

func TestComputeRankingsTiesKeepClassOrder(t *testing.T) {
	classes := []models.Class{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	logs := []models.DailyLog{
		{ClassID: "a", Week: 1, TotalScore: 90},
		{ClassID: "b", Week: 1, TotalScore: 90},
		{ClassID: "c", Week: 1, TotalScore: 90},
	}

	result := ComputeRankings(logs, classes, Week(1))
	for i, want := range []string{"c", "a", "b"} {
		if result[i].ClassID != want || result[i].Rank != i+1 {
			t.Errorf("position %d: got %s rank %d, want %s rank %d", i, result[i].ClassID, result[i].Rank, want, i+1)
		}
	}
}

func TestComputeRankingsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	classes := []models.Class{{ID: "1A"}, {ID: "2A"}, {ID: "3A"}, {ID: "4A"}, {ID: "5A"}, {ID: "5B"}}

	for iter := 0; iter < 50; iter++ {
		logs := make([]models.DailyLog, rng.Intn(60))
		for i := range logs {
			logs[i] = models.DailyLog{
				ClassID:    classes[rng.Intn(len(classes))].ID,
				Week:       rng.Intn(40),
				TotalScore: rng.Intn(120),
				Deductions: deductions(rng.Intn(3)),
			}
		}
		periods := []Period{Week(rng.Intn(36)), Semester(1), Semester(2), Year()}

		for _, period := range periods {
			result := ComputeRankings(logs, classes, period)

			if len(result) != len(classes) {
				t.Fatalf("%s: len = %d, want %d", period, len(result), len(classes))
			}
			for i := range result {
				if result[i].Rank != i+1 {
					t.Fatalf("%s: rank at %d = %d", period, i, result[i].Rank)
				}
				if i > 0 && result[i-1].TotalScore < result[i].TotalScore {
					t.Fatalf("%s: not sorted at %d: %+v", period, i, result)
				}
			}

			again := ComputeRankings(logs, classes, period)
			if !reflect.DeepEqual(result, again) {
				t.Fatalf("%s: not idempotent", period)
			}
		}
	}
}

func TestDetailForOrdersByDateDesc(t *testing.T) {
	logs := []models.DailyLog{
		{ID: "old", ClassID: "5A", Week: 7, Date: date("2023-10-15")},
		{ID: "other", ClassID: "4B", Week: 9, Date: date("2023-11-02")},
		{ID: "new", ClassID: "5A", Week: 9, Date: date("2023-11-01")},
	}

	result := DetailFor("5A", logs, Year())
	if len(result) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(result))
	}
	if result[0].ID != "new" || result[1].ID != "old" {
		t.Errorf("DetailFor() order = [%s %s], want [new old]", result[0].ID, result[1].ID)
	}
}

func TestDetailForSameDateKeepsInputOrder(t *testing.T) {
	logs := []models.DailyLog{
		{ID: "first", ClassID: "5A", Week: 2, Date: date("2023-09-12")},
		{ID: "second", ClassID: "5A", Week: 2, Date: date("2023-09-12")},
	}

	result := DetailFor("5A", logs, Week(2))
	if result[0].ID != "first" || result[1].ID != "second" {
		t.Errorf("DetailFor() order = [%s %s], want [first second]", result[0].ID, result[1].ID)
	}
}

func TestDetailForUnknownClass(t *testing.T) {
	logs := []models.DailyLog{{ClassID: "5A", Week: 1}}
	result := DetailFor("nope", logs, Year())
	if result == nil || len(result) != 0 {
		t.Errorf("DetailFor() = %#v, want empty non-nil slice", result)
	}
}

func TestTop(t *testing.T) {
	items := []Item{{ClassID: "a"}, {ClassID: "b"}}
	if got := Top(items, 3); len(got) != 2 {
		t.Errorf("Top(3) len = %d, want 2", len(got))
	}
	if got := Top(items, 1); len(got) != 1 || got[0].ClassID != "a" {
		t.Errorf("Top(1) = %+v", got)
	}
}
