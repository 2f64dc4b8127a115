package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"saodo/internal/ai"
	"saodo/internal/events"
	"saodo/internal/models"
	"saodo/internal/ranking"
	"saodo/internal/realtime"
	"saodo/internal/repository"
	"saodo/internal/validation"
)

const (
	reportTopViolations = 5
	reportMaxComments   = 10
)

// ReportService writes the weekly summary with a text generator
type ReportService struct {
	reportRepo *repository.ReportRepository
	criteria   *CriteriaService
	store      *realtime.Store
	generator  ai.TextGenerator
	email      *EmailService
	publisher  *events.Publisher
	recipients []string
	logger     *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo *repository.ReportRepository,
	criteria *CriteriaService,
	store *realtime.Store,
	generator ai.TextGenerator,
	email *EmailService,
	publisher *events.Publisher,
	recipients []string,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		criteria:   criteria,
		store:      store,
		generator:  generator,
		email:      email,
		publisher:  publisher,
		recipients: recipients,
		logger:     logger.With(slog.String("component", "report_service")),
	}
}

// violationSummary is the total points lost on one criteria during the week
type violationSummary struct {
	Name   string
	Count  int
	Points int
}

// weekFacts is the data a weekly report is written from
type weekFacts struct {
	Week       int
	Rankings   []ranking.Item
	LogCount   int
	Violations []violationSummary
	Comments   []string
}

// GenerateWeekly writes, stores and mails the report for a school week
func (s *ReportService) GenerateWeekly(ctx context.Context, actor *models.User, week int) (*models.WeeklyReport, error) {
	if week < 1 || week > ranking.WeeksPerYear {
		return nil, validation.Field("week", fmt.Sprintf("week must be between 1 and %d", ranking.WeeksPerYear))
	}
	if s.generator == nil || !s.generator.Available() {
		return nil, ErrGeneratorUnavailable
	}

	facts, err := s.collect(ctx, week)
	if err != nil {
		return nil, err
	}
	if facts.LogCount == 0 {
		return nil, ErrNoLogsForWeek
	}

	started := time.Now()
	content, err := s.generator.Generate(ctx, buildPrompt(facts))
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	report := models.WeeklyReport{
		ID:        uuid.New().String(),
		Week:      week,
		Content:   content,
		Model:     s.generator.Name(),
		CreatedBy: actor.Name,
		CreatedAt: time.Now(),
	}
	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	s.logger.Info("report_generated",
		slog.Int("week", week),
		slog.String("model", report.Model),
		slog.Duration("elapsed", time.Since(started)))

	if s.email != nil {
		if err := s.email.SendWeeklyReport(ctx, s.recipients, &report); err != nil {
			s.logger.Error("report_email_failed", slog.Int("week", week), slog.Any("err", err))
		}
	}
	publish(ctx, s.publisher, events.Event{Type: events.TypeReportCreated, RecordID: report.ID, Week: week, Actor: actor.ID}, s.logger)
	return &report, nil
}

// collect gathers rankings, violation totals and comments for a week
func (s *ReportService) collect(ctx context.Context, week int) (weekFacts, error) {
	logs, classes, _ := s.store.Current()
	period := ranking.Week(week)
	weekLogs := ranking.Filter(logs, period)

	names, err := s.criteria.names(ctx)
	if err != nil {
		return weekFacts{}, err
	}
	classNames := make(map[string]string, len(classes))
	for _, c := range classes {
		classNames[c.ID] = c.Name
	}

	byCriteria := make(map[string]*violationSummary)
	var comments []string
	for _, log := range weekLogs {
		className, known := classNames[log.ClassID]
		if !known {
			continue
		}
		for _, d := range log.Deductions {
			name := names[d.CriteriaID]
			if name == "" {
				name = d.CriteriaID
			}
			v, ok := byCriteria[name]
			if !ok {
				v = &violationSummary{Name: name}
				byCriteria[name] = v
			}
			v.Count++
			v.Points += d.PointsLost
		}
		if log.Comment != "" && len(comments) < reportMaxComments {
			comments = append(comments, fmt.Sprintf("%s (%s): %s", className, log.Date.Format(models.DateLayout), log.Comment))
		}
	}

	violations := make([]violationSummary, 0, len(byCriteria))
	for _, v := range byCriteria {
		violations = append(violations, *v)
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Points != violations[j].Points {
			return violations[i].Points > violations[j].Points
		}
		return violations[i].Name < violations[j].Name
	})
	if len(violations) > reportTopViolations {
		violations = violations[:reportTopViolations]
	}

	return weekFacts{
		Week:       week,
		Rankings:   ranking.ComputeRankings(logs, classes, period),
		LogCount:   len(weekLogs),
		Violations: violations,
		Comments:   comments,
	}, nil
}

// buildPrompt renders the week's facts into instructions for the model
func buildPrompt(f weekFacts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bạn là trợ lý của Đội Sao Đỏ trường tiểu học. Hãy viết bản tổng kết nề nếp tuần %d ", f.Week)
	b.WriteString("bằng tiếng Việt, giọng văn tích cực, ngắn gọn (khoảng 200 từ), gồm: khen ngợi lớp dẫn đầu, ")
	b.WriteString("nhắc nhở các lỗi phổ biến, và một lời động viên cho tuần sau.\n\n")

	fmt.Fprintf(&b, "Số lượt chấm điểm: %d\n\nBảng xếp hạng:\n", f.LogCount)
	for _, item := range f.Rankings {
		fmt.Fprintf(&b, "%d. Lớp %s: %d điểm, %d lỗi\n", item.Rank, item.ClassName, item.TotalScore, item.ViolationCount)
	}

	if len(f.Violations) > 0 {
		b.WriteString("\nLỗi vi phạm nhiều nhất:\n")
		for _, v := range f.Violations {
			fmt.Fprintf(&b, "- %s: %d lần, trừ %d điểm\n", v.Name, v.Count, v.Points)
		}
	}
	if len(f.Comments) > 0 {
		b.WriteString("\nGhi chú của Sao Đỏ:\n")
		for _, c := range f.Comments {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return b.String()
}

// Latest returns the newest report
func (s *ReportService) Latest(ctx context.Context) (*models.WeeklyReport, error) {
	report, err := s.reportRepo.GetLatestReport(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report: %w", ErrNotFound)
	}
	return report, nil
}

// ForWeek returns the newest report for a week
func (s *ReportService) ForWeek(ctx context.Context, week int) (*models.WeeklyReport, error) {
	report, err := s.reportRepo.GetReportForWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report for week %d: %w", week, ErrNotFound)
	}
	return report, nil
}

// List returns every stored report, newest first
func (s *ReportService) List(ctx context.Context) ([]models.WeeklyReport, error) {
	return s.reportRepo.GetAllReports(ctx)
}
