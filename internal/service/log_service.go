package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"saodo/internal/events"
	"saodo/internal/models"
	"saodo/internal/ranking"
	"saodo/internal/realtime"
	"saodo/internal/repository"
	"saodo/internal/validation"
)

// DeductionInput is one point loss in a log entry request
type DeductionInput struct {
	CriteriaID string `json:"criteriaId" validate:"required"`
	PointsLost int    `json:"pointsLost" validate:"gt=0"`
	Note       string `json:"note" validate:"max=500"`
}

// LogInput is a daily log entry request. Week is derived from Date when zero.
type LogInput struct {
	Date        string           `json:"date" validate:"required,calendardate"`
	Week        int              `json:"week" validate:"omitempty,min=1,max=35"`
	ClassID     string           `json:"classId" validate:"required"`
	Deductions  []DeductionInput `json:"deductions" validate:"max=50,dive"`
	BonusPoints int              `json:"bonusPoints" validate:"min=0,max=100"`
	BonusOnly   bool             `json:"bonusOnly"`
	Comment     string           `json:"comment" validate:"max=1000"`
}

// LogService records daily discipline logs
type LogService struct {
	logRepo         *repository.LogRepository
	classRepo       *repository.ClassRepository
	criteriaRepo    *repository.CriteriaRepository
	settingsRepo    *repository.SettingsRepository
	store           *realtime.Store
	publisher       *events.Publisher
	schoolYearStart time.Time
	logger          *slog.Logger
}

// NewLogService creates a new log service
func NewLogService(
	logRepo *repository.LogRepository,
	classRepo *repository.ClassRepository,
	criteriaRepo *repository.CriteriaRepository,
	settingsRepo *repository.SettingsRepository,
	store *realtime.Store,
	publisher *events.Publisher,
	schoolYearStart time.Time,
	logger *slog.Logger,
) *LogService {
	return &LogService{
		logRepo:         logRepo,
		classRepo:       classRepo,
		criteriaRepo:    criteriaRepo,
		settingsRepo:    settingsRepo,
		store:           store,
		publisher:       publisher,
		schoolYearStart: schoolYearStart,
		logger:          logger.With(slog.String("component", "log_service")),
	}
}

// WeekForDate returns the 1-based school week containing date, clamped to 1..35
func WeekForDate(yearStart, date time.Time) int {
	start := time.Date(yearStart.Year(), yearStart.Month(), yearStart.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		return 1
	}
	week := int(day.Sub(start).Hours()/24)/7 + 1
	if week > ranking.WeeksPerYear {
		return ranking.WeeksPerYear
	}
	return week
}

// SchoolYearStart returns the configured first day of the school year
func (s *LogService) SchoolYearStart(ctx context.Context) (time.Time, error) {
	return s.settingsRepo.SchoolYearStart(ctx, s.schoolYearStart)
}

// SetSchoolYearStart overrides the first day of the school year
func (s *LogService) SetSchoolYearStart(ctx context.Context, raw string) (time.Time, error) {
	start, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, validation.Field("schoolYearStart", "must be a date in YYYY-MM-DD format")
	}
	if err := s.settingsRepo.SetSchoolYearStart(ctx, start); err != nil {
		return time.Time{}, err
	}
	s.logger.Info("school_year_start_set", slog.String("date", start.Format(models.DateLayout)))
	return start, nil
}

// CurrentWeek returns the school week for today
func (s *LogService) CurrentWeek(ctx context.Context) (int, error) {
	start, err := s.SchoolYearStart(ctx)
	if err != nil {
		return 0, err
	}
	return WeekForDate(start, time.Now()), nil
}

// build validates input and turns it into a log with its total computed
func (s *LogService) build(ctx context.Context, in LogInput) (models.DailyLog, error) {
	if err := validation.Struct(in); err != nil {
		return models.DailyLog{}, err
	}
	if in.BonusOnly && len(in.Deductions) > 0 {
		return models.DailyLog{}, validation.Field("deductions", "bonus-only entries cannot carry deductions")
	}
	if in.BonusOnly && in.BonusPoints == 0 {
		return models.DailyLog{}, validation.Field("bonusPoints", "bonus-only entries need bonus points")
	}

	date, _ := time.Parse(models.DateLayout, in.Date)
	week := in.Week
	if week == 0 {
		start, err := s.SchoolYearStart(ctx)
		if err != nil {
			return models.DailyLog{}, err
		}
		week = WeekForDate(start, date)
	}

	class, err := s.classRepo.GetClassByID(ctx, in.ClassID)
	if err != nil {
		return models.DailyLog{}, err
	}
	if class == nil {
		return models.DailyLog{}, validation.Field("classId", "unknown class")
	}

	deductions := make([]models.Deduction, 0, len(in.Deductions))
	for i, d := range in.Deductions {
		criteria, err := s.criteriaRepo.GetCriteriaByID(ctx, d.CriteriaID)
		if err != nil {
			return models.DailyLog{}, err
		}
		field := fmt.Sprintf("deductions[%d]", i)
		if criteria == nil {
			return models.DailyLog{}, validation.Field(field+".criteriaId", "unknown criteria")
		}
		if d.PointsLost > criteria.MaxPoints {
			return models.DailyLog{}, validation.Field(field+".pointsLost",
				fmt.Sprintf("at most %d points can be deducted for %s", criteria.MaxPoints, criteria.Name))
		}
		deductions = append(deductions, models.Deduction{
			CriteriaID: d.CriteriaID,
			PointsLost: d.PointsLost,
			Note:       strings.TrimSpace(d.Note),
		})
	}

	return models.DailyLog{
		Date:        date,
		Week:        week,
		ClassID:     in.ClassID,
		Deductions:  deductions,
		BonusPoints: in.BonusPoints,
		TotalScore:  models.CalculateTotalScore(deductions, in.BonusPoints, in.BonusOnly),
		Comment:     strings.TrimSpace(in.Comment),
	}, nil
}

// Create validates and stores a new daily log
func (s *LogService) Create(ctx context.Context, actor *models.User, in LogInput) (*models.DailyLog, error) {
	if !actor.CanReport() {
		return nil, ErrForbidden
	}
	log, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	log.ID = uuid.New().String()
	log.ReporterID = actor.ID
	log.ReporterName = actor.Name
	log.CreatedAt = time.Now()

	if err := s.logRepo.CreateLog(ctx, log); err != nil {
		return nil, err
	}
	s.changed(ctx, events.TypeLogCreated, log, actor)
	s.logger.Info("log_created",
		slog.String("log", log.ID),
		slog.String("class", log.ClassID),
		slog.Int("week", log.Week),
		slog.Int("total", log.TotalScore))
	return &log, nil
}

// Update replaces the content of an existing log
func (s *LogService) Update(ctx context.Context, actor *models.User, id string, in LogInput) (*models.DailyLog, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(actor, existing) {
		return nil, ErrForbidden
	}
	log, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	log.ID = existing.ID
	log.ReporterID = existing.ReporterID
	log.ReporterName = existing.ReporterName
	log.CreatedAt = existing.CreatedAt

	found, err := s.logRepo.UpdateLog(ctx, log)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, events.TypeLogUpdated, log, actor)
	return &log, nil
}

// Delete removes a log
func (s *LogService) Delete(ctx context.Context, actor *models.User, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.canModify(actor, existing) {
		return ErrForbidden
	}
	found, err := s.logRepo.DeleteLog(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, events.TypeLogDeleted, *existing, actor)
	s.logger.Info("log_deleted", slog.String("log", id), slog.String("by", actor.ID))
	return nil
}

// canModify lets admins edit any log and reporters edit the logs they entered
func (s *LogService) canModify(actor *models.User, log *models.DailyLog) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.CanReport() && log.ReporterID == actor.ID
}

// Get returns one log
func (s *LogService) Get(ctx context.Context, id string) (*models.DailyLog, error) {
	log, err := s.logRepo.GetLogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	return log, nil
}

// List returns the logs inside a period from the latest snapshot, by date
// descending. Logs of the same date are listed most recently entered first.
func (s *LogService) List(period ranking.Period) []models.DailyLog {
	logs, _, _ := s.store.Current()
	filtered := ranking.Filter(logs, period)
	out := make([]models.DailyLog, len(filtered))
	for i := range filtered {
		out[len(filtered)-1-i] = filtered[i]
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Date.After(out[b].Date)
	})
	return out
}

func (s *LogService) changed(ctx context.Context, eventType string, log models.DailyLog, actor *models.User) {
	refresh(ctx, s.store, realtime.Logs, s.logger)
	publish(ctx, s.publisher, events.Event{
		Type:       eventType,
		RecordID:   log.ID,
		ClassID:    log.ClassID,
		Week:       log.Week,
		TotalScore: log.TotalScore,
		Actor:      actor.ID,
	}, s.logger)
}
