package service

import (
	"context"
	"log/slog"
	"sync"

	"saodo/internal/models"
	"saodo/internal/ranking"
	"saodo/internal/realtime"
)

// PodiumSize is the number of classes shown on the podium
const PodiumSize = 3

// RankingService answers ranking queries from the latest pushed snapshots
type RankingService struct {
	store  *realtime.Store
	memo   *ranking.Memo
	logger *slog.Logger

	mu             sync.Mutex
	orphansChecked ranking.Version
}

// NewRankingService creates a new ranking service
func NewRankingService(store *realtime.Store, logger *slog.Logger) *RankingService {
	return &RankingService{
		store:  store,
		memo:   ranking.NewMemo(),
		logger: logger.With(slog.String("component", "ranking_service")),
	}
}

// Rankings returns every class ranked for the period
func (s *RankingService) Rankings(period ranking.Period) []ranking.Item {
	logs, classes, version := s.store.Current()
	s.warnOrphans(logs, classes, version)
	return s.memo.Rankings(version, logs, classes, period)
}

// Podium returns the top classes for the period
func (s *RankingService) Podium(period ranking.Period) []ranking.Item {
	return ranking.Top(s.Rankings(period), PodiumSize)
}

// Detail returns a class's logs in the period, newest first
func (s *RankingService) Detail(classID string, period ranking.Period) []models.DailyLog {
	logs, _, _ := s.store.Current()
	return ranking.DetailFor(classID, logs, period)
}

// Orphans returns the period's logs whose class no longer exists
func (s *RankingService) Orphans(period ranking.Period) []models.DailyLog {
	logs, classes, _ := s.store.Current()
	return ranking.Orphans(logs, classes, period)
}

// warnOrphans logs once per snapshot version when logs reference unknown classes
func (s *RankingService) warnOrphans(logs []models.DailyLog, classes []models.Class, version ranking.Version) {
	s.mu.Lock()
	if s.orphansChecked == version {
		s.mu.Unlock()
		return
	}
	s.orphansChecked = version
	s.mu.Unlock()

	if orphans := ranking.Orphans(logs, classes, ranking.Year()); len(orphans) > 0 {
		s.logger.Warn("orphan_logs_ignored",
			slog.Int("count", len(orphans)),
			slog.String("first_class", orphans[0].ClassID))
	}
}

// Stream emits the period's rankings now and after every logs or classes
// snapshot. A slow reader only sees the latest rankings. The channel closes
// when ctx ends.
func (s *RankingService) Stream(ctx context.Context, period ranking.Period) <-chan []ranking.Item {
	out := make(chan []ranking.Item, 1)
	logsCh, cancelLogs := s.store.Subscribe(realtime.Logs)
	classesCh, cancelClasses := s.store.Subscribe(realtime.Classes)

	emit := func() {
		items := s.Rankings(period)
		select {
		case <-out:
		default:
		}
		out <- items
	}

	go func() {
		defer close(out)
		defer cancelLogs()
		defer cancelClasses()

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-logsCh:
				if !ok {
					return
				}
				emit()
			case _, ok := <-classesCh:
				if !ok {
					return
				}
				emit()
			}
		}
	}()
	return out
}
