// Package realtime keeps the latest full snapshot of the logs and classes
// collections and pushes every new snapshot to subscribers.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"saodo/internal/models"
	"saodo/internal/ranking"
)

// reloadTimeout bounds a reload once it is detached from the caller's context
const reloadTimeout = 30 * time.Second

// Collection names a pushed record collection
type Collection string

const (
	Logs    Collection = "logs"
	Classes Collection = "classes"
)

// Snapshot is the full content of one collection at one version.
// Only the field matching Collection is populated.
type Snapshot struct {
	Collection Collection
	Version    uint64
	Logs       []models.DailyLog
	Classes    []models.Class
}

// LogSource loads every stored daily log
type LogSource interface {
	GetAllLogs(ctx context.Context) ([]models.DailyLog, error)
}

// ClassSource loads every stored class
type ClassSource interface {
	GetAllClasses(ctx context.Context) ([]models.Class, error)
}

// Store holds the latest snapshots and fans them out to subscribers.
// Subscribers get a buffer of one: an unread snapshot is replaced by a newer one,
// so a slow reader never blocks a publisher.
type Store struct {
	logSource   LogSource
	classSource ClassSource
	logger      *slog.Logger

	// reloadMu serializes read-then-publish per collection so an older read
	// can never be published after a newer one
	reloadMu map[Collection]*sync.Mutex

	mu          sync.RWMutex
	logs        []models.DailyLog
	classes     []models.Class
	versions    map[Collection]uint64
	subscribers map[Collection]map[chan Snapshot]struct{}
}

// NewStore creates an empty store. Call Reload to load the initial snapshots.
func NewStore(logSource LogSource, classSource ClassSource, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logSource:   logSource,
		classSource: classSource,
		logger:      logger.With(slog.String("component", "realtime")),
		versions:    make(map[Collection]uint64),
		reloadMu: map[Collection]*sync.Mutex{
			Logs:    {},
			Classes: {},
		},
		subscribers: map[Collection]map[chan Snapshot]struct{}{
			Logs:    {},
			Classes: {},
		},
	}
}

// Reload re-reads a collection from its source and publishes it.
// Reloads follow committed writes, so cancellation of ctx is ignored;
// only its values are kept.
func (s *Store) Reload(ctx context.Context, collection Collection) error {
	lock, ok := s.reloadMu[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
	defer cancel()

	switch collection {
	case Logs:
		logs, err := s.logSource.GetAllLogs(ctx)
		if err != nil {
			return fmt.Errorf("failed to reload logs: %w", err)
		}
		s.PublishLogs(logs)
	case Classes:
		classes, err := s.classSource.GetAllClasses(ctx)
		if err != nil {
			return fmt.Errorf("failed to reload classes: %w", err)
		}
		s.PublishClasses(classes)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	return nil
}

// ReloadAll reloads every collection
func (s *Store) ReloadAll(ctx context.Context) error {
	for _, c := range []Collection{Classes, Logs} {
		if err := s.Reload(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// PublishLogs replaces the logs snapshot and notifies subscribers
func (s *Store) PublishLogs(logs []models.DailyLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = logs
	s.versions[Logs]++
	s.broadcast(Snapshot{Collection: Logs, Version: s.versions[Logs], Logs: logs})
}

// PublishClasses replaces the classes snapshot and notifies subscribers
func (s *Store) PublishClasses(classes []models.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = classes
	s.versions[Classes]++
	s.broadcast(Snapshot{Collection: Classes, Version: s.versions[Classes], Classes: classes})
}

// broadcast must be called with mu held
func (s *Store) broadcast(snap Snapshot) {
	for ch := range s.subscribers[snap.Collection] {
		offer(ch, snap)
	}
	s.logger.Debug("snapshot_published",
		slog.String("collection", string(snap.Collection)),
		slog.Uint64("version", snap.Version),
		slog.Int("subscribers", len(s.subscribers[snap.Collection])))
}

// offer delivers snap, replacing any snapshot the subscriber has not read yet
func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe registers for full snapshots of a collection. The current snapshot,
// if one has been published, is delivered immediately. The returned cancel
// function unregisters and closes the channel.
func (s *Store) Subscribe(collection Collection) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	subs, ok := s.subscribers[collection]
	if !ok {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	subs[ch] = struct{}{}
	if v := s.versions[collection]; v > 0 {
		ch <- s.snapshotLocked(collection)
	}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[collection], ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) snapshotLocked(collection Collection) Snapshot {
	snap := Snapshot{Collection: collection, Version: s.versions[collection]}
	switch collection {
	case Logs:
		snap.Logs = s.logs
	case Classes:
		snap.Classes = s.classes
	}
	return snap
}

// Current returns the latest logs and classes with their combined version.
// The returned slices are shared and must not be modified.
func (s *Store) Current() ([]models.DailyLog, []models.Class, ranking.Version) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logs, s.classes, ranking.Version{Logs: s.versions[Logs], Classes: s.versions[Classes]}
}

// SubscriberCount returns the number of active subscribers to a collection
func (s *Store) SubscriberCount(collection Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers[collection])
}
