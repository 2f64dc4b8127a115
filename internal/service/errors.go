package service

import (
	"context"
	"errors"
	"log/slog"

	"saodo/internal/events"
	"saodo/internal/realtime"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrEmailTaken            = errors.New("email already taken")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountNotProvisioned = errors.New("no account exists for this email")
	ErrLastAdmin             = errors.New("cannot remove the last admin")
	ErrGeneratorUnavailable  = errors.New("report generator is not configured")
	ErrNoLogsForWeek         = errors.New("no logs recorded for this week")
)

// refresh reloads a pushed collection after a write. The write already
// succeeded, so a failed reload is logged rather than returned.
func refresh(ctx context.Context, store *realtime.Store, collection realtime.Collection, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.Reload(ctx, collection); err != nil {
		logger.Error("snapshot_reload_failed", slog.String("collection", string(collection)), slog.Any("err", err))
	}
}

// publish emits a change event, logging delivery problems
func publish(ctx context.Context, publisher *events.Publisher, event events.Event, logger *slog.Logger) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("event_enqueue_failed", slog.String("type", event.Type), slog.Any("err", err))
	}
}
