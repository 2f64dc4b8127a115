package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"saodo/internal/service"
)

const streamHeartbeat = 25 * time.Second

// RankingHandler serves rankings, podiums and class details
type RankingHandler struct {
	rankingService *service.RankingService
	logger         *slog.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankingService *service.RankingService, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
		logger:         logger.With(slog.String("component", "rankings")),
	}
}

// Rankings returns every class ranked for ?period=
func (h *RankingHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, RankingsView{Period: period.String(), Items: h.rankingService.Rankings(period)})
}

// Podium returns the top classes for ?period=
func (h *RankingHandler) Podium(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, RankingsView{Period: period.String(), Items: h.rankingService.Podium(period)})
}

// ClassDetail returns one class's logs for ?period=, newest first
func (h *RankingHandler) ClassDetail(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}
	classID := r.PathValue("classId")
	respondJSON(w, http.StatusOK, ClassDetailView{
		ClassID: classID,
		Period:  period.String(),
		Logs:    newLogViews(h.rankingService.Detail(classID, period)),
	})
}

// Orphans lists logs whose class no longer exists
func (h *RankingHandler) Orphans(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newLogViews(h.rankingService.Orphans(period)))
}

// Stream pushes the rankings for ?period= as server-sent events, once on
// connect and again whenever logs or classes change.
func (h *RankingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	period, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would cut long-lived streams
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && err != http.ErrNotSupported {
		h.logger.Warn("stream_deadline_failed", slog.Any("err", err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("stream_flush_unsupported", slog.Any("err", err))
		return
	}

	ctx := r.Context()
	updates := h.rankingService.Stream(ctx, period)
	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	h.logger.Debug("stream_opened", slog.String("period", period.String()))
	defer h.logger.Debug("stream_closed", slog.String("period", period.String()))

	for {
		select {
		case <-ctx.Done():
			return
		case items, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(RankingsView{Period: period.String(), Items: items})
			if err != nil {
				h.logger.Error("stream_encode_failed", slog.Any("err", err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: rankings\ndata: %s\n\n", payload); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
