// Package events publishes record change notifications to Kafka so other
// school systems can follow scoring activity.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types
const (
	TypeLogCreated     = "log.created"
	TypeLogUpdated     = "log.updated"
	TypeLogDeleted     = "log.deleted"
	TypeClassChanged   = "class.changed"
	TypeReportCreated  = "report.created"
	SchemaVersion      = "1"
	publisherQueueSize = 256
)

// Event is the JSON payload written to the topic
type Event struct {
	Type          string    `json:"type"`
	SchemaVersion string    `json:"schemaVersion"`
	RecordID      string    `json:"recordId"`
	ClassID       string    `json:"classId,omitempty"`
	Week          int       `json:"week,omitempty"`
	TotalScore    int       `json:"totalScore,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// key groups a class's events on one partition
func (e Event) key() []byte {
	if e.ClassID != "" {
		return []byte(e.ClassID)
	}
	return []byte(e.RecordID)
}

// Config holds the Kafka publishing options
type Config struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether brokers are configured
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	errNotStarted = errors.New("event publisher not started")
	errStopped    = errors.New("event publisher stopped")
)

// Publisher delivers events asynchronously. A disabled publisher accepts and drops events.
type Publisher struct {
	cfg     Config
	log     *slog.Logger
	writer  messageWriter
	enabled bool
	queue   chan Event

	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
}

// NewPublisher creates a publisher backed by a kafka.Writer
func NewPublisher(cfg Config, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Enabled() {
		log.Info("event_publisher_disabled", slog.String("component", "events"))
		return &Publisher{cfg: cfg, log: log}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("event topic must not be empty")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newPublisherWithWriter(cfg, log, writer), nil
}

func newPublisherWithWriter(cfg Config, log *slog.Logger, writer messageWriter) *Publisher {
	return &Publisher{
		cfg:     cfg,
		log:     log.With(slog.String("component", "events")),
		writer:  writer,
		enabled: true,
		queue:   make(chan Event, publisherQueueSize),
	}
}

// Start launches the delivery loop
func (p *Publisher) Start(ctx context.Context) {
	if !p.enabled {
		return
	}
	p.startOnce.Do(func() {
		p.runCtx, p.cancel = context.WithCancel(ctx)
		p.started.Store(true)
		p.wg.Add(1)
		go p.run()
		p.log.Info("event_publisher_started", slog.String("topic", p.cfg.Topic))
	})
}

// Stop drains queued events and closes the writer
func (p *Publisher) Stop(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	var stopErr error
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
		if err := p.writer.Close(); err != nil {
			p.log.Error("event_publisher_close_err", slog.Any("err", err))
		}
		p.log.Info("event_publisher_stopped")
	})
	return stopErr
}

// Publish queues an event. It never waits on the broker.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if !p.enabled {
		return nil
	}
	if !p.started.Load() {
		return errNotStarted
	}
	if event.SchemaVersion == "" {
		event.SchemaVersion = SchemaVersion
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.runCtx.Done():
		return errStopped
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.runCtx.Done():
			p.drain()
			p.started.Store(false)
			return
		case event := <-p.queue:
			p.deliver(p.runCtx, event)
		}
	}
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-p.queue:
			p.deliver(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("event_encode_err", slog.Any("err", err), slog.String("type", event.Type))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: event.key(), Value: value}); err != nil {
		p.log.Error("event_publish_err", slog.Any("err", err), slog.String("type", event.Type), slog.String("record", event.RecordID))
		return
	}
	p.log.Debug("event_published", slog.String("type", event.Type), slog.String("record", event.RecordID))
}
