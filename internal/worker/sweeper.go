package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/store"
)

type SweeperConfig struct {
	Interval time.Duration
	Batch    int32
	// DispatchGrace is how long an event may sit undispatched before the
	// sweeper assumes its post-commit enqueue was lost.
	DispatchGrace time.Duration
	// RequeueBackoff pushes a claimed retry back out when enqueueing it fails.
	RequeueBackoff time.Duration
}

// Sweeper turns due delivery retries and stranded events into queue tasks.
type Sweeper struct {
	deliveries store.WebhookDeliveryStore
	events     store.WebhookEventStore
	producer   queue.Producer
	cfg        SweeperConfig
	now        func() time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

type SweepResult struct {
	RetriesEnqueued int
	EventsEnqueued  int
}

func NewSweeper(deliveries store.WebhookDeliveryStore, events store.WebhookEventStore, producer queue.Producer, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 50
	}
	if cfg.DispatchGrace <= 0 {
		cfg.DispatchGrace = 2 * time.Minute
	}
	if cfg.RequeueBackoff <= 0 {
		cfg.RequeueBackoff = 30 * time.Second
	}
	return &Sweeper{
		deliveries: deliveries,
		events:     events,
		producer:   producer,
		cfg:        cfg,
		now:        time.Now,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "approvals.worker.sweeper",
	})

	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "sweeper started",
		"interval", s.cfg.Interval,
		"dispatch_grace", s.cfg.DispatchGrace)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "sweeper stopping")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "sweep cycle error", "error", err)
			}
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}

func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.now().UTC()

	due, err := s.deliveries.ClaimDue(ctx, now, s.cfg.Batch)
	if err != nil {
		return result, fmt.Errorf("claiming due deliveries: %w", err)
	}
	for _, d := range due {
		if err := s.producer.Enqueue(ctx, queue.DeliveryRetry(d.ID, d.EventID)); err != nil {
			slog.WarnContext(ctx, "failed to enqueue delivery retry, rescheduling",
				"delivery_id", d.ID,
				"error", err)
			if rerr := s.deliveries.Reschedule(ctx, d.ID, now.Add(s.cfg.RequeueBackoff)); rerr != nil {
				slog.ErrorContext(ctx, "failed to reschedule delivery", "delivery_id", d.ID, "error", rerr)
			}
			continue
		}
		result.RetriesEnqueued++
	}

	stranded, err := s.events.ListUndispatched(ctx, now.Add(-s.cfg.DispatchGrace), s.cfg.Batch)
	if err != nil {
		return result, fmt.Errorf("listing undispatched events: %w", err)
	}
	for _, e := range stranded {
		if err := s.producer.Enqueue(ctx, queue.EventDispatch(e.ID, string(e.EventType), "")); err != nil {
			slog.WarnContext(ctx, "failed to re-enqueue stranded event",
				"event_id", e.ID,
				"error", err)
			continue
		}
		result.EventsEnqueued++
	}

	if result.RetriesEnqueued > 0 || result.EventsEnqueued > 0 {
		slog.InfoContext(ctx, "sweep enqueued tasks",
			"retries", result.RetriesEnqueued,
			"events", result.EventsEnqueued)
	}
	return result, nil
}
