package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 90
)

type StatsService interface {
	// DeliveryStats summarizes one registration's deliveries over the last
	// days days (0 means the default week).
	DeliveryStats(ctx context.Context, serviceID, registrationID int64, days int) (*model.DeliveryStats, error)
	ApprovalStats(ctx context.Context, serviceID int64) (*model.ApprovalStats, error)
}

type statsService struct {
	stats         store.StatsStore
	registrations store.WebhookRegistrationStore
	now           func() time.Time
}

func NewStatsService(stats store.StatsStore, registrations store.WebhookRegistrationStore) StatsService {
	return &statsService{stats: stats, registrations: registrations, now: time.Now}
}

func (s *statsService) DeliveryStats(ctx context.Context, serviceID, registrationID int64, days int) (*model.DeliveryStats, error) {
	if days == 0 {
		days = DefaultStatsDays
	}
	if days < 1 || days > MaxStatsDays {
		return nil, invalidf("days must be between 1 and %d", MaxStatsDays)
	}

	if _, err := s.registrations.Get(ctx, serviceID, registrationID); err != nil {
		return nil, fromStore(err, "getting webhook registration")
	}

	since := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	counts, err := s.stats.RegistrationDeliveryCounts(ctx, registrationID, since)
	if err != nil {
		return nil, fmt.Errorf("counting deliveries: %w", err)
	}

	return &model.DeliveryStats{
		RegistrationID: registrationID,
		Days:           days,
		DeliveryCounts: counts,
		SuccessRate:    percentage(counts.Success, counts.Total),
	}, nil
}

func (s *statsService) ApprovalStats(ctx context.Context, serviceID int64) (*model.ApprovalStats, error) {
	rows, err := s.stats.ApprovalBreakdown(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("approval breakdown: %w", err)
	}

	out := &model.ApprovalStats{
		ByStatus:   map[model.ApprovalStatus]int64{},
		ByPriority: map[model.Priority]int64{},
		ByUrgency:  map[model.Urgency]int64{},
		ByType:     map[model.ApprovalType]int64{},
	}
	for _, r := range rows {
		out.Total += r.Count
		out.ByStatus[r.Status] += r.Count
		out.ByPriority[r.Priority] += r.Count
		out.ByUrgency[r.Urgency] += r.Count
		out.ByType[r.Type] += r.Count
	}

	approved := out.ByStatus[model.ApprovalStatusApproved]
	rejected := out.ByStatus[model.ApprovalStatusRejected]
	out.ApprovalRate = percentage(approved, approved+rejected)

	avg, err := s.stats.AverageCompletionSeconds(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("average completion: %w", err)
	}
	out.AverageCompletionSeconds = math.Round(avg*100) / 100

	since := s.now().UTC().Add(-DefaultStatsDays * 24 * time.Hour)
	out.DeliveriesLast7Days, err = s.stats.ServiceDeliveryCounts(ctx, serviceID, since)
	if err != nil {
		return nil, fmt.Errorf("counting service deliveries: %w", err)
	}
	return out, nil
}

// percentage returns part/whole*100 rounded to two decimals, or 0 for an
// empty whole.
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
