package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/internal/repository"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
)

// defaultSlotMinutes is the consultation length assumed when estimating
// waits for items without a stored prediction.
const defaultSlotMinutes = 15

// Service builds live-queue snapshots from the appointment store.
type Service struct {
	repo        repository.AppointmentRepository
	metrics     *metrics.Metrics
	slotMinutes int
}

func NewService(repo repository.AppointmentRepository, m *metrics.Metrics, slotMinutes int) *Service {
	if slotMinutes <= 0 {
		slotMinutes = defaultSlotMinutes
	}
	return &Service{repo: repo, metrics: m, slotMinutes: slotMinutes}
}

// Snapshot fetches today's live appointments for the clinic scope and
// projects them into display buckets. Waiting items without a stored
// estimate get one derived from their position in line.
func (s *Service) Snapshot(ctx context.Context, clinicID uuid.UUID, departmentID, doctorID *uuid.UUID) (*Projection, error) {
	rows, err := s.repo.ListLive(ctx, clinicID, departmentID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list live appointments: %w", err)
	}

	items := make([]model.LiveQueueItem, 0, len(rows))
	for _, apt := range rows {
		items = append(items, model.LiveQueueItem{
			Appointment: *apt,
			WaitEstimate: model.WaitEstimate{
				EstimatedWaitMinutes: apt.EstimatedWaitMinutes,
			},
		})
	}

	p := Project(items)
	s.estimateWaits(&p)

	s.metrics.LiveQueueDepth.WithLabelValues(clinicID.String()).Set(float64(len(p.Waiting)))
	if dropped := p.Dropped(); dropped > 0 {
		s.metrics.LiveQueueDropped.Add(float64(dropped))
	}
	return &p, nil
}

// estimateWaits fills positions and a coarse wait prediction for waiting
// items that arrived without them. Stored predictions pass through
// untouched, position included, with no confidence attached; their accuracy
// is not ours to claim. Locally derived confidence decays with distance
// from the front of the line.
func (s *Service) estimateWaits(p *Projection) {
	busy := len(p.InProgress)
	for i := range p.Waiting {
		item := &p.Waiting[i]
		if item.QueuePosition != nil {
			continue
		}
		position := i + 1
		item.QueuePosition = &position

		if item.EstimatedWaitMinutes != nil {
			continue
		}
		wait := (position - 1 + busy) * s.slotMinutes
		confidence := confidenceFor(position)
		item.EstimatedWaitMinutes = &wait
		item.Confidence = &confidence
	}
}

func confidenceFor(position int) float64 {
	switch {
	case position <= 3:
		return 0.9
	case position <= 10:
		return 0.7
	}
	return 0.5
}
