package queue

import (
	"sort"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

// queueNumberSentinel sorts items without an assigned queue number behind
// every real position.
const queueNumberSentinel = 1 << 30

// Projection is the live-queue view: who is being seen right now, who is
// waiting in queue order, and everything terminal kept for collapsed
// display. Items with an unrecognized status are counted but never
// bucketed, so callers comparing Total against the bucket sizes notice new
// statuses instead of silently misplacing them.
type Projection struct {
	InProgress []model.LiveQueueItem `json:"in_progress"`
	Waiting    []model.LiveQueueItem `json:"waiting"`
	Other      []model.LiveQueueItem `json:"other"`
	Total      int                   `json:"total"`
}

// Dropped returns how many input items carried a status outside the defined
// set and were excluded from every bucket.
func (p *Projection) Dropped() int {
	return p.Total - len(p.InProgress) - len(p.Waiting) - len(p.Other)
}

// Project partitions live appointment items into the three display buckets.
// InProgress and Other preserve input order; Waiting is sorted by ascending
// queue number with unassigned numbers last. Wait estimates pass through
// unchanged.
func Project(items []model.LiveQueueItem) Projection {
	p := Projection{
		InProgress: []model.LiveQueueItem{},
		Waiting:    []model.LiveQueueItem{},
		Other:      []model.LiveQueueItem{},
		Total:      len(items),
	}

	for _, item := range items {
		switch item.Appointment.Status {
		case model.AppointmentStatusInProgress:
			p.InProgress = append(p.InProgress, item)
		case model.AppointmentStatusBooked, model.AppointmentStatusCheckedIn:
			p.Waiting = append(p.Waiting, item)
		case model.AppointmentStatusCompleted, model.AppointmentStatusRejected,
			model.AppointmentStatusNoShow, model.AppointmentStatusCancelled:
			p.Other = append(p.Other, item)
		}
		// REQUESTED and unknown statuses never belong in a live queue
	}

	sort.SliceStable(p.Waiting, func(i, j int) bool {
		return sortKey(p.Waiting[i]) < sortKey(p.Waiting[j])
	})

	return p
}

// sortKey orders waiting items by their assigned queue number. Items
// without one sort behind every numbered item; predicted positions are
// display annotations and never drive ordering.
func sortKey(item model.LiveQueueItem) int {
	if item.Appointment.QueueNumber != nil {
		return *item.Appointment.QueueNumber
	}
	return queueNumberSentinel
}
