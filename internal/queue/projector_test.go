package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

func item(status model.AppointmentStatus, queueNumber *int) model.LiveQueueItem {
	return model.LiveQueueItem{
		Appointment: model.Appointment{
			Status:      status,
			QueueNumber: queueNumber,
		},
	}
}

func intPtr(v int) *int { return &v }

func TestProjectBucketsAndSortsWaiting(t *testing.T) {
	items := []model.LiveQueueItem{
		item(model.AppointmentStatusBooked, intPtr(5)),
		item(model.AppointmentStatusBooked, intPtr(2)),
		item(model.AppointmentStatusInProgress, intPtr(1)),
	}

	p := Project(items)

	require.Len(t, p.Waiting, 2)
	assert.Equal(t, 2, *p.Waiting[0].Appointment.QueueNumber)
	assert.Equal(t, 5, *p.Waiting[1].Appointment.QueueNumber)
	assert.Len(t, p.InProgress, 1)
	assert.Empty(t, p.Other)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 0, p.Dropped())
}

func TestProjectMissingQueueNumbersSortLast(t *testing.T) {
	items := []model.LiveQueueItem{
		item(model.AppointmentStatusCheckedIn, nil),
		item(model.AppointmentStatusBooked, intPtr(9)),
		item(model.AppointmentStatusBooked, intPtr(1)),
	}

	p := Project(items)

	require.Len(t, p.Waiting, 3)
	assert.Equal(t, 1, *p.Waiting[0].Appointment.QueueNumber)
	assert.Equal(t, 9, *p.Waiting[1].Appointment.QueueNumber)
	assert.Nil(t, p.Waiting[2].Appointment.QueueNumber)
}

func TestProjectIgnoresPredictedPositionForOrdering(t *testing.T) {
	unnumbered := item(model.AppointmentStatusCheckedIn, nil)
	unnumbered.QueuePosition = intPtr(1)

	items := []model.LiveQueueItem{
		unnumbered,
		item(model.AppointmentStatusBooked, intPtr(5)),
	}

	p := Project(items)

	// a predicted front-of-line position never beats an assigned number
	require.Len(t, p.Waiting, 2)
	require.NotNil(t, p.Waiting[0].Appointment.QueueNumber)
	assert.Equal(t, 5, *p.Waiting[0].Appointment.QueueNumber)
	assert.Nil(t, p.Waiting[1].Appointment.QueueNumber)
	// the prediction itself still passes through untouched
	assert.Equal(t, intPtr(1), p.Waiting[1].QueuePosition)
}

func TestProjectTerminalStatusesLandInOther(t *testing.T) {
	items := []model.LiveQueueItem{
		item(model.AppointmentStatusCompleted, intPtr(1)),
		item(model.AppointmentStatusRejected, nil),
		item(model.AppointmentStatusNoShow, nil),
		item(model.AppointmentStatusCancelled, nil),
	}

	p := Project(items)

	assert.Empty(t, p.InProgress)
	assert.Empty(t, p.Waiting)
	require.Len(t, p.Other, 4)
	// input order preserved
	assert.Equal(t, model.AppointmentStatusCompleted, p.Other[0].Appointment.Status)
	assert.Equal(t, model.AppointmentStatusCancelled, p.Other[3].Appointment.Status)
}

func TestProjectDropsUnrecognizedStatuses(t *testing.T) {
	items := []model.LiveQueueItem{
		item(model.AppointmentStatus("TRIAGED"), intPtr(1)),
		item(model.AppointmentStatusBooked, intPtr(2)),
		item(model.AppointmentStatusRequested, nil),
	}

	p := Project(items)

	assert.Len(t, p.Waiting, 1)
	assert.Equal(t, 3, p.Total)
	// TRIAGED and REQUESTED excluded from every bucket, visible via counts
	assert.Equal(t, 2, p.Dropped())
}

func TestProjectNeverDropsActiveItems(t *testing.T) {
	items := []model.LiveQueueItem{
		item(model.AppointmentStatusInProgress, nil),
		item(model.AppointmentStatusBooked, intPtr(4)),
		item(model.AppointmentStatusCheckedIn, intPtr(3)),
	}

	p := Project(items)

	assert.Equal(t, len(items), len(p.InProgress)+len(p.Waiting))
}

func TestProjectPassesWaitEstimatesThrough(t *testing.T) {
	confidence := 0.85
	it := item(model.AppointmentStatusBooked, intPtr(1))
	it.EstimatedWaitMinutes = intPtr(25)
	it.Confidence = &confidence

	p := Project([]model.LiveQueueItem{it})

	require.Len(t, p.Waiting, 1)
	assert.Equal(t, 25, *p.Waiting[0].EstimatedWaitMinutes)
	assert.Equal(t, 0.85, *p.Waiting[0].Confidence)
}

func TestProjectEmptyInput(t *testing.T) {
	p := Project(nil)
	assert.NotNil(t, p.InProgress)
	assert.NotNil(t, p.Waiting)
	assert.NotNil(t, p.Other)
	assert.Equal(t, 0, p.Total)
}
