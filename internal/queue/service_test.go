package queue

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
)

type stubLiveRepo struct {
	rows []*model.Appointment
}

func (r *stubLiveRepo) Book(ctx context.Context, apt *model.Appointment, e *model.OutboxEvent) error {
	return nil
}

func (r *stubLiveRepo) CreateRequest(ctx context.Context, apt *model.Appointment, e *model.OutboxEvent) error {
	return nil
}

func (r *stubLiveRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}

func (r *stubLiveRepo) UpdateAndAssignQueue(ctx context.Context, apt *model.Appointment, e *model.OutboxEvent) error {
	return nil
}

func (r *stubLiveRepo) Update(ctx context.Context, apt *model.Appointment, e *model.OutboxEvent) error {
	return nil
}

func (r *stubLiveRepo) List(ctx context.Context, c *model.FilterCriteria) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (r *stubLiveRepo) ListLive(ctx context.Context, clinicID uuid.UUID, departmentID, doctorID *uuid.UUID) ([]*model.Appointment, error) {
	return r.rows, nil
}

func intp(n int) *int { return &n }

func TestSnapshotEstimatesWaitsByPosition(t *testing.T) {
	repo := &stubLiveRepo{rows: []*model.Appointment{
		{ID: uuid.New(), Status: model.AppointmentStatusInProgress},
		{ID: uuid.New(), Status: model.AppointmentStatusCheckedIn, QueueNumber: intp(4)},
		{ID: uuid.New(), Status: model.AppointmentStatusBooked, QueueNumber: intp(2)},
	}}
	svc := NewService(repo, metrics.NewUnregistered(), 15)

	p, err := svc.Snapshot(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)

	require.Len(t, p.InProgress, 1)
	require.Len(t, p.Waiting, 2)

	// queue number 2 sorts ahead of 4
	first, second := p.Waiting[0], p.Waiting[1]
	assert.Equal(t, 2, *first.Appointment.QueueNumber)
	assert.Equal(t, 1, *first.QueuePosition)
	// one consultation in progress ahead of the line
	assert.Equal(t, 15, *first.EstimatedWaitMinutes)
	assert.Equal(t, 0.9, *first.Confidence)

	assert.Equal(t, 2, *second.QueuePosition)
	assert.Equal(t, 30, *second.EstimatedWaitMinutes)
}

func TestSnapshotKeepsStoredEstimates(t *testing.T) {
	repo := &stubLiveRepo{rows: []*model.Appointment{
		{ID: uuid.New(), Status: model.AppointmentStatusBooked, QueueNumber: intp(1), EstimatedWaitMinutes: intp(42)},
	}}
	svc := NewService(repo, metrics.NewUnregistered(), 15)

	p, err := svc.Snapshot(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)

	require.Len(t, p.Waiting, 1)
	assert.Equal(t, 42, *p.Waiting[0].EstimatedWaitMinutes)
	// stored predictions carry no locally invented confidence
	assert.Nil(t, p.Waiting[0].Confidence)
}

func TestEstimateWaitsKeepsStoredPositions(t *testing.T) {
	svc := NewService(&stubLiveRepo{}, metrics.NewUnregistered(), 15)

	stored := model.LiveQueueItem{
		Appointment: model.Appointment{Status: model.AppointmentStatusBooked},
	}
	stored.QueuePosition = intp(4)
	stored.EstimatedWaitMinutes = intp(10)

	fresh := model.LiveQueueItem{
		Appointment: model.Appointment{Status: model.AppointmentStatusCheckedIn, QueueNumber: intp(6)},
	}

	p := Projection{Waiting: []model.LiveQueueItem{stored, fresh}}
	svc.estimateWaits(&p)

	// the stored prediction is untouched, position included
	assert.Equal(t, 4, *p.Waiting[0].QueuePosition)
	assert.Equal(t, 10, *p.Waiting[0].EstimatedWaitMinutes)
	assert.Nil(t, p.Waiting[0].Confidence)

	// the unannotated item still gets its place in line
	require.NotNil(t, p.Waiting[1].QueuePosition)
	assert.Equal(t, 2, *p.Waiting[1].QueuePosition)
	assert.Equal(t, 15, *p.Waiting[1].EstimatedWaitMinutes)
}

func TestSnapshotExcludesRequested(t *testing.T) {
	repo := &stubLiveRepo{rows: []*model.Appointment{
		{ID: uuid.New(), Status: model.AppointmentStatusRequested},
		{ID: uuid.New(), Status: model.AppointmentStatusCompleted},
	}}
	svc := NewService(repo, metrics.NewUnregistered(), 0)

	p, err := svc.Snapshot(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)

	assert.Empty(t, p.InProgress)
	assert.Empty(t, p.Waiting)
	assert.Len(t, p.Other, 1)
	assert.Equal(t, 1, p.Dropped())
}
