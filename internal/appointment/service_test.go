package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
	"github.com/jwalitptl/clinic-queue-api/pkg/logger"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
)

// memoryRepo keeps appointments in a map and assigns queue numbers the way
// the real repository does, per clinic and date.
type memoryRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	events       []*model.OutboxEvent
	nextQueue    int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{appointments: map[uuid.UUID]*model.Appointment{}, nextQueue: 1}
}

func (r *memoryRepo) Book(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	n := r.nextQueue
	r.nextQueue++
	apt.QueueNumber = &n
	r.appointments[apt.ID] = apt
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRepo) CreateRequest(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	r.appointments[apt.ID] = apt
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, &errors.AppError{Code: errors.ErrNotFound, Message: "appointment not found"}
	}
	copied := *apt
	return &copied, nil
}

func (r *memoryRepo) Update(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	r.appointments[apt.ID] = apt
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRepo) UpdateAndAssignQueue(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	if apt.QueueNumber == nil {
		n := r.nextQueue
		r.nextQueue++
		apt.QueueNumber = &n
	}
	return r.Update(ctx, apt, event)
}

func (r *memoryRepo) List(ctx context.Context, criteria *model.FilterCriteria) ([]*model.Appointment, int, error) {
	var items []*model.Appointment
	for _, apt := range r.appointments {
		items = append(items, apt)
	}
	return items, len(items), nil
}

func (r *memoryRepo) ListLive(ctx context.Context, clinicID uuid.UUID, departmentID, doctorID *uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

type recordingNotifier struct {
	requested, booked, rejected, cancelled int
}

func (n *recordingNotifier) AppointmentRequested(ctx context.Context, apt *model.Appointment) error {
	n.requested++
	return nil
}

func (n *recordingNotifier) AppointmentBooked(ctx context.Context, apt *model.Appointment) error {
	n.booked++
	return nil
}

func (n *recordingNotifier) AppointmentRejected(ctx context.Context, apt *model.Appointment) error {
	n.rejected++
	return nil
}

func (n *recordingNotifier) AppointmentCancelled(ctx context.Context, apt *model.Appointment) error {
	n.cancelled++
	return nil
}

func newTestService(repo *memoryRepo, notifier *recordingNotifier) *Service {
	return NewService(repo, NewStateMachine(), notifier, metrics.NewUnregistered(), logger.NewLogger(nil))
}

func bookOne(t *testing.T, svc *Service) *model.Appointment {
	t.Helper()
	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID:          uuid.New(),
		ClinicID:           uuid.New(),
		DepartmentID:       uuid.New(),
		DoctorID:           uuid.New(),
		AppointmentType:    model.AppointmentTypeConsultation,
		ScheduledDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledStartTime: "10:30 AM",
	})
	require.NoError(t, err)
	return apt
}

func TestBookAssignsQueueNumberAndStagesEvent(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	apt := bookOne(t, svc)

	assert.Equal(t, model.AppointmentStatusBooked, apt.Status)
	require.NotNil(t, apt.QueueNumber)
	assert.Equal(t, 1, *apt.QueueNumber)
	require.Len(t, repo.events, 1)
	assert.Equal(t, "appointment.book", repo.events[0].EventType)
	assert.Equal(t, 1, notifier.booked)
}

func TestRequestEntersWithoutQueueNumber(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	apt, err := svc.Request(context.Background(), &model.RequestAppointmentRequest{
		PatientID:     uuid.New(),
		ClinicID:      uuid.New(),
		PreferredDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		PreferredTime: model.PreferredTimeMorning,
		Notes:         "persistent cough",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusRequested, apt.Status)
	assert.Nil(t, apt.QueueNumber)
	assert.Equal(t, 1, notifier.requested)
}

func TestFullLifecycleThroughService(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	apt := bookOne(t, svc)

	apt, err := svc.CheckIn(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCheckedIn, apt.Status)
	require.NotNil(t, apt.CheckedInAt)

	apt, err = svc.Start(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, apt.Status)

	apt, err = svc.Complete(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)
	require.NotNil(t, apt.QueueNumber)
	assert.Equal(t, 1, *apt.QueueNumber)

	// book + check_in + start + complete all staged events
	assert.Len(t, repo.events, 4)
}

func TestInvalidTransitionLeavesRecordUntouched(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	apt := bookOne(t, svc)

	_, err := svc.Start(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidTransition(err))

	stored, err := svc.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, stored.Status)
	assert.Len(t, repo.events, 1)
}

func TestApproveRequestBooksIt(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	req, err := svc.Request(ctx, &model.RequestAppointmentRequest{
		PatientID:     uuid.New(),
		ClinicID:      uuid.New(),
		PreferredDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		PreferredTime: model.PreferredTimeAny,
		Notes:         "follow up on results",
	})
	require.NoError(t, err)

	doctorID := uuid.New()
	apt, err := svc.Approve(ctx, req.ID, model.ApprovePayload{
		ClinicID:           req.ClinicID,
		DepartmentID:       uuid.New(),
		DoctorID:           doctorID,
		AppointmentType:    model.AppointmentTypeRegularCheckup,
		ScheduledStartTime: "9:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, apt.Status)
	assert.Equal(t, doctorID, *apt.DoctorID)
	require.NotNil(t, apt.QueueNumber)
	assert.Equal(t, 1, *apt.QueueNumber)
	assert.Equal(t, 1, notifier.booked)
}

func TestRejectNotifies(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	req, err := svc.Request(ctx, &model.RequestAppointmentRequest{
		PatientID:     uuid.New(),
		ClinicID:      uuid.New(),
		PreferredDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		PreferredTime: model.PreferredTimeEvening,
		Notes:         "rash",
	})
	require.NoError(t, err)

	apt, err := svc.Reject(ctx, req.ID, model.RejectPayload{CancellationReason: "no evening slots"})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRejected, apt.Status)
	assert.Equal(t, 1, notifier.rejected)
}

func TestFollowUpCreatesSecondRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	apt := bookOne(t, svc)
	_, err := svc.CheckIn(ctx, apt.ID)
	require.NoError(t, err)
	_, err = svc.Start(ctx, apt.ID)
	require.NoError(t, err)
	completed, err := svc.Complete(ctx, apt.ID)
	require.NoError(t, err)

	next, err := svc.FollowUp(ctx, completed.ID, model.FollowUpPayload{
		ScheduledDate:      time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		ScheduledStartTime: "11:00 AM",
	})
	require.NoError(t, err)

	assert.NotEqual(t, completed.ID, next.ID)
	assert.Equal(t, model.AppointmentTypeFollowUp, next.AppointmentType)
	// doctor inherited but no new doctor pinned: enters at REQUESTED
	assert.Equal(t, model.AppointmentStatusRequested, next.Status)

	original, err := svc.Get(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, original.Status)
}

func TestTerminalTransitionsReleaseQueueNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	booked := bookOne(t, svc)
	require.NotNil(t, booked.QueueNumber)

	cancelled, err := svc.Cancel(ctx, booked.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.QueueNumber)

	second := bookOne(t, svc)
	checkedIn, err := svc.CheckIn(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, checkedIn.QueueNumber)

	noShow, err := svc.NoShow(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, noShow.Status)
	assert.Nil(t, noShow.QueueNumber)
}

func TestCancelReasonOptional(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	apt := bookOne(t, svc)
	cancelled, err := svc.Cancel(ctx, apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.CancellationReason)
	assert.Equal(t, 1, notifier.cancelled)
}
