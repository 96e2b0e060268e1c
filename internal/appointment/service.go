package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/internal/repository"
	"github.com/jwalitptl/clinic-queue-api/pkg/logger"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
)

// Notifier pushes appointment updates to the clinic inbox. Failures are
// logged, never surfaced to the caller; the transition already committed.
type Notifier interface {
	AppointmentRequested(ctx context.Context, apt *model.Appointment) error
	AppointmentBooked(ctx context.Context, apt *model.Appointment) error
	AppointmentRejected(ctx context.Context, apt *model.Appointment) error
	AppointmentCancelled(ctx context.Context, apt *model.Appointment) error
}

type Service struct {
	repo     repository.AppointmentRepository
	machine  *StateMachine
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(repo repository.AppointmentRepository, machine *StateMachine, notifier Notifier, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		machine:  machine,
		notifier: notifier,
		metrics:  m,
		logger:   l,
	}
}

// Book is the staff booking path. The appointment enters at BOOKED and the
// repository assigns its queue number inside the insert transaction.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	now := time.Now()
	apt := &model.Appointment{
		ID:                 uuid.New(),
		PatientID:          req.PatientID,
		ClinicID:           req.ClinicID,
		DepartmentID:       &req.DepartmentID,
		DoctorID:           &req.DoctorID,
		AppointmentType:    req.AppointmentType,
		ScheduledDate:      req.ScheduledDate,
		ScheduledStartTime: req.ScheduledStartTime,
		Status:             model.AppointmentStatusBooked,
		IsWalkIn:           req.IsWalkIn,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	event, err := s.buildEvent(apt, "book", "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Book(ctx, apt, event); err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("book", string(apt.Status)).Inc()
	s.notify(ctx, apt, s.notifier.AppointmentBooked)
	return apt, nil
}

// Request is the patient self-service path. The appointment enters at
// REQUESTED without a queue number; staff approve or reject it later.
func (s *Service) Request(ctx context.Context, req *model.RequestAppointmentRequest) (*model.Appointment, error) {
	now := time.Now()
	notes := req.Notes
	apt := &model.Appointment{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		ClinicID:      req.ClinicID,
		DepartmentID:  req.DepartmentID,
		DoctorID:      req.DoctorID,
		ScheduledDate: req.PreferredDate,
		Status:        model.AppointmentStatusRequested,
		Notes:         &notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	event, err := s.buildEvent(apt, "request", "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRequest(ctx, apt, event); err != nil {
		return nil, fmt.Errorf("failed to create appointment request: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("request", string(apt.Status)).Inc()
	s.notify(ctx, apt, s.notifier.AppointmentRequested)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, criteria *model.FilterCriteria) ([]*model.Appointment, int, error) {
	items, total, err := s.repo.List(ctx, criteria)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return items, total, nil
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID, p model.ApprovePayload) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionApprove, func(a model.Appointment) (model.Appointment, error) {
		return s.machine.Approve(a, p)
	}, s.notifier.AppointmentBooked)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, p model.RejectPayload) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionReject, func(a model.Appointment) (model.Appointment, error) {
		return s.machine.Reject(a, p)
	}, s.notifier.AppointmentRejected)
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, p model.ReschedulePayload) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionReschedule, func(a model.Appointment) (model.Appointment, error) {
		return s.machine.Reschedule(a, p)
	}, nil)
}

func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionCheckIn, s.machine.CheckIn, nil)
}

func (s *Service) Start(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionStart, s.machine.Start, nil)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionComplete, s.machine.Complete, nil)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionCancel, func(a model.Appointment) (model.Appointment, error) {
		return s.machine.Cancel(a, reason)
	}, s.notifier.AppointmentCancelled)
}

func (s *Service) NoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, ActionNoShow, s.machine.NoShow, nil)
}

// FollowUp books a fresh FOLLOW_UP appointment off a completed one. The
// completed appointment stays untouched.
func (s *Service) FollowUp(ctx context.Context, id uuid.UUID, p model.FollowUpPayload) (*model.Appointment, error) {
	completed, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	next, err := s.machine.FollowUp(*completed, p)
	if err != nil {
		s.metrics.TransitionFailures.WithLabelValues(string(ActionFollowUp)).Inc()
		return nil, err
	}

	event, err := s.buildEvent(&next, string(ActionFollowUp), completed.Status)
	if err != nil {
		return nil, err
	}
	if next.Status == model.AppointmentStatusBooked {
		err = s.repo.Book(ctx, &next, event)
	} else {
		err = s.repo.CreateRequest(ctx, &next, event)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up appointment: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues(string(ActionFollowUp), string(next.Status)).Inc()
	if next.Status == model.AppointmentStatusBooked {
		s.notify(ctx, &next, s.notifier.AppointmentBooked)
	} else {
		s.notify(ctx, &next, s.notifier.AppointmentRequested)
	}
	return &next, nil
}

// transition loads, applies one guarded step and persists it together with
// its outbox event. The notifier call, when given, runs after commit.
func (s *Service) transition(ctx context.Context, id uuid.UUID, action Action, apply func(model.Appointment) (model.Appointment, error), notify func(context.Context, *model.Appointment) error) (*model.Appointment, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	next, err := apply(*current)
	if err != nil {
		s.metrics.TransitionFailures.WithLabelValues(string(action)).Inc()
		return nil, err
	}

	event, err := s.buildEvent(&next, string(action), current.Status)
	if err != nil {
		return nil, err
	}

	// A transition into the waiting queue must carry a queue number, so an
	// approved request picks one up here.
	persist := s.repo.Update
	if next.QueueNumber == nil && queueEntryStatus(next.Status) {
		persist = s.repo.UpdateAndAssignQueue
	}
	if err := persist(ctx, &next, event); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", action, err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues(string(action), string(next.Status)).Inc()
	if notify != nil {
		s.notify(ctx, &next, notify)
	}
	return &next, nil
}

func queueEntryStatus(status model.AppointmentStatus) bool {
	return status == model.AppointmentStatusBooked || status == model.AppointmentStatusCheckedIn
}

func (s *Service) buildEvent(apt *model.Appointment, action string, from model.AppointmentStatus) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.AppointmentEvent{
		AppointmentID: apt.ID,
		Action:        action,
		FromStatus:    from,
		ToStatus:      apt.Status,
		ClinicID:      apt.ClinicID,
		OccurredAt:    apt.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode appointment event: %w", err)
	}
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: "appointment." + action,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

func (s *Service) notify(ctx context.Context, apt *model.Appointment, send func(context.Context, *model.Appointment) error) {
	if s.notifier == nil || send == nil {
		return
	}
	if err := send(ctx, apt); err != nil {
		s.logger.Error(err, "notification failed", "appointment_id", apt.ID.String())
	}
}
