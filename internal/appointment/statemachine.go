package appointment

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

// Action is a staff or patient operation on an appointment.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionReschedule Action = "reschedule"
	ActionCheckIn    Action = "check_in"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionNoShow     Action = "no_show"
	ActionFollowUp   Action = "follow_up"
)

// transitionTable maps each action to the statuses it may be applied from.
var transitionTable = map[Action][]model.AppointmentStatus{
	ActionApprove: {model.AppointmentStatusRequested},
	ActionReject:  {model.AppointmentStatusRequested},
	ActionReschedule: {
		model.AppointmentStatusRequested,
		model.AppointmentStatusBooked,
		model.AppointmentStatusCheckedIn,
	},
	ActionCheckIn:  {model.AppointmentStatusBooked},
	ActionStart:    {model.AppointmentStatusCheckedIn},
	ActionComplete: {model.AppointmentStatusInProgress},
	ActionCancel: {
		model.AppointmentStatusRequested,
		model.AppointmentStatusBooked,
		model.AppointmentStatusCheckedIn,
		model.AppointmentStatusInProgress,
	},
	ActionNoShow: {
		model.AppointmentStatusBooked,
		model.AppointmentStatusCheckedIn,
	},
	ActionFollowUp: {model.AppointmentStatusCompleted},
}

// CanApply reports whether action is legal from the given status.
func CanApply(status model.AppointmentStatus, action Action) bool {
	for _, from := range transitionTable[action] {
		if from == status {
			return true
		}
	}
	return false
}

// AllowedActions returns every action legal from the given status, sorted
// for stable error messages and API output.
func AllowedActions(status model.AppointmentStatus) []Action {
	var actions []Action
	for action, froms := range transitionTable {
		for _, from := range froms {
			if from == status {
				actions = append(actions, action)
				break
			}
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// InvalidTransitionError reports an action attempted from a status it is not
// defined for. Reaching this from the UI means the action buttons and the
// record drifted apart.
type InvalidTransitionError struct {
	Current model.AppointmentStatus
	Action  Action
	Allowed []Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed from status %s (allowed: %v)", e.Action, e.Current, e.Allowed)
}

func newInvalidTransition(status model.AppointmentStatus, action Action) error {
	inner := &InvalidTransitionError{
		Current: status,
		Action:  action,
		Allowed: AllowedActions(status),
	}
	return &errors.AppError{
		Code:    errors.ErrInvalidTransition,
		Message: inner.Error(),
		Err:     inner,
	}
}

// StateMachine applies guarded transitions to appointments. It never
// assigns or infers queue numbers; those come from the booking repository.
// It does clear the number on transitions that leave the day's queue, so
// only BOOKED, CHECKED_IN, IN_PROGRESS and COMPLETED records carry one.
type StateMachine struct {
	now func() time.Time
}

func NewStateMachine() *StateMachine {
	return &StateMachine{now: time.Now}
}

// NewStateMachineAt pins the clock, for tests.
func NewStateMachineAt(now func() time.Time) *StateMachine {
	return &StateMachine{now: now}
}

func (m *StateMachine) guard(a *model.Appointment, action Action) error {
	if !CanApply(a.Status, action) {
		return newInvalidTransition(a.Status, action)
	}
	return nil
}

// Approve turns a patient request into a booking. Staff must pin down the
// clinic, department, doctor, type and start time.
func (m *StateMachine) Approve(a model.Appointment, p model.ApprovePayload) (model.Appointment, error) {
	if err := m.guard(&a, ActionApprove); err != nil {
		return a, err
	}
	if p.ClinicID == uuid.Nil || p.DepartmentID == uuid.Nil || p.DoctorID == uuid.Nil {
		return a, errors.NewValidation("approve requires clinic, department and doctor")
	}
	if !p.AppointmentType.Valid() {
		return a, errors.NewValidation("approve requires a valid appointment type")
	}
	if p.ScheduledStartTime == "" {
		return a, errors.NewValidation("approve requires a scheduled start time")
	}

	a.Status = model.AppointmentStatusBooked
	a.ClinicID = p.ClinicID
	a.DepartmentID = &p.DepartmentID
	a.DoctorID = &p.DoctorID
	a.AppointmentType = p.AppointmentType
	a.ScheduledStartTime = p.ScheduledStartTime
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	a.UpdatedAt = m.now()
	return a, nil
}

func (m *StateMachine) Reject(a model.Appointment, p model.RejectPayload) (model.Appointment, error) {
	if err := m.guard(&a, ActionReject); err != nil {
		return a, err
	}
	if p.CancellationReason == "" {
		return a, errors.NewValidation("reject requires a cancellation reason")
	}

	a.Status = model.AppointmentStatusRejected
	a.QueueNumber = nil
	reason := p.CancellationReason
	a.CancellationReason = &reason
	a.UpdatedAt = m.now()
	return a, nil
}

// Reschedule moves the appointment to a new date and time without changing
// its status. Clinic, department and doctor may optionally move with it.
func (m *StateMachine) Reschedule(a model.Appointment, p model.ReschedulePayload) (model.Appointment, error) {
	if err := m.guard(&a, ActionReschedule); err != nil {
		return a, err
	}
	if p.ScheduledDate.IsZero() || p.ScheduledStartTime == "" {
		return a, errors.NewValidation("reschedule requires a new date and start time")
	}

	a.ScheduledDate = p.ScheduledDate
	a.ScheduledStartTime = p.ScheduledStartTime
	if p.ClinicID != nil {
		a.ClinicID = *p.ClinicID
	}
	if p.DepartmentID != nil {
		a.DepartmentID = p.DepartmentID
	}
	if p.DoctorID != nil {
		a.DoctorID = p.DoctorID
	}
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	a.UpdatedAt = m.now()
	return a, nil
}

func (m *StateMachine) CheckIn(a model.Appointment) (model.Appointment, error) {
	if err := m.guard(&a, ActionCheckIn); err != nil {
		return a, err
	}
	now := m.now()
	a.Status = model.AppointmentStatusCheckedIn
	a.CheckedInAt = &now
	a.UpdatedAt = now
	return a, nil
}

func (m *StateMachine) Start(a model.Appointment) (model.Appointment, error) {
	if err := m.guard(&a, ActionStart); err != nil {
		return a, err
	}
	now := m.now()
	a.Status = model.AppointmentStatusInProgress
	a.StartedAt = &now
	a.UpdatedAt = now
	return a, nil
}

func (m *StateMachine) Complete(a model.Appointment) (model.Appointment, error) {
	if err := m.guard(&a, ActionComplete); err != nil {
		return a, err
	}
	now := m.now()
	a.Status = model.AppointmentStatusCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	return a, nil
}

func (m *StateMachine) Cancel(a model.Appointment, reason *string) (model.Appointment, error) {
	if err := m.guard(&a, ActionCancel); err != nil {
		return a, err
	}
	a.Status = model.AppointmentStatusCancelled
	// the slot is released; the number must not survive the exit
	a.QueueNumber = nil
	if reason != nil && *reason != "" {
		a.CancellationReason = reason
	}
	a.UpdatedAt = m.now()
	return a, nil
}

func (m *StateMachine) NoShow(a model.Appointment) (model.Appointment, error) {
	if err := m.guard(&a, ActionNoShow); err != nil {
		return a, err
	}
	a.Status = model.AppointmentStatusNoShow
	a.QueueNumber = nil
	a.UpdatedAt = m.now()
	return a, nil
}

// FollowUp derives a fresh FOLLOW_UP appointment from a completed one. The
// completed appointment is returned to the caller unchanged; only the new
// record is created. It enters at BOOKED when a doctor is given, otherwise
// at REQUESTED for later approval.
func (m *StateMachine) FollowUp(completed model.Appointment, p model.FollowUpPayload) (model.Appointment, error) {
	if err := m.guard(&completed, ActionFollowUp); err != nil {
		return model.Appointment{}, err
	}
	if p.ScheduledDate.IsZero() || p.ScheduledStartTime == "" {
		return model.Appointment{}, errors.NewValidation("follow-up requires a date and start time")
	}

	now := m.now()
	next := model.Appointment{
		ID:                 uuid.New(),
		PatientID:          completed.PatientID,
		PatientName:        completed.PatientName,
		ClinicID:           completed.ClinicID,
		DepartmentID:       completed.DepartmentID,
		AppointmentType:    model.AppointmentTypeFollowUp,
		ScheduledDate:      p.ScheduledDate,
		ScheduledStartTime: p.ScheduledStartTime,
		Status:             model.AppointmentStatusRequested,
		Notes:              p.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.DoctorID != nil {
		next.DoctorID = p.DoctorID
		next.Status = model.AppointmentStatusBooked
	} else {
		next.DoctorID = completed.DoctorID
	}
	return next, nil
}
