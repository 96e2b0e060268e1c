package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusRequested  AppointmentStatus = "REQUESTED"
	AppointmentStatusRejected   AppointmentStatus = "REJECTED"
	AppointmentStatusBooked     AppointmentStatus = "BOOKED"
	AppointmentStatusCheckedIn  AppointmentStatus = "CHECKED_IN"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusNoShow     AppointmentStatus = "NO_SHOW"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
)

// AllAppointmentStatuses lists every defined status. Items carrying anything
// else came from a newer writer and must not be bucketed blindly.
var AllAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusRequested,
	AppointmentStatusRejected,
	AppointmentStatusBooked,
	AppointmentStatusCheckedIn,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
	AppointmentStatusNoShow,
	AppointmentStatusCancelled,
}

func (s AppointmentStatus) Valid() bool {
	for _, known := range AllAppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusRejected, AppointmentStatusCompleted,
		AppointmentStatusNoShow, AppointmentStatusCancelled:
		return true
	}
	return false
}

// HasQueueNumber reports whether an appointment in this status must carry a
// queue number. The number itself is assigned by the booking repository.
func (s AppointmentStatus) HasQueueNumber() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusCheckedIn,
		AppointmentStatusInProgress, AppointmentStatusCompleted:
		return true
	}
	return false
}

var statusLabels = map[AppointmentStatus]string{
	AppointmentStatusRequested:  "Requested",
	AppointmentStatusRejected:   "Rejected",
	AppointmentStatusBooked:     "Booked",
	AppointmentStatusCheckedIn:  "Checked In",
	AppointmentStatusInProgress: "In Progress",
	AppointmentStatusCompleted:  "Completed",
	AppointmentStatusNoShow:     "No Show",
	AppointmentStatusCancelled:  "Cancelled",
}

// Label returns the display name for a status. Display only; transition
// logic never consults labels.
func (s AppointmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type AppointmentType string

const (
	AppointmentTypeRegularCheckup AppointmentType = "REGULAR_CHECKUP"
	AppointmentTypeFollowUp       AppointmentType = "FOLLOW_UP"
	AppointmentTypeEmergency      AppointmentType = "EMERGENCY"
	AppointmentTypeConsultation   AppointmentType = "CONSULTATION"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeRegularCheckup, AppointmentTypeFollowUp,
		AppointmentTypeEmergency, AppointmentTypeConsultation:
		return true
	}
	return false
}

type PreferredTime string

const (
	PreferredTimeMorning   PreferredTime = "MORNING"
	PreferredTimeAfternoon PreferredTime = "AFTERNOON"
	PreferredTimeEvening   PreferredTime = "EVENING"
	PreferredTimeAny       PreferredTime = "ANY"
)

type Appointment struct {
	ID                   uuid.UUID         `db:"id" json:"id"`
	PatientID            uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName          string            `db:"patient_name" json:"patient_name,omitempty"`
	ClinicID             uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	ClinicName           string            `db:"clinic_name" json:"clinic_name,omitempty"`
	DepartmentID         *uuid.UUID        `db:"department_id" json:"department_id,omitempty"`
	DepartmentName       *string           `db:"department_name" json:"department_name,omitempty"`
	DoctorID             *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	DoctorName           *string           `db:"doctor_name" json:"doctor_name,omitempty"`
	AppointmentType      AppointmentType   `db:"appointment_type" json:"appointment_type"`
	ScheduledDate        time.Time         `db:"scheduled_date" json:"scheduled_date"`
	ScheduledStartTime   string            `db:"scheduled_start_time" json:"scheduled_start_time,omitempty"`
	Status               AppointmentStatus `db:"status" json:"status"`
	QueueNumber          *int              `db:"queue_number" json:"queue_number,omitempty"`
	EstimatedWaitMinutes *int              `db:"estimated_wait_minutes" json:"estimated_wait_minutes,omitempty"`
	IsWalkIn             bool              `db:"is_walk_in" json:"is_walk_in"`
	Notes                *string           `db:"notes" json:"notes,omitempty"`
	CancellationReason   *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CheckedInAt          *time.Time        `db:"checked_in_at" json:"checked_in_at,omitempty"`
	StartedAt            *time.Time        `db:"started_at" json:"started_at,omitempty"`
	CompletedAt          *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// BookAppointmentRequest is the staff booking path; it enters at BOOKED.
type BookAppointmentRequest struct {
	PatientID          uuid.UUID       `json:"patient_id" binding:"required"`
	ClinicID           uuid.UUID       `json:"clinic_id" binding:"required"`
	DepartmentID       uuid.UUID       `json:"department_id" binding:"required"`
	DoctorID           uuid.UUID       `json:"doctor_id" binding:"required"`
	AppointmentType    AppointmentType `json:"appointment_type" binding:"required"`
	ScheduledDate      time.Time       `json:"scheduled_date" binding:"required" time_format:"2006-01-02"`
	ScheduledStartTime string          `json:"scheduled_start_time" binding:"required"`
	Notes              *string         `json:"notes"`
	IsWalkIn           bool            `json:"is_walk_in"`
}

// RequestAppointmentRequest is the patient self-service path; it enters at
// REQUESTED and staff later approve or reject it.
type RequestAppointmentRequest struct {
	PatientID     uuid.UUID     `json:"patient_id" binding:"required"`
	ClinicID      uuid.UUID     `json:"clinic_id" binding:"required"`
	PreferredDate time.Time     `json:"preferred_date" binding:"required" time_format:"2006-01-02"`
	PreferredTime PreferredTime `json:"preferred_time" binding:"required,oneof=MORNING AFTERNOON EVENING ANY"`
	DepartmentID  *uuid.UUID    `json:"department_id"`
	DoctorID      *uuid.UUID    `json:"doctor_id"`
	Notes         string        `json:"notes" binding:"required"`
}

// ApprovePayload carries everything staff pin down when turning a request
// into a booking.
type ApprovePayload struct {
	ClinicID           uuid.UUID       `json:"clinic_id" validate:"required"`
	DepartmentID       uuid.UUID       `json:"department_id" validate:"required"`
	DoctorID           uuid.UUID       `json:"doctor_id" validate:"required"`
	AppointmentType    AppointmentType `json:"appointment_type" validate:"required"`
	ScheduledStartTime string          `json:"scheduled_start_time" validate:"required"`
	Notes              *string         `json:"notes"`
}

type RejectPayload struct {
	CancellationReason string `json:"cancellation_reason" validate:"required"`
}

type ReschedulePayload struct {
	ScheduledDate      time.Time  `json:"scheduled_date" validate:"required" time_format:"2006-01-02"`
	ScheduledStartTime string     `json:"scheduled_start_time" validate:"required"`
	ClinicID           *uuid.UUID `json:"clinic_id"`
	DepartmentID       *uuid.UUID `json:"department_id"`
	DoctorID           *uuid.UUID `json:"doctor_id"`
	Notes              *string    `json:"notes"`
}

// FollowUpPayload books a fresh FOLLOW_UP appointment off a completed one.
// The completed appointment is never mutated.
type FollowUpPayload struct {
	ScheduledDate      time.Time  `json:"scheduled_date" validate:"required" time_format:"2006-01-02"`
	ScheduledStartTime string     `json:"scheduled_start_time" validate:"required"`
	DoctorID           *uuid.UUID `json:"doctor_id"`
	Notes              *string    `json:"notes"`
}

// WaitEstimate is the optional prediction attached to live queue rows.
// Absence of a prediction is not an error; values pass through untouched.
type WaitEstimate struct {
	QueuePosition        *int     `json:"queue_position,omitempty"`
	EstimatedWaitMinutes *int     `json:"estimated_wait_minutes,omitempty"`
	Confidence           *float64 `json:"confidence,omitempty"`
}

// LiveQueueItem pairs an appointment with its wait estimate for live views.
type LiveQueueItem struct {
	Appointment Appointment `json:"appointment"`
	WaitEstimate
}
