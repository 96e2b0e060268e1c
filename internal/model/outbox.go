package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent stages an appointment transition for publication. Rows are
// written in the same transaction as the appointment mutation and drained
// to the broker by the worker.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentEvent is the payload published for every state transition.
type AppointmentEvent struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	Action        string            `json:"action"`
	FromStatus    AppointmentStatus `json:"from_status"`
	ToStatus      AppointmentStatus `json:"to_status"`
	ClinicID      uuid.UUID         `json:"clinic_id"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
