package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository persists appointments. Queue numbers are
	// assigned only here, inside the write transaction; the state machine
	// treats them as opaque.
	AppointmentRepository interface {
		// Book inserts the appointment and assigns the next queue number
		// for its clinic and date in one transaction.
		Book(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		// CreateRequest inserts a REQUESTED appointment without a queue
		// number.
		CreateRequest(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update persists a transitioned appointment and stages the event
		// in the outbox within the same transaction.
		Update(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		// UpdateAndAssignQueue is Update plus queue-number assignment, for
		// transitions that move a request into the day's queue.
		UpdateAndAssignQueue(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		List(ctx context.Context, criteria *model.FilterCriteria) ([]*model.Appointment, int, error)
		ListLive(ctx context.Context, clinicID uuid.UUID, departmentID, doctorID *uuid.UUID) ([]*model.Appointment, error)
	}

	// CatalogRepository is the persistent side of the resource catalog.
	CatalogRepository interface {
		ListClinics(ctx context.Context) ([]*model.Clinic, error)
		GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		CreateClinic(ctx context.Context, clinic *model.Clinic) error
		UpdateClinic(ctx context.Context, clinic *model.Clinic) error
		ListDepartments(ctx context.Context, clinicID uuid.UUID) ([]*model.Department, error)
		CreateDepartment(ctx context.Context, department *model.Department) error
		ListDoctors(ctx context.Context, departmentID uuid.UUID) ([]*model.Doctor, error)
		CreateDoctor(ctx context.Context, doctor *model.Doctor) error
		ListShifts(ctx context.Context, doctorID, departmentID uuid.UUID) ([]*model.DoctorShift, error)
		// ReplaceShifts swaps out a doctor's entries for one weekday.
		ReplaceShifts(ctx context.Context, doctorID, departmentID uuid.UUID, dayOfWeek int, shifts []*model.DoctorShift) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	}
)
