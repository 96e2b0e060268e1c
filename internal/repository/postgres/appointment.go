package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, patient_name, clinic_id, clinic_name,
	department_id, department_name, doctor_id, doctor_name,
	appointment_type, scheduled_date, scheduled_start_time,
	status, queue_number, estimated_wait_minutes, is_walk_in,
	notes, cancellation_reason, checked_in_at, started_at,
	completed_at, created_at, updated_at
`

// Book inserts a BOOKED appointment and assigns it the next queue number
// for its clinic and date. The advisory lock serializes concurrent bookings
// in the same scope so numbers never collide or skip.
func (r *appointmentRepository) Book(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.assignQueueNumber(ctx, tx, apt); err != nil {
			return err
		}
		if err := r.insert(ctx, tx, apt); err != nil {
			return err
		}
		return r.stageEvent(ctx, tx, event)
	})
}

// assignQueueNumber hands out the next number for the appointment's clinic
// and date. The advisory lock serializes concurrent writers in the same
// scope so numbers never collide or skip.
func (r *appointmentRepository) assignQueueNumber(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment) error {
	lockKey := apt.ClinicID.String() + apt.ScheduledDate.Format("2006-01-02")
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("failed to lock booking scope: %w", err)
	}

	var next int
	err := tx.GetContext(ctx, &next, `
		SELECT COALESCE(MAX(queue_number), 0) + 1
		FROM appointments
		WHERE clinic_id = $1 AND scheduled_date = $2
	`, apt.ClinicID, apt.ScheduledDate)
	if err != nil {
		return fmt.Errorf("failed to compute queue number: %w", err)
	}
	apt.QueueNumber = &next
	return nil
}

// CreateRequest inserts a REQUESTED appointment. No queue number is
// assigned until staff approve it into a booking.
func (r *appointmentRepository) CreateRequest(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insert(ctx, tx, apt); err != nil {
			return err
		}
		return r.stageEvent(ctx, tx, event)
	})
}

func (r *appointmentRepository) insert(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
	`
	_, err := tx.ExecContext(ctx, query,
		apt.ID, apt.PatientID, apt.PatientName, apt.ClinicID, apt.ClinicName,
		apt.DepartmentID, apt.DepartmentName, apt.DoctorID, apt.DoctorName,
		apt.AppointmentType, apt.ScheduledDate, apt.ScheduledStartTime,
		apt.Status, apt.QueueNumber, apt.EstimatedWaitMinutes, apt.IsWalkIn,
		apt.Notes, apt.CancellationReason, apt.CheckedInAt, apt.StartedAt,
		apt.CompletedAt, apt.CreatedAt, apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err == sql.ErrNoRows {
		return nil, &errors.AppError{Code: errors.ErrNotFound, Message: "appointment not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// Update persists a transitioned appointment and stages its event in the
// same transaction.
func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.update(ctx, tx, apt, event)
	})
}

// UpdateAndAssignQueue is the approval path: the request joins the day's
// queue as part of the same transition that books it.
func (r *appointmentRepository) UpdateAndAssignQueue(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if apt.QueueNumber == nil {
			if err := r.assignQueueNumber(ctx, tx, apt); err != nil {
				return err
			}
		}
		return r.update(ctx, tx, apt, event)
	})
}

func (r *appointmentRepository) update(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment, event *model.OutboxEvent) error {
	// mirror of assignQueueNumber: only queued statuses carry a number
	if !apt.Status.HasQueueNumber() {
		apt.QueueNumber = nil
	}

	query := `
		UPDATE appointments
		SET clinic_id = $1, department_id = $2, doctor_id = $3,
			appointment_type = $4, scheduled_date = $5,
			scheduled_start_time = $6, status = $7, queue_number = $8,
			notes = $9, cancellation_reason = $10, checked_in_at = $11,
			started_at = $12, completed_at = $13, updated_at = $14
		WHERE id = $15
	`
	result, err := tx.ExecContext(ctx, query,
		apt.ClinicID, apt.DepartmentID, apt.DoctorID,
		apt.AppointmentType, apt.ScheduledDate,
		apt.ScheduledStartTime, apt.Status, apt.QueueNumber,
		apt.Notes, apt.CancellationReason, apt.CheckedInAt,
		apt.StartedAt, apt.CompletedAt, apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return &errors.AppError{Code: errors.ErrNotFound, Message: "appointment not found"}
	}

	return r.stageEvent(ctx, tx, event)
}

// List applies the normalized criteria and returns one page plus the total
// match count. Empty criteria fields mean no filter.
func (r *appointmentRepository) List(ctx context.Context, c *model.FilterCriteria) ([]*model.Appointment, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if c.ClinicID != "" {
		add("clinic_id = $%d", c.ClinicID)
	}
	if c.DepartmentID != "" {
		add("department_id = $%d", c.DepartmentID)
	}
	if c.DoctorID != "" {
		add("doctor_id = $%d", c.DoctorID)
	}
	if c.DateFrom != "" {
		add("scheduled_date >= $%d", c.DateFrom)
	}
	if c.DateTo != "" {
		add("scheduled_date <= $%d", c.DateTo)
	}
	if c.Status != "" {
		add("status = $%d", c.Status)
	} else if c.View == model.ViewHistory {
		conds = append(conds, "status IN ('COMPLETED', 'REJECTED', 'NO_SHOW', 'CANCELLED')")
	}
	if c.AppointmentType != "" {
		add("appointment_type = $%d", c.AppointmentType)
	}
	if c.PatientName != "" {
		add("patient_name ILIKE $%d", "%"+c.PatientName+"%")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM appointments"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := "SELECT " + appointmentColumns + " FROM appointments" + where +
		fmt.Sprintf(" ORDER BY scheduled_date ASC, scheduled_start_time ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, c.Limit, (c.Page-1)*c.Limit)

	var items []*model.Appointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return items, total, nil
}

// ListLive returns today's non-REQUESTED appointments for the clinic scope
// in creation order. Bucketing and queue ordering happen in the projector.
func (r *appointmentRepository) ListLive(ctx context.Context, clinicID uuid.UUID, departmentID, doctorID *uuid.UUID) ([]*model.Appointment, error) {
	conds := []string{"clinic_id = $1", "scheduled_date = $2", "status <> 'REQUESTED'"}
	args := []interface{}{clinicID, time.Now().Format("2006-01-02")}

	if departmentID != nil {
		args = append(args, *departmentID)
		conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if doctorID != nil {
		args = append(args, *doctorID)
		conds = append(conds, fmt.Sprintf("doctor_id = $%d", len(args)))
	}

	query := "SELECT " + appointmentColumns + " FROM appointments WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY created_at ASC"

	var items []*model.Appointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list live appointments: %w", err)
	}
	return items, nil
}
