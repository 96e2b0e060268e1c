package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

func (r *catalogRepository) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, address, contact, status, created_at, updated_at
		FROM clinics
		WHERE status = 'active'
		ORDER BY name ASC
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (r *catalogRepository) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, address, contact, status, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, id)
	if err == sql.ErrNoRows {
		return nil, &errors.AppError{Code: errors.ErrNotFound, Message: "clinic not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *catalogRepository) CreateClinic(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (id, name, address, contact, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		clinic.ID, clinic.Name, clinic.Address, clinic.Contact,
		clinic.Status, clinic.CreatedAt, clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateClinic(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, address = $2, contact = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		clinic.Name, clinic.Address, clinic.Contact, clinic.Status,
		clinic.UpdatedAt, clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return &errors.AppError{Code: errors.ErrNotFound, Message: "clinic not found"}
	}
	return nil
}

func (r *catalogRepository) ListDepartments(ctx context.Context, clinicID uuid.UUID) ([]*model.Department, error) {
	query := `
		SELECT id, clinic_id, name, created_at, updated_at
		FROM departments
		WHERE clinic_id = $1
		ORDER BY name ASC
	`
	var departments []*model.Department
	if err := r.db.SelectContext(ctx, &departments, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (r *catalogRepository) CreateDepartment(ctx context.Context, department *model.Department) error {
	query := `
		INSERT INTO departments (id, clinic_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		department.ID, department.ClinicID, department.Name,
		department.CreatedAt, department.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *catalogRepository) ListDoctors(ctx context.Context, departmentID uuid.UUID) ([]*model.Doctor, error) {
	query := `
		SELECT d.id, d.department_id, dep.name AS department_name,
			   d.clinic_id, d.name, d.email, d.phone, d.created_at, d.updated_at
		FROM doctors d
		JOIN departments dep ON dep.id = d.department_id
		WHERE d.department_id = $1
		ORDER BY d.name ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, departmentID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *catalogRepository) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (id, department_id, clinic_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		doctor.ID, doctor.DepartmentID, doctor.ClinicID, doctor.Name,
		doctor.Email, doctor.Phone, doctor.CreatedAt, doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *catalogRepository) ListShifts(ctx context.Context, doctorID, departmentID uuid.UUID) ([]*model.DoctorShift, error) {
	query := `
		SELECT id, doctor_id, department_id, day_of_week, start_time,
			   end_time, is_day_off, created_at, updated_at
		FROM doctor_shifts
		WHERE doctor_id = $1 AND department_id = $2
		ORDER BY day_of_week ASC, start_time ASC NULLS FIRST
	`
	var shifts []*model.DoctorShift
	if err := r.db.SelectContext(ctx, &shifts, query, doctorID, departmentID); err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// ReplaceShifts swaps a doctor's entries for one weekday in a single
// transaction so readers never see a half-updated day.
func (r *catalogRepository) ReplaceShifts(ctx context.Context, doctorID, departmentID uuid.UUID, dayOfWeek int, shifts []*model.DoctorShift) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM doctor_shifts
		WHERE doctor_id = $1 AND department_id = $2 AND day_of_week = $3
	`, doctorID, departmentID, dayOfWeek)
	if err != nil {
		return fmt.Errorf("failed to clear shifts: %w", err)
	}

	for _, shift := range shifts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO doctor_shifts (
				id, doctor_id, department_id, day_of_week, start_time,
				end_time, is_day_off, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			shift.ID, shift.DoctorID, shift.DepartmentID, shift.DayOfWeek,
			shift.StartTime, shift.EndTime, shift.IsDayOff,
			shift.CreatedAt, shift.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	return tx.Commit()
}
