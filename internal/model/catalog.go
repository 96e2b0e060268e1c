package model

import (
	"time"

	"github.com/google/uuid"
)

type Clinic struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address,omitempty"`
	Contact   string    `db:"contact" json:"contact,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Department belongs to exactly one clinic.
type Department struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor is assigned to one department for selection purposes, even when
// they serve several departments across the week.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	DepartmentID   uuid.UUID `db:"department_id" json:"department_id"`
	DepartmentName string    `db:"department_name" json:"department_name,omitempty"`
	ClinicID       uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email,omitempty"`
	Phone          string    `db:"phone" json:"phone,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorShift is one working block on a weekday. Split shifts produce
// several rows for the same day; a day-off row carries no times and must be
// the only row for that day.
type DoctorShift struct {
	ID           uuid.UUID `db:"id" json:"id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	IsDayOff     bool      `db:"is_day_off" json:"is_day_off"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateClinicRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type CreateDepartmentRequest struct {
	ClinicID uuid.UUID `json:"clinic_id" binding:"required"`
	Name     string    `json:"name" binding:"required"`
}

type CreateDoctorRequest struct {
	DepartmentID uuid.UUID `json:"department_id" binding:"required"`
	ClinicID     uuid.UUID `json:"clinic_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Email        string    `json:"email" binding:"omitempty,email"`
	Phone        string    `json:"phone"`
}

// UpsertShiftRequest replaces a doctor's shifts for one weekday. Day-off and
// timed entries are mutually exclusive per day.
type UpsertShiftRequest struct {
	DepartmentID uuid.UUID    `json:"department_id" binding:"required"`
	DayOfWeek    int          `json:"day_of_week" binding:"min=0,max=6"`
	IsDayOff     bool         `json:"is_day_off"`
	Shifts       []ShiftBlock `json:"shifts"`
}

type ShiftBlock struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}
