package selection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/catalog"
	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

// Requirement is how deep a view needs the selection chain filled in before
// it can proceed. A live-queue filter only needs the clinic; a booking flow
// needs the whole chain.
type Requirement int

const (
	RequireClinic Requirement = iota + 1
	RequireDepartment
	RequireDoctor
)

// Selection is the clinic→department→doctor chain. By construction a
// department is never set without its clinic, nor a doctor without its
// department.
type Selection struct {
	ClinicID     uuid.UUID `json:"clinic_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
}

// Complete reports whether every level the view requires is set.
func (s Selection) Complete(req Requirement) bool {
	switch req {
	case RequireClinic:
		return s.ClinicID != uuid.Nil
	case RequireDepartment:
		return s.ClinicID != uuid.Nil && s.DepartmentID != uuid.Nil
	case RequireDoctor:
		return s.ClinicID != uuid.Nil && s.DepartmentID != uuid.Nil && s.DoctorID != uuid.Nil
	}
	return false
}

// Resolver holds one filter/booking session's selection chain and the valid
// option sets for each level. Setters clear everything downstream; option
// fetches that resolve after the selection moved on are discarded, not
// applied.
type Resolver struct {
	catalog *catalog.Service

	mu          sync.Mutex
	sel         Selection
	generation  uint64
	departments []*model.Department
	doctors     []*model.Doctor
}

func NewResolver(catalogSvc *catalog.Service) *Resolver {
	return &Resolver{catalog: catalogSvc}
}

// SetClinic selects a clinic, unconditionally clearing the department and
// doctor selections and their option sets, then loads the clinic's
// departments. A stale response (the clinic changed again while the fetch
// was in flight) is silently dropped.
func (r *Resolver) SetClinic(ctx context.Context, id uuid.UUID) ([]*model.Department, error) {
	r.mu.Lock()
	r.sel = Selection{ClinicID: id}
	r.departments = nil
	r.doctors = nil
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	if id == uuid.Nil {
		return []*model.Department{}, nil
	}

	departments, err := r.catalog.DepartmentsFor(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		// selection moved on while the fetch was in flight
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.departments = departments
	return departments, nil
}

// SetDepartment selects a department. Without a clinic it is a no-op: the
// selection is returned unchanged and no fetch happens. When the department
// option set is loaded, an id outside it is rejected.
func (r *Resolver) SetDepartment(ctx context.Context, id uuid.UUID) ([]*model.Doctor, error) {
	r.mu.Lock()
	if r.sel.ClinicID == uuid.Nil {
		r.mu.Unlock()
		return nil, nil
	}
	if id != uuid.Nil && r.departments != nil && !containsDepartment(r.departments, id) {
		r.mu.Unlock()
		return nil, errors.NewValidation("department does not belong to the selected clinic")
	}
	r.sel.DepartmentID = id
	r.sel.DoctorID = uuid.Nil
	r.doctors = nil
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	if id == uuid.Nil {
		return []*model.Doctor{}, nil
	}

	doctors, err := r.catalog.DoctorsFor(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.doctors = doctors
	return doctors, nil
}

// SetDoctor selects a doctor; a no-op when no department is selected.
func (r *Resolver) SetDoctor(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sel.DepartmentID == uuid.Nil {
		return nil
	}
	if id != uuid.Nil && r.doctors != nil && !containsDoctor(r.doctors, id) {
		return errors.NewValidation("doctor does not belong to the selected department")
	}
	r.sel.DoctorID = id
	r.generation++
	return nil
}

// Selection returns a copy of the current chain.
func (r *Resolver) Selection() Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel
}

// Departments returns the currently valid department options.
func (r *Resolver) Departments() []*model.Department {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.departments
}

// Doctors returns the currently valid doctor options.
func (r *Resolver) Doctors() []*model.Doctor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doctors
}

// Reset clears the whole chain.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sel = Selection{}
	r.departments = nil
	r.doctors = nil
	r.generation++
}

func containsDepartment(departments []*model.Department, id uuid.UUID) bool {
	for _, d := range departments {
		if d.ID == id {
			return true
		}
	}
	return false
}

func containsDoctor(doctors []*model.Doctor, id uuid.UUID) bool {
	for _, d := range doctors {
		if d.ID == id {
			return true
		}
	}
	return false
}
