package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/internal/repository"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

const (
	keyClinics = "clinics"
)

func keyDepartments(clinicID uuid.UUID) string { return "departments:" + clinicID.String() }
func keyDoctors(departmentID uuid.UUID) string { return "doctors:" + departmentID.String() }
func keyShifts(doctorID, departmentID uuid.UUID) string {
	return "shifts:" + doctorID.String() + ":" + departmentID.String()
}

// Service is a read-through cache over the clinic/department/doctor/shift
// tables. It guarantees nothing beyond "reflects the last successful fetch";
// mutation paths invalidate keys and the next read refetches. Catalog data
// is never patched in place.
type Service struct {
	repo  repository.CatalogRepository
	cache *gocache.Cache
}

func NewService(repo repository.CatalogRepository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) Clinics(ctx context.Context) ([]*model.Clinic, error) {
	if cached, ok := s.cache.Get(keyClinics); ok {
		return cached.([]*model.Clinic), nil
	}
	clinics, err := s.repo.ListClinics(ctx)
	if err != nil {
		return nil, errors.NewUpstream("list clinics", err)
	}
	s.cache.SetDefault(keyClinics, clinics)
	return clinics, nil
}

// DepartmentsFor returns the departments of a clinic. An unset clinic id
// yields an empty list, not an error.
func (s *Service) DepartmentsFor(ctx context.Context, clinicID uuid.UUID) ([]*model.Department, error) {
	if clinicID == uuid.Nil {
		return []*model.Department{}, nil
	}
	key := keyDepartments(clinicID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Department), nil
	}
	departments, err := s.repo.ListDepartments(ctx, clinicID)
	if err != nil {
		return nil, errors.NewUpstream(fmt.Sprintf("list departments for clinic %s", clinicID), err)
	}
	s.cache.SetDefault(key, departments)
	return departments, nil
}

// DoctorsFor returns the doctors of a department; unset id yields an empty
// list.
func (s *Service) DoctorsFor(ctx context.Context, departmentID uuid.UUID) ([]*model.Doctor, error) {
	if departmentID == uuid.Nil {
		return []*model.Doctor{}, nil
	}
	key := keyDoctors(departmentID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Doctor), nil
	}
	doctors, err := s.repo.ListDoctors(ctx, departmentID)
	if err != nil {
		return nil, errors.NewUpstream(fmt.Sprintf("list doctors for department %s", departmentID), err)
	}
	s.cache.SetDefault(key, doctors)
	return doctors, nil
}

func (s *Service) ShiftsFor(ctx context.Context, doctorID, departmentID uuid.UUID) ([]*model.DoctorShift, error) {
	if doctorID == uuid.Nil || departmentID == uuid.Nil {
		return []*model.DoctorShift{}, nil
	}
	key := keyShifts(doctorID, departmentID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.DoctorShift), nil
	}
	shifts, err := s.repo.ListShifts(ctx, doctorID, departmentID)
	if err != nil {
		return nil, errors.NewUpstream(fmt.Sprintf("list shifts for doctor %s", doctorID), err)
	}
	s.cache.SetDefault(key, shifts)
	return shifts, nil
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	now := time.Now()
	clinic := &model.Clinic{
		ID:        uuid.New(),
		Name:      req.Name,
		Address:   req.Address,
		Contact:   req.Contact,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateClinic(ctx, clinic); err != nil {
		return nil, errors.NewUpstream("create clinic", err)
	}
	s.InvalidateClinics()
	return clinic, nil
}

func (s *Service) CreateDepartment(ctx context.Context, req *model.CreateDepartmentRequest) (*model.Department, error) {
	now := time.Now()
	department := &model.Department{
		ID:        uuid.New(),
		ClinicID:  req.ClinicID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, errors.NewUpstream("create department", err)
	}
	s.InvalidateDepartments(req.ClinicID)
	return department, nil
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	now := time.Now()
	doctor := &model.Doctor{
		ID:           uuid.New(),
		DepartmentID: req.DepartmentID,
		ClinicID:     req.ClinicID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateDoctor(ctx, doctor); err != nil {
		return nil, errors.NewUpstream("create doctor", err)
	}
	s.InvalidateDoctors(req.DepartmentID)
	return doctor, nil
}

// ReplaceShifts swaps a doctor's working blocks for one weekday. A day-off
// entry may not coexist with timed blocks on the same day.
func (s *Service) ReplaceShifts(ctx context.Context, doctorID uuid.UUID, req *model.UpsertShiftRequest) ([]*model.DoctorShift, error) {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, errors.NewValidation("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if req.IsDayOff && len(req.Shifts) > 0 {
		return nil, errors.NewValidation("a day off cannot carry working blocks")
	}
	if !req.IsDayOff && len(req.Shifts) == 0 {
		return nil, errors.NewValidation("a working day needs at least one block")
	}

	now := time.Now()
	var shifts []*model.DoctorShift
	if req.IsDayOff {
		shifts = append(shifts, &model.DoctorShift{
			ID:           uuid.New(),
			DoctorID:     doctorID,
			DepartmentID: req.DepartmentID,
			DayOfWeek:    req.DayOfWeek,
			IsDayOff:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	} else {
		for _, block := range req.Shifts {
			start, end := block.StartTime, block.EndTime
			shifts = append(shifts, &model.DoctorShift{
				ID:           uuid.New(),
				DoctorID:     doctorID,
				DepartmentID: req.DepartmentID,
				DayOfWeek:    req.DayOfWeek,
				StartTime:    &start,
				EndTime:      &end,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}

	if err := s.repo.ReplaceShifts(ctx, doctorID, req.DepartmentID, req.DayOfWeek, shifts); err != nil {
		return nil, errors.NewUpstream("replace shifts", err)
	}
	s.InvalidateShifts(doctorID, req.DepartmentID)
	return shifts, nil
}

// InvalidateClinics drops the cached clinic list after a clinic mutation.
func (s *Service) InvalidateClinics() {
	s.cache.Delete(keyClinics)
}

func (s *Service) InvalidateDepartments(clinicID uuid.UUID) {
	s.cache.Delete(keyDepartments(clinicID))
}

func (s *Service) InvalidateDoctors(departmentID uuid.UUID) {
	s.cache.Delete(keyDoctors(departmentID))
}

func (s *Service) InvalidateShifts(doctorID, departmentID uuid.UUID) {
	s.cache.Delete(keyShifts(doctorID, departmentID))
}
