package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

type fakeCatalogRepo struct {
	clinics     []*model.Clinic
	departments map[uuid.UUID][]*model.Department
	doctors     map[uuid.UUID][]*model.Doctor
	shifts      []*model.DoctorShift
	calls       map[string]int
	err         error
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		departments: map[uuid.UUID][]*model.Department{},
		doctors:     map[uuid.UUID][]*model.Doctor{},
		calls:       map[string]int{},
	}
}

func (f *fakeCatalogRepo) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	f.calls["clinics"]++
	return f.clinics, f.err
}

func (f *fakeCatalogRepo) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	for _, c := range f.clinics {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("clinic not found")
}

func (f *fakeCatalogRepo) CreateClinic(ctx context.Context, clinic *model.Clinic) error {
	f.clinics = append(f.clinics, clinic)
	return nil
}

func (f *fakeCatalogRepo) UpdateClinic(ctx context.Context, clinic *model.Clinic) error {
	return nil
}

func (f *fakeCatalogRepo) ListDepartments(ctx context.Context, clinicID uuid.UUID) ([]*model.Department, error) {
	f.calls["departments"]++
	return f.departments[clinicID], f.err
}

func (f *fakeCatalogRepo) CreateDepartment(ctx context.Context, department *model.Department) error {
	f.departments[department.ClinicID] = append(f.departments[department.ClinicID], department)
	return nil
}

func (f *fakeCatalogRepo) ListDoctors(ctx context.Context, departmentID uuid.UUID) ([]*model.Doctor, error) {
	f.calls["doctors"]++
	return f.doctors[departmentID], f.err
}

func (f *fakeCatalogRepo) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	f.doctors[doctor.DepartmentID] = append(f.doctors[doctor.DepartmentID], doctor)
	return nil
}

func (f *fakeCatalogRepo) ListShifts(ctx context.Context, doctorID, departmentID uuid.UUID) ([]*model.DoctorShift, error) {
	f.calls["shifts"]++
	return f.shifts, f.err
}

func (f *fakeCatalogRepo) ReplaceShifts(ctx context.Context, doctorID, departmentID uuid.UUID, dayOfWeek int, shifts []*model.DoctorShift) error {
	f.shifts = shifts
	return nil
}

func TestDepartmentsForUnsetClinicReturnsEmptyList(t *testing.T) {
	svc := NewService(newFakeCatalogRepo(), time.Minute)

	departments, err := svc.DepartmentsFor(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, departments)
}

func TestDoctorsForUnsetDepartmentReturnsEmptyList(t *testing.T) {
	svc := NewService(newFakeCatalogRepo(), time.Minute)

	doctors, err := svc.DoctorsFor(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, doctors)
}

func TestDepartmentsForCachesSecondRead(t *testing.T) {
	repo := newFakeCatalogRepo()
	clinicID := uuid.New()
	repo.departments[clinicID] = []*model.Department{{ID: uuid.New(), ClinicID: clinicID, Name: "Cardiology"}}
	svc := NewService(repo, time.Minute)

	first, err := svc.DepartmentsFor(context.Background(), clinicID)
	require.NoError(t, err)
	second, err := svc.DepartmentsFor(context.Background(), clinicID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls["departments"])
}

func TestInvalidateDepartmentsForcesRefetch(t *testing.T) {
	repo := newFakeCatalogRepo()
	clinicID := uuid.New()
	repo.departments[clinicID] = []*model.Department{{ID: uuid.New(), ClinicID: clinicID, Name: "Cardiology"}}
	svc := NewService(repo, time.Minute)

	_, err := svc.DepartmentsFor(context.Background(), clinicID)
	require.NoError(t, err)

	svc.InvalidateDepartments(clinicID)
	_, err = svc.DepartmentsFor(context.Background(), clinicID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls["departments"])
}

func TestUpstreamFailureIsPropagated(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.err = fmt.Errorf("connection refused")
	svc := NewService(repo, time.Minute)

	_, err := svc.DepartmentsFor(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream call failed")
}
