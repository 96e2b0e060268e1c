package selection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-queue-api/internal/catalog"
	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

// blockingRepo lets a test hold a department fetch in flight while the
// selection moves on.
type blockingRepo struct {
	departments map[uuid.UUID][]*model.Department
	doctors     map[uuid.UUID][]*model.Doctor
	block       map[uuid.UUID]chan struct{}
}

func newBlockingRepo() *blockingRepo {
	return &blockingRepo{
		departments: map[uuid.UUID][]*model.Department{},
		doctors:     map[uuid.UUID][]*model.Doctor{},
		block:       map[uuid.UUID]chan struct{}{},
	}
}

func (r *blockingRepo) ListClinics(ctx context.Context) ([]*model.Clinic, error) { return nil, nil }
func (r *blockingRepo) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return nil, nil
}
func (r *blockingRepo) CreateClinic(ctx context.Context, c *model.Clinic) error { return nil }
func (r *blockingRepo) UpdateClinic(ctx context.Context, c *model.Clinic) error { return nil }

func (r *blockingRepo) ListDepartments(ctx context.Context, clinicID uuid.UUID) ([]*model.Department, error) {
	if ch, ok := r.block[clinicID]; ok {
		<-ch
	}
	return r.departments[clinicID], nil
}

func (r *blockingRepo) CreateDepartment(ctx context.Context, d *model.Department) error { return nil }

func (r *blockingRepo) ListDoctors(ctx context.Context, departmentID uuid.UUID) ([]*model.Doctor, error) {
	return r.doctors[departmentID], nil
}

func (r *blockingRepo) CreateDoctor(ctx context.Context, d *model.Doctor) error { return nil }

func (r *blockingRepo) ListShifts(ctx context.Context, doctorID, departmentID uuid.UUID) ([]*model.DoctorShift, error) {
	return nil, nil
}

func (r *blockingRepo) ReplaceShifts(ctx context.Context, doctorID, departmentID uuid.UUID, dayOfWeek int, shifts []*model.DoctorShift) error {
	return nil
}

func newTestResolver(repo *blockingRepo) *Resolver {
	return NewResolver(catalog.NewService(repo, time.Minute))
}

func seedChain(repo *blockingRepo) (clinicID, departmentID, doctorID uuid.UUID) {
	clinicID = uuid.New()
	departmentID = uuid.New()
	doctorID = uuid.New()
	repo.departments[clinicID] = []*model.Department{
		{ID: departmentID, ClinicID: clinicID, Name: "Cardiology"},
	}
	repo.doctors[departmentID] = []*model.Doctor{
		{ID: doctorID, DepartmentID: departmentID, Name: "Dr. Rivera"},
	}
	return
}

func TestSetClinicClearsDescendants(t *testing.T) {
	repo := newBlockingRepo()
	clinicID, departmentID, doctorID := seedChain(repo)
	otherClinic := uuid.New()
	r := newTestResolver(repo)
	ctx := context.Background()

	_, err := r.SetClinic(ctx, clinicID)
	require.NoError(t, err)
	_, err = r.SetDepartment(ctx, departmentID)
	require.NoError(t, err)
	require.NoError(t, r.SetDoctor(doctorID))
	require.Equal(t, doctorID, r.Selection().DoctorID)

	_, err = r.SetClinic(ctx, otherClinic)
	require.NoError(t, err)

	sel := r.Selection()
	assert.Equal(t, otherClinic, sel.ClinicID)
	assert.Equal(t, uuid.Nil, sel.DepartmentID)
	assert.Equal(t, uuid.Nil, sel.DoctorID)
	assert.Nil(t, r.Doctors())
}

func TestSetDepartmentWithoutClinicIsNoOp(t *testing.T) {
	repo := newBlockingRepo()
	r := newTestResolver(repo)

	doctors, err := r.SetDepartment(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, doctors)
	assert.Equal(t, Selection{}, r.Selection())
}

func TestSetDoctorWithoutDepartmentIsNoOp(t *testing.T) {
	repo := newBlockingRepo()
	clinicID, _, _ := seedChain(repo)
	r := newTestResolver(repo)

	_, err := r.SetClinic(context.Background(), clinicID)
	require.NoError(t, err)
	require.NoError(t, r.SetDoctor(uuid.New()))
	assert.Equal(t, uuid.Nil, r.Selection().DoctorID)
}

func TestSetDepartmentRejectsForeignDepartment(t *testing.T) {
	repo := newBlockingRepo()
	clinicID, _, _ := seedChain(repo)
	r := newTestResolver(repo)
	ctx := context.Background()

	_, err := r.SetClinic(ctx, clinicID)
	require.NoError(t, err)

	_, err = r.SetDepartment(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, r.Selection().DepartmentID)
}

func TestStaleDepartmentFetchIsDiscarded(t *testing.T) {
	repo := newBlockingRepo()
	staleClinic := uuid.New()
	freshClinic := uuid.New()
	repo.departments[staleClinic] = []*model.Department{
		{ID: uuid.New(), ClinicID: staleClinic, Name: "Old Dept"},
	}
	freshDept := &model.Department{ID: uuid.New(), ClinicID: freshClinic, Name: "New Dept"}
	repo.departments[freshClinic] = []*model.Department{freshDept}

	release := make(chan struct{})
	repo.block[staleClinic] = release

	r := newTestResolver(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var staleResult []*model.Department
	go func() {
		defer wg.Done()
		staleResult, _ = r.SetClinic(ctx, staleClinic)
	}()

	// give the stale fetch time to get in flight, then move the selection
	time.Sleep(10 * time.Millisecond)
	fresh, err := r.SetClinic(ctx, freshClinic)
	require.NoError(t, err)
	require.Len(t, fresh, 1)

	close(release)
	wg.Wait()

	// the stale response was dropped, not applied
	assert.Nil(t, staleResult)
	require.Len(t, r.Departments(), 1)
	assert.Equal(t, freshDept.ID, r.Departments()[0].ID)
	assert.Equal(t, freshClinic, r.Selection().ClinicID)
}

func TestCompletePerRequirement(t *testing.T) {
	repo := newBlockingRepo()
	clinicID, departmentID, doctorID := seedChain(repo)
	r := newTestResolver(repo)
	ctx := context.Background()

	assert.False(t, r.Selection().Complete(RequireClinic))

	_, err := r.SetClinic(ctx, clinicID)
	require.NoError(t, err)
	assert.True(t, r.Selection().Complete(RequireClinic))
	assert.False(t, r.Selection().Complete(RequireDoctor))

	_, err = r.SetDepartment(ctx, departmentID)
	require.NoError(t, err)
	require.NoError(t, r.SetDoctor(doctorID))
	assert.True(t, r.Selection().Complete(RequireDoctor))
}

func TestManagerReusesSession(t *testing.T) {
	repo := newBlockingRepo()
	m := NewManager(catalog.NewService(repo, time.Minute))

	a := m.Get("session-1")
	b := m.Get("session-1")
	assert.Same(t, a, b)

	m.Drop("session-1")
	c := m.Get("session-1")
	assert.NotSame(t, a, c)
}
