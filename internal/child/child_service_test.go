package child

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	childerrors "github.com/Justoo1/daycare-management-system-sub000/internal/child/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn            func(ctx context.Context, c *Child) error
	findByIDAndTenantFn func(ctx context.Context, tenantID, id string) (*Child, error)
	findAllByTenantFn   func(ctx context.Context, tenantID string) ([]Child, error)
	updateFn            func(ctx context.Context, c *Child) error
	deleteFn            func(ctx context.Context, tenantID, id string) error
	addGuardianFn       func(ctx context.Context, g *Guardian) error
	updateGuardianFn    func(ctx context.Context, g *Guardian) error
	deleteGuardianFn    func(ctx context.Context, tenantID, childID, guardianID string) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository              { return f }
func (f *fakeRepo) Create(ctx context.Context, c *Child) error { return f.createFn(ctx, c) }
func (f *fakeRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Child, error) {
	return f.findByIDAndTenantFn(ctx, tenantID, id)
}
func (f *fakeRepo) FindAllByTenant(ctx context.Context, tenantID string) ([]Child, error) {
	return f.findAllByTenantFn(ctx, tenantID)
}
func (f *fakeRepo) Update(ctx context.Context, c *Child) error { return f.updateFn(ctx, c) }
func (f *fakeRepo) Delete(ctx context.Context, tenantID, id string) error {
	return f.deleteFn(ctx, tenantID, id)
}
func (f *fakeRepo) AddGuardian(ctx context.Context, g *Guardian) error {
	return f.addGuardianFn(ctx, g)
}
func (f *fakeRepo) UpdateGuardian(ctx context.Context, g *Guardian) error {
	return f.updateGuardianFn(ctx, g)
}
func (f *fakeRepo) DeleteGuardian(ctx context.Context, tenantID, childID, guardianID string) error {
	return f.deleteGuardianFn(ctx, tenantID, childID, guardianID)
}

type fakeCounters struct {
	next int64
}

func (f *fakeCounters) GetNextValue(ctx context.Context, tenantID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func TestService_Create(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New().String()
	ctx := context.Background()

	var saved *Child
	repo := &fakeRepo{
		createFn: func(ctx context.Context, c *Child) error {
			saved = c
			return nil
		},
	}
	svc := NewService(db, repo, &fakeCounters{})

	resp, err := svc.Create(ctx, tenantID, CreateChildRequest{
		FirstName: "Ama",
		LastName:  "Mensah",
		BirthDate: "2022-03-15",
		Guardians: []GuardianRequest{{
			FullName:           "Jane Doe",
			Relationship:       "Mother",
			Phone:              "+233555000111",
			IsAuthorizedPickup: true,
			Priority:           1,
		}},
		AuthorizedPickupPersons: []string{"Grandma Akosua"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ama", resp.FirstName)
	assert.Equal(t, "ENR-00001", resp.EnrollmentNumber)
	assert.Len(t, resp.Guardians, 1)
	assert.Equal(t, []string{"Grandma Akosua"}, resp.AuthorizedPickupPersons)

	// Guardians inherit tenant and child IDs.
	assert.Equal(t, saved.ID, saved.Guardians[0].ChildID)
	assert.Equal(t, saved.TenantID, saved.Guardians[0].TenantID)
}

func TestService_Create_InvalidBirthDate(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeCounters{})

	_, err := svc.Create(context.Background(), uuid.New().String(), CreateChildRequest{
		FirstName: "Ama",
		LastName:  "Mensah",
		BirthDate: "15/03/2022",
	})
	assert.ErrorIs(t, err, childerrors.ErrInvalidBirthDate)
}

func TestService_GetAll_CollapsesConcurrentReads(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New().String()

	var calls int32
	release := make(chan struct{})
	repo := &fakeRepo{
		findAllByTenantFn: func(ctx context.Context, tid string) ([]Child, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []Child{{ID: uuid.New(), TenantID: uuid.MustParse(tenantID)}}, nil
		},
	}
	svc := NewService(db, repo, &fakeCounters{})

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := svc.GetAll(context.Background(), tenantID)
			assert.NoError(t, err)
			results[i] = len(rows)
		}(i)
	}

	// Let the stragglers join the in-flight read before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, n := range results {
		assert.Equal(t, 1, n)
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{
		findByIDAndTenantFn: func(ctx context.Context, tenantID, id string) (*Child, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo, &fakeCounters{})

	_, err := svc.GetByID(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, childerrors.ErrChildNotFound)
}

func TestService_AddGuardian(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New()
	childID := uuid.New()

	var added *Guardian
	repo := &fakeRepo{
		findByIDAndTenantFn: func(ctx context.Context, tid, id string) (*Child, error) {
			return &Child{ID: childID, TenantID: tenantID}, nil
		},
		addGuardianFn: func(ctx context.Context, g *Guardian) error {
			added = g
			return nil
		},
	}
	svc := NewService(db, repo, &fakeCounters{})

	resp, err := svc.AddGuardian(context.Background(), tenantID.String(), childID.String(), GuardianRequest{
		FullName:           "Mark Doe",
		Relationship:       "Uncle",
		Phone:              "+233555000222",
		IsAuthorizedPickup: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Mark Doe", resp.FullName)
	assert.Equal(t, childID, added.ChildID)
	assert.True(t, added.IsAuthorizedPickup)
}

func TestService_UpdateGuardian(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New()
	childID := uuid.New()
	guardianID := uuid.New()

	var updated *Guardian
	repo := &fakeRepo{
		findByIDAndTenantFn: func(ctx context.Context, tid, id string) (*Child, error) {
			return &Child{
				ID:       childID,
				TenantID: tenantID,
				Guardians: []Guardian{{
					ID:                 guardianID,
					TenantID:           tenantID,
					ChildID:            childID,
					FullName:           "Jane Doe",
					Relationship:       "Mother",
					Phone:              "+233555000111",
					IsAuthorizedPickup: false,
				}},
			}, nil
		},
		updateGuardianFn: func(ctx context.Context, g *Guardian) error {
			updated = g
			return nil
		},
	}
	svc := NewService(db, repo, &fakeCounters{})

	resp, err := svc.UpdateGuardian(context.Background(), tenantID.String(), childID.String(), guardianID.String(), GuardianRequest{
		FullName:           "Jane Doe",
		Relationship:       "Mother",
		Phone:              "+233555000999",
		IsAuthorizedPickup: true,
		Priority:           1,
	})
	assert.NoError(t, err)
	assert.Equal(t, "+233555000999", resp.Phone)
	assert.True(t, resp.IsAuthorizedPickup)

	// Identity stays put, only the editable fields move.
	assert.Equal(t, guardianID, updated.ID)
	assert.Equal(t, childID, updated.ChildID)
	assert.Equal(t, "+233555000999", updated.Phone)

	_, err = svc.UpdateGuardian(context.Background(), tenantID.String(), childID.String(), uuid.New().String(), GuardianRequest{
		FullName: "Jane Doe",
	})
	assert.ErrorIs(t, err, childerrors.ErrGuardianNotFound)
}

func TestService_RemoveGuardian_InvalidID(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, &fakeCounters{})

	err := svc.RemoveGuardian(context.Background(), uuid.New().String(), uuid.New().String(), "nope")
	assert.ErrorIs(t, err, childerrors.ErrGuardianNotFound)
}
