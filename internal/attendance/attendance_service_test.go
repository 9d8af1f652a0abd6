package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	attendanceerrors "github.com/Justoo1/daycare-management-system-sub000/internal/attendance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn                 func(ctx context.Context, a *Attendance) error
	findByChildAndDateFn     func(ctx context.Context, tenantID, childID string, date time.Time) (*Attendance, error)
	findByIDAndTenantFn      func(ctx context.Context, tenantID, id string) (*Attendance, error)
	findAllByTenantAndDateFn func(ctx context.Context, tenantID string, date time.Time) ([]Attendance, error)
	updateFn                 func(ctx context.Context, a *Attendance) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository                    { return f }
func (f *fakeRepo) Create(ctx context.Context, a *Attendance) error { return f.createFn(ctx, a) }
func (f *fakeRepo) FindByChildAndDate(ctx context.Context, tenantID, childID string, date time.Time) (*Attendance, error) {
	return f.findByChildAndDateFn(ctx, tenantID, childID, date)
}
func (f *fakeRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Attendance, error) {
	return f.findByIDAndTenantFn(ctx, tenantID, id)
}
func (f *fakeRepo) FindAllByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]Attendance, error) {
	return f.findAllByTenantAndDateFn(ctx, tenantID, date)
}
func (f *fakeRepo) Update(ctx context.Context, a *Attendance) error { return f.updateFn(ctx, a) }

func TestService_CheckIn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New().String()
	childID := uuid.New().String()
	ctx := context.Background()

	var saved Attendance
	repo := &fakeRepo{}
	repo.createFn = func(ctx context.Context, a *Attendance) error { saved = *a; return nil }
	repo.findByChildAndDateFn = func(ctx context.Context, tenantID, childID string, date time.Time) (*Attendance, error) {
		if saved.ID == uuid.Nil {
			return nil, gorm.ErrRecordNotFound
		}
		return &saved, nil
	}

	svc := NewService(db, repo)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.CheckIn(ctx, tenantID, uuid.New().String(), CheckInRequest{ChildID: childID})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, childID, resp.ChildID)

	// Second check-in on the same day is refused.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.CheckIn(ctx, tenantID, uuid.New().String(), CheckInRequest{ChildID: childID})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CheckIn_InvalidIDs(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{})

	_, err := svc.CheckIn(context.Background(), "nope", uuid.New().String(), CheckInRequest{ChildID: uuid.New().String()})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidTenantID)

	_, err = svc.CheckIn(context.Background(), uuid.New().String(), uuid.New().String(), CheckInRequest{ChildID: "nope"})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidChildID)
}

func TestService_GetAllByDate(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	tenantID := uuid.New().String()
	repo := &fakeRepo{
		findAllByTenantAndDateFn: func(ctx context.Context, tid string, date time.Time) ([]Attendance, error) {
			assert.Equal(t, tenantID, tid)
			assert.Equal(t, "2026-08-31", date.Format("2006-01-02"))
			return []Attendance{
				{ID: uuid.New(), TenantID: uuid.MustParse(tenantID), ChildID: uuid.New()},
				{ID: uuid.New(), TenantID: uuid.MustParse(tenantID), ChildID: uuid.New()},
			}, nil
		},
	}
	svc := NewService(db, repo)

	rows, err := svc.GetAllByDate(context.Background(), tenantID, "2026-08-31")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = svc.GetAllByDate(context.Background(), tenantID, "31/08/2026")
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateFormat)
}

func TestService_GetByID_NotFound(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{
		findByIDAndTenantFn: func(ctx context.Context, tenantID, id string) (*Attendance, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo)

	_, err := svc.GetByID(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, attendanceerrors.ErrNoCheckInRecord)
}
