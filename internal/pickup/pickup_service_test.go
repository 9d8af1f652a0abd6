package pickup

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/attendance"
	attendanceerrors "github.com/Justoo1/daycare-management-system-sub000/internal/attendance/errors"
	"github.com/Justoo1/daycare-management-system-sub000/internal/child"
	"github.com/Justoo1/daycare-management-system-sub000/internal/messaging/kafka"
	pickuperrors "github.com/Justoo1/daycare-management-system-sub000/internal/pickup/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn              func(ctx context.Context, v *PendingVerification) error
	findByIDAndTenantFn   func(ctx context.Context, tenantID, id string) (*PendingVerification, error)
	expirePendingByChildFn func(ctx context.Context, tenantID, childID string) error
	updateGuardedFn       func(ctx context.Context, v *PendingVerification, expectedAttempts int) (bool, error)
	deleteFn              func(ctx context.Context, tenantID, id string) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, v *PendingVerification) error {
	return f.createFn(ctx, v)
}
func (f *fakeRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
	return f.findByIDAndTenantFn(ctx, tenantID, id)
}
func (f *fakeRepo) ExpirePendingByChild(ctx context.Context, tenantID, childID string) error {
	return f.expirePendingByChildFn(ctx, tenantID, childID)
}
func (f *fakeRepo) UpdateGuarded(ctx context.Context, v *PendingVerification, expectedAttempts int) (bool, error) {
	return f.updateGuardedFn(ctx, v, expectedAttempts)
}
func (f *fakeRepo) Delete(ctx context.Context, tenantID, id string) error {
	return f.deleteFn(ctx, tenantID, id)
}

type fakeAttendanceRepo struct {
	findByChildAndDateFn func(ctx context.Context, tenantID, childID string, date time.Time) (*attendance.Attendance, error)
	findByIDAndTenantFn  func(ctx context.Context, tenantID, id string) (*attendance.Attendance, error)
	updateFn             func(ctx context.Context, a *attendance.Attendance) error
}

func (f *fakeAttendanceRepo) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeAttendanceRepo) Create(ctx context.Context, a *attendance.Attendance) error {
	return nil
}
func (f *fakeAttendanceRepo) FindByChildAndDate(ctx context.Context, tenantID, childID string, date time.Time) (*attendance.Attendance, error) {
	return f.findByChildAndDateFn(ctx, tenantID, childID, date)
}
func (f *fakeAttendanceRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*attendance.Attendance, error) {
	return f.findByIDAndTenantFn(ctx, tenantID, id)
}
func (f *fakeAttendanceRepo) FindAllByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) Update(ctx context.Context, a *attendance.Attendance) error {
	return f.updateFn(ctx, a)
}

type fakeChildRepo struct {
	findByIDAndTenantFn func(ctx context.Context, tenantID, id string) (*child.Child, error)
}

func (f *fakeChildRepo) WithTx(tx *sql.Tx) child.Repository { return f }
func (f *fakeChildRepo) Create(ctx context.Context, c *child.Child) error {
	return nil
}
func (f *fakeChildRepo) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*child.Child, error) {
	return f.findByIDAndTenantFn(ctx, tenantID, id)
}
func (f *fakeChildRepo) FindAllByTenant(ctx context.Context, tenantID string) ([]child.Child, error) {
	return nil, nil
}
func (f *fakeChildRepo) Update(ctx context.Context, c *child.Child) error             { return nil }
func (f *fakeChildRepo) Delete(ctx context.Context, tenantID, id string) error        { return nil }
func (f *fakeChildRepo) AddGuardian(ctx context.Context, g *child.Guardian) error     { return nil }
func (f *fakeChildRepo) UpdateGuardian(ctx context.Context, g *child.Guardian) error  { return nil }
func (f *fakeChildRepo) DeleteGuardian(ctx context.Context, tenantID, childID, guardianID string) error {
	return nil
}

type fakeGateway struct {
	sendTextFn func(ctx context.Context, phoneNumber, message string) error
}

func (f *fakeGateway) SendText(ctx context.Context, phoneNumber, message string) error {
	return f.sendTextFn(ctx, phoneNumber, message)
}

type fakeOutbox struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	return f.createFn(ctx, event)
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error             { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type serviceFixture struct {
	tenantID uuid.UUID
	actorID  uuid.UUID
	childRow child.Child
	attRow   attendance.Attendance

	repo       *fakeRepo
	attRepo    *fakeAttendanceRepo
	childRepo  *fakeChildRepo
	gateway    *fakeGateway
	outbox     *fakeOutbox
	sentTexts  []string
	sentPhones []string
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		tenantID: uuid.New(),
		actorID:  uuid.New(),
	}

	guardianID := uuid.New()
	f.childRow = child.Child{
		ID:        uuid.New(),
		TenantID:  f.tenantID,
		FirstName: "Ama",
		LastName:  "Mensah",
		Guardians: []child.Guardian{{
			ID:                 guardianID,
			FullName:           "Jane Doe",
			Relationship:       "Mother",
			Phone:              "+233555000111",
			IsAuthorizedPickup: true,
		}},
		AuthorizedPickupPersons: []string{"Grandma Akosua"},
	}

	f.attRow = attendance.Attendance{
		ID:             uuid.New(),
		TenantID:       f.tenantID,
		ChildID:        f.childRow.ID,
		AttendanceDate: time.Now().UTC().Truncate(24 * time.Hour),
		CheckIn:        time.Now().UTC().Add(-4 * time.Hour),
		Status:         attendance.StatusPresent,
	}

	f.repo = &fakeRepo{
		createFn:               func(ctx context.Context, v *PendingVerification) error { return nil },
		expirePendingByChildFn: func(ctx context.Context, tenantID, childID string) error { return nil },
		updateGuardedFn: func(ctx context.Context, v *PendingVerification, expectedAttempts int) (bool, error) {
			return true, nil
		},
		deleteFn: func(ctx context.Context, tenantID, id string) error { return nil },
	}
	f.attRepo = &fakeAttendanceRepo{
		findByChildAndDateFn: func(ctx context.Context, tenantID, childID string, date time.Time) (*attendance.Attendance, error) {
			row := f.attRow
			return &row, nil
		},
		findByIDAndTenantFn: func(ctx context.Context, tenantID, id string) (*attendance.Attendance, error) {
			row := f.attRow
			return &row, nil
		},
		updateFn: func(ctx context.Context, a *attendance.Attendance) error {
			f.attRow = *a
			return nil
		},
	}
	f.childRepo = &fakeChildRepo{
		findByIDAndTenantFn: func(ctx context.Context, tenantID, id string) (*child.Child, error) {
			row := f.childRow
			return &row, nil
		},
	}
	f.gateway = &fakeGateway{
		sendTextFn: func(ctx context.Context, phoneNumber, message string) error {
			f.sentPhones = append(f.sentPhones, phoneNumber)
			f.sentTexts = append(f.sentTexts, message)
			return nil
		},
	}
	f.outbox = &fakeOutbox{
		createFn: func(ctx context.Context, event kafka.OutboxEvent) error { return nil },
	}
	return f
}

func (f *serviceFixture) build(db *sql.DB) Service {
	return NewService(db, Config{}, f.repo, f.attRepo, f.childRepo, f.gateway, f.outbox)
}

func TestService_CheckOutDirect(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	var published kafka.OutboxEvent
	f.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
		published = event
		return nil
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), "", DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "jane  doe",
	})
	assert.NoError(t, err)
	assert.NotNil(t, resp.CheckOut)
	assert.NotNil(t, f.attRow.CheckOut)
	assert.Equal(t, "jane  doe", *f.attRow.PickupName)
	assert.Equal(t, "checkout.completed", published.EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CheckOutDirect_NotAuthorized(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	svc := f.build(db)

	_, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), "", DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "John Smith",
	})
	assert.ErrorIs(t, err, pickuperrors.ErrNotAuthorizedPickup)
	assert.Nil(t, f.attRow.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CheckOutDirect_FreeTextListAllowed(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), "", DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Grandma Akosua",
	})
	assert.NoError(t, err)
	assert.NotNil(t, resp.CheckOut)
}

func TestService_CheckOutDirect_AlreadyCheckedOut(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	done := time.Now().UTC()
	f.attRow.CheckOut = &done
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), "", DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CheckOutDirect_NoCheckInToday(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	f.attRepo.findByChildAndDateFn = func(ctx context.Context, tenantID, childID string, date time.Time) (*attendance.Attendance, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), "", DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrNoCheckInRecord)
}

func TestService_CheckOutDirect_WrongClassScope(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	childClass := uuid.New()
	f.childRow.ClassID = &childClass
	svc := f.build(db)

	_, err := svc.CheckOutDirect(context.Background(), f.tenantID.String(), f.actorID.String(), uuid.New().String(), DirectCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.ErrorIs(t, err, pickuperrors.ErrWrongClassScope)
}

func TestService_InitiateSecureCheckout(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	var created PendingVerification
	var retiredChild string
	f.repo.createFn = func(ctx context.Context, v *PendingVerification) error {
		created = *v
		return nil
	}
	f.repo.expirePendingByChildFn = func(ctx context.Context, tenantID, childID string) error {
		retiredChild = childID
		return nil
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.InitiateSecureCheckout(context.Background(), f.tenantID.String(), f.actorID.String(), "", InitiateCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.NoError(t, err)

	// Any previous PENDING row for this child is retired first.
	assert.Equal(t, f.childRow.ID.String(), retiredChild)

	assert.Equal(t, StatusPending, created.Status)
	assert.Len(t, created.Code, 6)
	assert.Equal(t, 3, created.MaxAttempts)
	assert.Equal(t, "+233555000111", created.PickupPhone)

	// The code goes to the guardian, not the caller.
	assert.Equal(t, []string{"+233555000111"}, f.sentPhones)
	assert.Contains(t, f.sentTexts[0], created.Code)
	assert.NotContains(t, resp.MaskedPhone, "555000")
	assert.Equal(t, 3, resp.AttemptsRemaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_InitiateSecureCheckout_NoPhoneOnFile(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	f.childRow.Guardians[0].Phone = ""
	svc := f.build(db)

	_, err := svc.InitiateSecureCheckout(context.Background(), f.tenantID.String(), f.actorID.String(), "", InitiateCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.ErrorIs(t, err, pickuperrors.ErrNoPhoneOnFile)
	assert.Empty(t, f.sentPhones)
}

func TestService_InitiateSecureCheckout_FreeTextHasNoPhone(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	svc := f.build(db)

	// On the free-text list there is nobody to text a code to.
	_, err := svc.InitiateSecureCheckout(context.Background(), f.tenantID.String(), f.actorID.String(), "", InitiateCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Grandma Akosua",
	})
	assert.ErrorIs(t, err, pickuperrors.ErrNoPhoneOnFile)
}

func TestService_InitiateSecureCheckout_DeliveryFailureRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	var deletedID string
	f.repo.deleteFn = func(ctx context.Context, tenantID, id string) error {
		deletedID = id
		return nil
	}
	f.gateway.sendTextFn = func(ctx context.Context, phoneNumber, message string) error {
		return errors.New("provider timeout")
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.InitiateSecureCheckout(context.Background(), f.tenantID.String(), f.actorID.String(), "", InitiateCheckoutRequest{
		ChildID:          f.childRow.ID.String(),
		PickupPersonName: "Jane Doe",
	})
	assert.ErrorIs(t, err, pickuperrors.ErrDeliveryFailure)
	assert.NotEmpty(t, deletedID)
}

func verificationFixture(f *serviceFixture) *PendingVerification {
	return &PendingVerification{
		ID:           uuid.New(),
		TenantID:     f.tenantID,
		ChildID:      f.childRow.ID,
		AttendanceID: f.attRow.ID,
		Code:         "123456",
		Status:       StatusPending,
		ExpiresAt:    time.Now().UTC().Add(10 * time.Minute),
		Attempts:     0,
		MaxAttempts:  3,
		PickupName:   "Jane Doe",
		PickupPhone:  "+233555000111",
		RequestedBy:  f.actorID,
	}
}

func TestService_VerifyCheckoutCode(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	var guardedExpected int
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		guardedExpected = expectedAttempts
		return true, nil
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "123456")
	assert.NoError(t, err)
	assert.Equal(t, StatusVerified, resp.Status)
	assert.NotNil(t, resp.Attendance)
	assert.Equal(t, StatusVerified, guarded.Status)
	assert.Equal(t, 0, guardedExpected)
	assert.NotNil(t, f.attRow.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_VerifyCheckoutCode_EarlyPickupBoundary(t *testing.T) {
	cases := []struct {
		name       string
		checkOutAt time.Time
		status     string
	}{
		{"before cutoff", time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), attendance.StatusEarlyPickup},
		{"after cutoff", time.Date(2026, 8, 31, 16, 30, 0, 0, time.UTC), attendance.StatusPresent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, _ := sqlmock.New()
			defer db.Close()

			f := newServiceFixture()
			v := verificationFixture(f)
			at := tc.checkOutAt
			v.CheckOutAt = &at
			f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
				row := *v
				return &row, nil
			}
			svc := f.build(db)

			mock.ExpectBegin()
			mock.ExpectCommit()
			_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "123456")
			assert.NoError(t, err)
			assert.Equal(t, tc.status, f.attRow.Status)
			assert.Equal(t, tc.checkOutAt, *f.attRow.CheckOut)
		})
	}
}

func TestService_VerifyCheckoutCode_WrongCode(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		return true, nil
	}
	svc := f.build(db)

	_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "000000")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2 attempt(s) remaining")
	assert.Equal(t, 1, guarded.Attempts)
	assert.Nil(t, f.attRow.CheckOut)
}

func TestService_VerifyCheckoutCode_GuardLost(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		return false, nil
	}
	svc := f.build(db)

	// A concurrent submission already moved the attempt counter.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "123456")
	assert.ErrorIs(t, err, pickuperrors.ErrVerificationConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_VerifyCheckoutCode_AlreadyCheckedOutStaysPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	done := time.Now().UTC()
	f.attRow.CheckOut = &done
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	updateCalled := false
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		updateCalled = true
		return true, nil
	}
	svc := f.build(db)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "123456")
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)

	// The correct code must not be consumed: the entry stays PENDING so the
	// caller can sort out the attendance record and retry.
	assert.False(t, updateCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_VerifyCheckoutCode_MaxAttempts(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	v.Attempts = 2
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		return true, nil
	}
	svc := f.build(db)

	_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", v.ID.String(), "999999")
	assert.ErrorIs(t, err, pickuperrors.ErrMaxAttemptsExceeded)
	assert.Equal(t, StatusFailed, guarded.Status)
	assert.Nil(t, f.attRow.CheckOut)
}

func TestService_ResendCode(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	v.Attempts = 2
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	var guardedExpected int
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		guardedExpected = expectedAttempts
		return true, nil
	}
	svc := f.build(db)

	resp, err := svc.ResendCode(context.Background(), f.tenantID.String(), "", v.ID.String())
	assert.NoError(t, err)

	// Old code is invalidated, counter reset, deadline extended.
	assert.NotEqual(t, "123456", guarded.Code)
	assert.Len(t, guarded.Code, 6)
	assert.Equal(t, 0, guarded.Attempts)
	assert.Equal(t, 2, guardedExpected)
	assert.True(t, guarded.ExpiresAt.After(v.ExpiresAt))

	assert.Equal(t, 3, resp.AttemptsRemaining)
	assert.Contains(t, f.sentTexts[0], guarded.Code)
}

func TestService_ResendCode_Expired(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	v.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		return true, nil
	}
	svc := f.build(db)

	_, err := svc.ResendCode(context.Background(), f.tenantID.String(), "", v.ID.String())
	assert.ErrorIs(t, err, pickuperrors.ErrCodeExpired)
	assert.Equal(t, StatusExpired, guarded.Status)
	assert.Empty(t, f.sentPhones)
}

func TestService_ResendCode_DeliveryFailureKeepsReset(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		return true, nil
	}
	f.gateway.sendTextFn = func(ctx context.Context, phoneNumber, message string) error {
		return errors.New("provider timeout")
	}
	svc := f.build(db)

	_, err := svc.ResendCode(context.Background(), f.tenantID.String(), "", v.ID.String())
	assert.ErrorIs(t, err, pickuperrors.ErrDeliveryFailure)
	// The rotation already happened; the old code must stay dead.
	assert.NotEqual(t, "123456", guarded.Code)
}

func TestService_CancelPendingCheckout(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	var guarded *PendingVerification
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		guarded = nv
		return true, nil
	}
	svc := f.build(db)

	err := svc.CancelPendingCheckout(context.Background(), f.tenantID.String(), "", v.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusExpired, guarded.Status)
}

func TestService_CancelPendingCheckout_TerminalIsNoOp(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	v := verificationFixture(f)
	v.Status = StatusVerified
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		row := *v
		return &row, nil
	}
	updateCalled := false
	f.repo.updateGuardedFn = func(ctx context.Context, nv *PendingVerification, expectedAttempts int) (bool, error) {
		updateCalled = true
		return true, nil
	}
	svc := f.build(db)

	err := svc.CancelPendingCheckout(context.Background(), f.tenantID.String(), "", v.ID.String())
	assert.NoError(t, err)
	assert.False(t, updateCalled)
}

func TestService_VerificationNotFound(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	f := newServiceFixture()
	f.repo.findByIDAndTenantFn = func(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := f.build(db)

	_, err := svc.VerifyCheckoutCode(context.Background(), f.tenantID.String(), f.actorID.String(), "", uuid.New().String(), "123456")
	assert.ErrorIs(t, err, pickuperrors.ErrVerificationNotFound)
}
