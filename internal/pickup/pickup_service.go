package pickup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/attendance"
	attendanceerrors "github.com/Justoo1/daycare-management-system-sub000/internal/attendance/errors"
	"github.com/Justoo1/daycare-management-system-sub000/internal/child"
	childerrors "github.com/Justoo1/daycare-management-system-sub000/internal/child/errors"
	"github.com/Justoo1/daycare-management-system-sub000/internal/events"
	"github.com/Justoo1/daycare-management-system-sub000/internal/messaging/kafka"
	"github.com/Justoo1/daycare-management-system-sub000/internal/notification"
	pickuperrors "github.com/Justoo1/daycare-management-system-sub000/internal/pickup/errors"
	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Children leaving before this hour are recorded as EARLY_PICKUP.
const earlyPickupHour = 15

type Config struct {
	CodeTTL     time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.CodeTTL <= 0 {
		c.CodeTTL = 10 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	return c
}

//go:generate mockgen -source=pickup_service.go -destination=mock/pickup_service_mock.go -package=mock
type Service interface {
	CheckOutDirect(ctx context.Context, tenantID, actorID, actorClassID string, req DirectCheckoutRequest) (attendance.AttendanceResponse, error)
	InitiateSecureCheckout(ctx context.Context, tenantID, actorID, actorClassID string, req InitiateCheckoutRequest) (VerificationHandleResponse, error)
	VerifyCheckoutCode(ctx context.Context, tenantID, actorID, actorClassID, verificationID, code string) (VerifyCodeResponse, error)
	ResendCode(ctx context.Context, tenantID, actorClassID, verificationID string) (VerificationHandleResponse, error)
	CancelPendingCheckout(ctx context.Context, tenantID, actorClassID, verificationID string) error
}

type service struct {
	db             *sql.DB
	cfg            Config
	repo           Repository
	attendanceRepo attendance.Repository
	childRepo      child.Repository
	gateway        notification.Gateway
	outbox         kafka.OutboxRepository
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	cfg Config,
	repo Repository,
	attendanceRepo attendance.Repository,
	childRepo child.Repository,
	gateway notification.Gateway,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("pickup.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("pickup.service")
	}
	return &service{
		db:             db,
		cfg:            cfg.withDefaults(),
		repo:           repo,
		attendanceRepo: attendanceRepo,
		childRepo:      childRepo,
		gateway:        gateway,
		outbox:         outbox,
		logger:         l,
	}
}

func (s *service) CheckOutDirect(ctx context.Context, tenantID, actorID, actorClassID string, req DirectCheckoutRequest) (attendance.AttendanceResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return attendance.AttendanceResponse{}, pickuperrors.ErrInvalidActorID
	}

	c, err := s.loadChildInScope(ctx, tenantID, req.ChildID, actorClassID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	// Direct mode accepts both authorization sources: no code is involved,
	// so a free-text match without a phone number is fine.
	match, err := MatchAuthorizedPickup(c.Guardians, c.AuthorizedPickupPersons, req.PickupPersonName)
	if err != nil {
		s.logger.Warn("direct checkout refused",
			zap.String("child_id", req.ChildID),
			zap.String("claimed_name", req.PickupPersonName),
		)
		return attendance.AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	row, err := s.openAttendanceForToday(ctx, s.attendanceRepo.WithTx(tx), tenantID, req.ChildID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.finalize(row, now, actorUUID, req.PickupPersonName, req.PickupRelationship, req.PhotoURL, req.Notes)

	if err := s.attendanceRepo.WithTx(tx).Update(ctx, row); err != nil {
		s.logger.Error("direct checkout persist failed", zap.Error(err))
		return attendance.AttendanceResponse{}, err
	}

	if err := s.enqueueCheckoutEvent(ctx, tx, *c, *row, match.Phone, events.CheckoutMethodDirect); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.logger.Info("direct checkout completed",
		zap.String("attendance_id", row.ID.String()),
		zap.String("child_id", req.ChildID),
		zap.String("pickup_name", req.PickupPersonName),
		zap.String("match_source", match.Source),
	)
	return attendance.MapToResponse(*row), nil
}

func (s *service) InitiateSecureCheckout(ctx context.Context, tenantID, actorID, actorClassID string, req InitiateCheckoutRequest) (VerificationHandleResponse, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return VerificationHandleResponse{}, pickuperrors.ErrInvalidTenantID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return VerificationHandleResponse{}, pickuperrors.ErrInvalidActorID
	}

	c, err := s.loadChildInScope(ctx, tenantID, req.ChildID, actorClassID)
	if err != nil {
		return VerificationHandleResponse{}, err
	}

	match, err := MatchAuthorizedPickup(c.Guardians, c.AuthorizedPickupPersons, req.PickupPersonName)
	if err != nil {
		return VerificationHandleResponse{}, err
	}
	// Secure mode needs somewhere to deliver the code.
	if match.Phone == "" {
		return VerificationHandleResponse{}, pickuperrors.ErrNoPhoneOnFile
	}

	now := time.Now().UTC()
	row, err := s.openAttendanceForToday(ctx, s.attendanceRepo, tenantID, req.ChildID, now)
	if err != nil {
		return VerificationHandleResponse{}, err
	}

	code, err := generateCode()
	if err != nil {
		return VerificationHandleResponse{}, err
	}

	v := &PendingVerification{
		ID:                 uuid.New(),
		TenantID:           tenantUUID,
		ChildID:            c.ID,
		AttendanceID:       row.ID,
		GuardianID:         match.GuardianID,
		Code:               code,
		Status:             StatusPending,
		ExpiresAt:          now.Add(s.cfg.CodeTTL),
		Attempts:           0,
		MaxAttempts:        s.cfg.MaxAttempts,
		PickupName:         req.PickupPersonName,
		PickupRelationship: req.PickupRelationship,
		PickupPhone:        match.Phone,
		RequestedBy:        actorUUID,
		PhotoURL:           req.PhotoURL,
		Notes:              req.Notes,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VerificationHandleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// At most one PENDING per (tenant, child): the newcomer retires any
	// predecessor.
	if err := qtx.ExpirePendingByChild(ctx, tenantID, req.ChildID); err != nil {
		return VerificationHandleResponse{}, err
	}
	if err := qtx.Create(ctx, v); err != nil {
		s.logger.Error("create pending verification failed", zap.Error(err))
		return VerificationHandleResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return VerificationHandleResponse{}, err
	}

	message := fmt.Sprintf(
		"%s %s pickup verification code: %s. It expires in %d minutes.",
		c.FirstName, c.LastName, code, int(s.cfg.CodeTTL.Minutes()),
	)
	if err := s.gateway.SendText(ctx, match.Phone, message); err != nil {
		// An undeliverable code must not remain live.
		if delErr := s.repo.Delete(ctx, tenantID, v.ID.String()); delErr != nil {
			s.logger.Error("rollback of undeliverable verification failed",
				zap.String("verification_id", v.ID.String()),
				zap.Error(delErr),
			)
		}
		s.logger.Error("verification code delivery failed",
			zap.String("verification_id", v.ID.String()),
			zap.Error(err),
		)
		return VerificationHandleResponse{}, pickuperrors.ErrDeliveryFailure
	}

	s.logger.Info("secure checkout initiated",
		zap.String("verification_id", v.ID.String()),
		zap.String("child_id", req.ChildID),
		zap.String("pickup_name", req.PickupPersonName),
	)
	return s.toHandleResponse(*v), nil
}

func (s *service) VerifyCheckoutCode(ctx context.Context, tenantID, actorID, actorClassID, verificationID, code string) (VerifyCodeResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return VerifyCodeResponse{}, pickuperrors.ErrInvalidActorID
	}

	v, err := s.loadVerificationInScope(ctx, tenantID, actorClassID, verificationID)
	if err != nil {
		return VerifyCodeResponse{}, err
	}

	now := time.Now().UTC()
	next, evalErr := EvaluateCode(*v, code, now)

	if evalErr != nil {
		// Persist failure transitions behind the attempts guard so two
		// concurrent submissions of the same wrong code cannot both count
		// as the first wrong attempt.
		if next.Status != v.Status || next.Attempts != v.Attempts {
			ok, err := s.repo.UpdateGuarded(ctx, &next, v.Attempts)
			if err != nil {
				return VerifyCodeResponse{}, err
			}
			if !ok {
				return VerifyCodeResponse{}, pickuperrors.ErrVerificationConflict
			}
		}
		if errors.Is(evalErr, pickuperrors.ErrMaxAttemptsExceeded) {
			s.logger.Warn("verification attempts exhausted, possible unauthorized pickup attempt",
				zap.String("verification_id", verificationID),
				zap.String("child_id", v.ChildID.String()),
				zap.String("pickup_name", v.PickupName),
			)
		}
		return VerifyCodeResponse{}, evalErr
	}

	// Code accepted: finalize the linked attendance record. The attendance
	// preconditions are checked before the VERIFIED transition is persisted,
	// so a refused finalization leaves the entry PENDING and the caller can
	// retry without the subsystem holding partial state.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VerifyCodeResponse{}, err
	}
	defer tx.Rollback()

	row, err := s.attendanceRepo.WithTx(tx).FindByIDAndTenant(ctx, tenantID, v.AttendanceID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerifyCodeResponse{}, attendanceerrors.ErrNoCheckInRecord
		}
		return VerifyCodeResponse{}, err
	}
	if row.CheckOut != nil {
		return VerifyCodeResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	ok, err := s.repo.UpdateGuarded(ctx, &next, v.Attempts)
	if err != nil {
		return VerifyCodeResponse{}, err
	}
	if !ok {
		return VerifyCodeResponse{}, pickuperrors.ErrVerificationConflict
	}

	checkOutAt := now
	if v.CheckOutAt != nil {
		checkOutAt = *v.CheckOutAt
	}
	s.finalize(row, checkOutAt, actorUUID, v.PickupName, v.PickupRelationship, v.PhotoURL, v.Notes)

	if err := s.attendanceRepo.WithTx(tx).Update(ctx, row); err != nil {
		s.logger.Error("verified checkout persist failed", zap.Error(err))
		return VerifyCodeResponse{}, err
	}

	c, err := s.childRepo.FindByIDAndTenant(ctx, tenantID, v.ChildID.String())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return VerifyCodeResponse{}, err
	}
	if c != nil {
		if err := s.enqueueCheckoutEvent(ctx, tx, *c, *row, v.PickupPhone, events.CheckoutMethodSecure); err != nil {
			return VerifyCodeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return VerifyCodeResponse{}, err
	}

	s.logger.Info("secure checkout verified",
		zap.String("verification_id", verificationID),
		zap.String("attendance_id", row.ID.String()),
	)

	resp := attendance.MapToResponse(*row)
	return VerifyCodeResponse{
		Status:     StatusVerified,
		VerifiedAt: next.VerifiedAt.Format(time.RFC3339),
		Attendance: &resp,
	}, nil
}

func (s *service) ResendCode(ctx context.Context, tenantID, actorClassID, verificationID string) (VerificationHandleResponse, error) {
	v, err := s.loadVerificationInScope(ctx, tenantID, actorClassID, verificationID)
	if err != nil {
		return VerificationHandleResponse{}, err
	}

	if v.Status != StatusPending {
		return VerificationHandleResponse{}, TerminalStatusError(v.Status)
	}

	now := time.Now().UTC()
	if now.After(v.ExpiresAt) {
		expired := *v
		expired.Status = StatusExpired
		if _, err := s.repo.UpdateGuarded(ctx, &expired, v.Attempts); err != nil {
			return VerificationHandleResponse{}, err
		}
		return VerificationHandleResponse{}, pickuperrors.ErrCodeExpired
	}

	code, err := generateCode()
	if err != nil {
		return VerificationHandleResponse{}, err
	}

	next := *v
	next.Code = code
	next.Attempts = 0
	next.ExpiresAt = now.Add(s.cfg.CodeTTL)

	ok, err := s.repo.UpdateGuarded(ctx, &next, v.Attempts)
	if err != nil {
		return VerificationHandleResponse{}, err
	}
	if !ok {
		return VerificationHandleResponse{}, pickuperrors.ErrVerificationConflict
	}

	message := fmt.Sprintf(
		"New pickup verification code: %s. It expires in %d minutes.",
		code, int(s.cfg.CodeTTL.Minutes()),
	)
	if err := s.gateway.SendText(ctx, v.PickupPhone, message); err != nil {
		// The reset stands: the old code is already invalid. The caller is
		// told delivery failed and may resend again.
		s.logger.Error("resend delivery failed",
			zap.String("verification_id", verificationID),
			zap.Error(err),
		)
		return VerificationHandleResponse{}, pickuperrors.ErrDeliveryFailure
	}

	s.logger.Info("verification code resent",
		zap.String("verification_id", verificationID),
	)
	return s.toHandleResponse(next), nil
}

func (s *service) CancelPendingCheckout(ctx context.Context, tenantID, actorClassID, verificationID string) error {
	v, err := s.loadVerificationInScope(ctx, tenantID, actorClassID, verificationID)
	if err != nil {
		return err
	}

	// Idempotent: cancelling a terminal entry is a no-op.
	if v.Status != StatusPending {
		return nil
	}

	next := *v
	next.Status = StatusExpired
	if _, err := s.repo.UpdateGuarded(ctx, &next, v.Attempts); err != nil {
		return err
	}

	s.logger.Info("pending checkout cancelled",
		zap.String("verification_id", verificationID),
	)
	return nil
}

// loadChildInScope fetches the child and enforces the staff-to-class rule:
// a caller restricted to one class may not touch a child of another class.
func (s *service) loadChildInScope(ctx context.Context, tenantID, childID, actorClassID string) (*child.Child, error) {
	if _, err := uuid.Parse(childID); err != nil {
		return nil, pickuperrors.ErrInvalidChildID
	}

	c, err := s.childRepo.FindByIDAndTenant(ctx, tenantID, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, childerrors.ErrChildNotFound
		}
		return nil, err
	}

	if actorClassID != "" {
		if c.ClassID == nil || c.ClassID.String() != actorClassID {
			return nil, pickuperrors.ErrWrongClassScope
		}
	}
	return c, nil
}

func (s *service) loadVerificationInScope(ctx context.Context, tenantID, actorClassID, verificationID string) (*PendingVerification, error) {
	if _, err := uuid.Parse(verificationID); err != nil {
		return nil, pickuperrors.ErrVerificationNotFound
	}

	v, err := s.repo.FindByIDAndTenant(ctx, tenantID, verificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pickuperrors.ErrVerificationNotFound
		}
		return nil, err
	}

	if actorClassID != "" {
		if _, err := s.loadChildInScope(ctx, tenantID, v.ChildID.String(), actorClassID); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// openAttendanceForToday returns today's record iff the child is checked in
// and not yet checked out.
func (s *service) openAttendanceForToday(ctx context.Context, repo attendance.Repository, tenantID, childID string, now time.Time) (*attendance.Attendance, error) {
	today := now.Truncate(24 * time.Hour)

	row, err := repo.FindByChildAndDate(ctx, tenantID, childID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendanceerrors.ErrNoCheckInRecord
		}
		return nil, err
	}
	if row.CheckOut != nil {
		return nil, attendanceerrors.ErrAlreadyCheckedOut
	}
	return row, nil
}

func (s *service) finalize(row *attendance.Attendance, checkOutAt time.Time, actor uuid.UUID, pickupName, pickupRelationship string, photoURL, notes *string) {
	row.CheckOut = &checkOutAt
	row.CheckedOutBy = &actor
	row.PickupName = &pickupName
	if pickupRelationship != "" {
		row.PickupRelationship = &pickupRelationship
	}
	if photoURL != nil {
		row.PhotoURL = photoURL
	}
	if notes != nil {
		row.Notes = notes
	}
	if checkOutAt.Hour() < earlyPickupHour {
		row.Status = attendance.StatusEarlyPickup
	}
}

func (s *service) enqueueCheckoutEvent(ctx context.Context, tx *sql.Tx, c child.Child, row attendance.Attendance, guardianPhone, method string) error {
	payload, err := json.Marshal(events.CheckoutCompletedEvent{
		EventType:     "checkout.completed",
		TenantID:      row.TenantID.String(),
		ChildID:       row.ChildID.String(),
		AttendanceID:  row.ID.String(),
		ChildName:     c.FirstName + " " + c.LastName,
		PickupName:    derefString(row.PickupName),
		GuardianPhone: guardianPhone,
		Method:        method,
		CheckedOutAt:  *row.CheckOut,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "attendance",
		AggregateID:   row.ID.String(),
		EventType:     "checkout.completed",
		Topic:         events.CheckoutCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) toHandleResponse(v PendingVerification) VerificationHandleResponse {
	return VerificationHandleResponse{
		ID:                v.ID.String(),
		ChildID:           v.ChildID.String(),
		MaskedPhone:       maskPhone(v.PickupPhone),
		ExpiresAt:         v.ExpiresAt.Format(time.RFC3339),
		AttemptsRemaining: v.MaxAttempts - v.Attempts,
		Status:            v.Status,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
