package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "github.com/Justoo1/daycare-management-system-sub000/internal/attendance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Children arriving after this time are marked LATE.
const lateCutoffHour = 9

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, tenantID, actorID string, req CheckInRequest) (AttendanceResponse, error)
	GetAllByDate(ctx context.Context, tenantID, date string) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, tenantID, id string) (AttendanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CheckIn(ctx context.Context, tenantID, actorID string, req CheckInRequest) (AttendanceResponse, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidTenantID
	}
	childUUID, err := uuid.Parse(req.ChildID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidChildID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	existing, err := qtx.FindByChildAndDate(ctx, tenantID, req.ChildID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}
	if err == nil && existing != nil && existing.ID != uuid.Nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}

	status := StatusPresent
	if now.Hour() >= lateCutoffHour {
		status = StatusLate
	}

	row := &Attendance{
		ID:             uuid.New(),
		TenantID:       tenantUUID,
		ChildID:        childUUID,
		AttendanceDate: today,
		CheckIn:        now,
		Status:         status,
		Notes:          req.Notes,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("check-in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("child checked in",
		zap.String("attendance_id", row.ID.String()),
		zap.String("child_id", req.ChildID),
		zap.String("tenant_id", tenantID),
	)
	return MapToResponse(*row), nil
}

func (s *service) GetAllByDate(ctx context.Context, tenantID, date string) ([]AttendanceResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDateFormat
	}

	rows, err := s.repo.FindAllByTenantAndDate(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = MapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id string) (AttendanceResponse, error) {
	a, err := s.repo.FindByIDAndTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNoCheckInRecord
		}
		return AttendanceResponse{}, err
	}
	return MapToResponse(*a), nil
}

// MapToResponse is shared with the pickup orchestrator, which returns the
// finalized record on successful checkout.
func MapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                 a.ID.String(),
		TenantID:           a.TenantID.String(),
		ChildID:            a.ChildID.String(),
		AttendanceDate:     a.AttendanceDate.Format("2006-01-02"),
		CheckIn:            a.CheckIn.Format(time.RFC3339),
		Status:             a.Status,
		PickupName:         a.PickupName,
		PickupRelationship: a.PickupRelationship,
		PhotoURL:           a.PhotoURL,
		Notes:              a.Notes,
	}
	if a.CheckOut != nil {
		v := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &v
	}
	if a.CheckedOutBy != nil {
		v := a.CheckedOutBy.String()
		resp.CheckedOutBy = &v
	}
	return resp
}
