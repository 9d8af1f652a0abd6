package child

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	childerrors "github.com/Justoo1/daycare-management-system-sub000/internal/child/errors"
	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=child_service.go -destination=mock/child_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, tenantID string, req CreateChildRequest) (ChildResponse, error)
	GetAll(ctx context.Context, tenantID string) ([]ChildResponse, error)
	GetByID(ctx context.Context, tenantID, id string) (ChildResponse, error)
	Update(ctx context.Context, tenantID, id string, req UpdateChildRequest) (ChildResponse, error)
	Delete(ctx context.Context, tenantID, id string) error
	AddGuardian(ctx context.Context, tenantID, childID string, req GuardianRequest) (GuardianResponse, error)
	UpdateGuardian(ctx context.Context, tenantID, childID, guardianID string, req GuardianRequest) (GuardianResponse, error)
	RemoveGuardian(ctx context.Context, tenantID, childID, guardianID string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	counters counter.Repository
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counters counter.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("child.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("child.service")
	}
	return &service{db: db, repo: repo, counters: counters, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, tenantID string, req CreateChildRequest) (ChildResponse, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return ChildResponse{}, childerrors.ErrInvalidTenantID
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return ChildResponse{}, childerrors.ErrInvalidBirthDate
	}

	var classUUID *uuid.UUID
	if req.ClassID != nil && *req.ClassID != "" {
		parsed, err := uuid.Parse(*req.ClassID)
		if err != nil {
			return ChildResponse{}, childerrors.ErrInvalidClassID
		}
		classUUID = &parsed
	}

	seq, err := s.counters.GetNextValue(ctx, tenantID, "child_enrollment")
	if err != nil {
		s.logger.Error("enrollment number allocation failed", zap.Error(err))
		return ChildResponse{}, err
	}

	c := &Child{
		ID:                      uuid.New(),
		TenantID:                tenantUUID,
		EnrollmentNumber:        fmt.Sprintf("ENR-%05d", seq),
		ClassID:                 classUUID,
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		BirthDate:               birthDate,
		Allergies:               req.Allergies,
		Notes:                   req.Notes,
		AuthorizedPickupPersons: req.AuthorizedPickupPersons,
	}
	for _, g := range req.Guardians {
		c.Guardians = append(c.Guardians, Guardian{
			ID:                 uuid.New(),
			TenantID:           tenantUUID,
			ChildID:            c.ID,
			FullName:           g.FullName,
			Relationship:       g.Relationship,
			Phone:              g.Phone,
			IsAuthorizedPickup: g.IsAuthorizedPickup,
			Priority:           g.Priority,
		})
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("create child persist failed", zap.Error(err))
		return ChildResponse{}, err
	}

	s.logger.Info("child created",
		zap.String("child_id", c.ID.String()),
		zap.String("tenant_id", tenantID),
	)
	return mapToResponse(*c), nil
}

func (s *service) GetAll(ctx context.Context, tenantID string) ([]ChildResponse, error) {
	// Roster reads burst at drop-off and pickup time; collapse concurrent
	// identical queries into one.
	v, err, _ := s.sf.Do("children:"+tenantID, func() (interface{}, error) {
		rows, err := s.repo.FindAllByTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		res := make([]ChildResponse, len(rows))
		for i, r := range rows {
			res[i] = mapToResponse(r)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ChildResponse), nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id string) (ChildResponse, error) {
	v, err, _ := s.sf.Do("child:"+tenantID+":"+id, func() (interface{}, error) {
		c, err := s.repo.FindByIDAndTenant(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, childerrors.ErrChildNotFound
			}
			return nil, err
		}
		return mapToResponse(*c), nil
	})
	if err != nil {
		return ChildResponse{}, err
	}
	return v.(ChildResponse), nil
}

func (s *service) Update(ctx context.Context, tenantID, id string, req UpdateChildRequest) (ChildResponse, error) {
	c, err := s.repo.FindByIDAndTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ChildResponse{}, childerrors.ErrChildNotFound
		}
		return ChildResponse{}, err
	}

	var classUUID *uuid.UUID
	if req.ClassID != nil && *req.ClassID != "" {
		parsed, err := uuid.Parse(*req.ClassID)
		if err != nil {
			return ChildResponse{}, childerrors.ErrInvalidClassID
		}
		classUUID = &parsed
	}

	c.ClassID = classUUID
	c.FirstName = req.FirstName
	c.LastName = req.LastName
	c.Allergies = req.Allergies
	c.Notes = req.Notes
	c.AuthorizedPickupPersons = req.AuthorizedPickupPersons

	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("update child persist failed",
			zap.String("child_id", id),
			zap.Error(err),
		)
		return ChildResponse{}, err
	}
	return mapToResponse(*c), nil
}

func (s *service) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return childerrors.ErrInvalidChildID
	}
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *service) AddGuardian(ctx context.Context, tenantID, childID string, req GuardianRequest) (GuardianResponse, error) {
	c, err := s.repo.FindByIDAndTenant(ctx, tenantID, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GuardianResponse{}, childerrors.ErrChildNotFound
		}
		return GuardianResponse{}, err
	}

	g := &Guardian{
		ID:                 uuid.New(),
		TenantID:           c.TenantID,
		ChildID:            c.ID,
		FullName:           req.FullName,
		Relationship:       req.Relationship,
		Phone:              req.Phone,
		IsAuthorizedPickup: req.IsAuthorizedPickup,
		Priority:           req.Priority,
	}
	if err := s.repo.AddGuardian(ctx, g); err != nil {
		return GuardianResponse{}, err
	}
	return mapGuardianToResponse(*g), nil
}

func (s *service) UpdateGuardian(ctx context.Context, tenantID, childID, guardianID string, req GuardianRequest) (GuardianResponse, error) {
	guardianUUID, err := uuid.Parse(guardianID)
	if err != nil {
		return GuardianResponse{}, childerrors.ErrGuardianNotFound
	}

	c, err := s.repo.FindByIDAndTenant(ctx, tenantID, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GuardianResponse{}, childerrors.ErrChildNotFound
		}
		return GuardianResponse{}, err
	}

	var current *Guardian
	for i := range c.Guardians {
		if c.Guardians[i].ID == guardianUUID {
			current = &c.Guardians[i]
			break
		}
	}
	if current == nil {
		return GuardianResponse{}, childerrors.ErrGuardianNotFound
	}

	current.FullName = req.FullName
	current.Relationship = req.Relationship
	current.Phone = req.Phone
	current.IsAuthorizedPickup = req.IsAuthorizedPickup
	current.Priority = req.Priority

	if err := s.repo.UpdateGuardian(ctx, current); err != nil {
		s.logger.Error("update guardian persist failed",
			zap.String("guardian_id", guardianID),
			zap.Error(err),
		)
		return GuardianResponse{}, err
	}
	return mapGuardianToResponse(*current), nil
}

func (s *service) RemoveGuardian(ctx context.Context, tenantID, childID, guardianID string) error {
	if _, err := uuid.Parse(guardianID); err != nil {
		return childerrors.ErrGuardianNotFound
	}
	return s.repo.DeleteGuardian(ctx, tenantID, childID, guardianID)
}

func mapToResponse(c Child) ChildResponse {
	resp := ChildResponse{
		ID:                      c.ID.String(),
		TenantID:                c.TenantID.String(),
		EnrollmentNumber:        c.EnrollmentNumber,
		FirstName:               c.FirstName,
		LastName:                c.LastName,
		BirthDate:               c.BirthDate.Format("2006-01-02"),
		Allergies:               c.Allergies,
		Notes:                   c.Notes,
		AuthorizedPickupPersons: c.AuthorizedPickupPersons,
	}
	if c.ClassID != nil {
		v := c.ClassID.String()
		resp.ClassID = &v
	}
	for _, g := range c.Guardians {
		resp.Guardians = append(resp.Guardians, mapGuardianToResponse(g))
	}
	return resp
}

func mapGuardianToResponse(g Guardian) GuardianResponse {
	return GuardianResponse{
		ID:                 g.ID.String(),
		ChildID:            g.ChildID.String(),
		FullName:           g.FullName,
		Relationship:       g.Relationship,
		Phone:              g.Phone,
		IsAuthorizedPickup: g.IsAuthorizedPickup,
		Priority:           g.Priority,
	}
}
