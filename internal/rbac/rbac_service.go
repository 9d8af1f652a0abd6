package rbac

import (
	"sync"

	"github.com/Justoo1/daycare-management-system-sub000/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadTenantPolicy(tenantID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadTenantPolicy(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadTenantPolicyUnlocked(tenantID)
}

func (s *service) loadTenantPolicyUnlocked(tenantID string) error {
	s.enforcer.ClearPolicy()

	staffRoles, err := s.repo.GetStaffRoles(tenantID)
	if err != nil {
		return err
	}

	for _, sr := range staffRoles {
		if _, err := s.enforcer.AddGroupingPolicy(sr.StaffUserID, sr.RoleID, tenantID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(tenantID)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, tenantID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("tenant policy loaded",
		zap.String("tenant_id", tenantID),
		zap.Int("staff_roles", len(staffRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The enforcer holds one tenant's policy at a time, so reload per check.
	if err := s.loadTenantPolicyUnlocked(req.TenantID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.TenantID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	s.logger.Debug("enforce",
		zap.String("user_id", req.UserID),
		zap.String("tenant_id", req.TenantID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}
