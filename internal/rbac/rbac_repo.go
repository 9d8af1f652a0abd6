package rbac

import "gorm.io/gorm"

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetStaffRoles(tenantID string) ([]StaffRoleRow, error)
	GetRolePermissions(tenantID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type StaffRoleRow struct {
	StaffUserID string
	RoleID      string
}

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetStaffRoles(tenantID string) ([]StaffRoleRow, error) {
	var result []StaffRoleRow

	err := r.db.
		Table("staff_roles").
		Select("staff_roles.staff_user_id, staff_roles.role_id").
		Joins("JOIN roles ON roles.id = staff_roles.role_id").
		Where("roles.tenant_id = ?", tenantID).
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(tenantID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.tenant_id = ?", tenantID).
		Scan(&result).Error

	return result, err
}
