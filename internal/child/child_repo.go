package child

import (
	"context"
	"database/sql"

	"github.com/Justoo1/daycare-management-system-sub000/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=child_repo.go -destination=mock/child_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *Child) error
	FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Child, error)
	FindAllByTenant(ctx context.Context, tenantID string) ([]Child, error)
	Update(ctx context.Context, c *Child) error
	Delete(ctx context.Context, tenantID, id string) error
	AddGuardian(ctx context.Context, g *Guardian) error
	UpdateGuardian(ctx context.Context, g *Guardian) error
	DeleteGuardian(ctx context.Context, tenantID, childID, guardianID string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, c *Child) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Child, error) {
	var c Child
	err := r.db.WithContext(ctx).
		Preload("Guardians", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC")
		}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *repository) FindAllByTenant(ctx context.Context, tenantID string) ([]Child, error) {
	var rows []Child
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Order("last_name ASC, first_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, c *Child) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&Child{}).Error
}

func (r *repository) AddGuardian(ctx context.Context, g *Guardian) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) UpdateGuardian(ctx context.Context, g *Guardian) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *repository) DeleteGuardian(ctx context.Context, tenantID, childID, guardianID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("child_id = ?", childID).
		Where("id = ?", guardianID).
		Delete(&Guardian{}).Error
}
