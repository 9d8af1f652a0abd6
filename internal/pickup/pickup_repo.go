package pickup

import (
	"context"
	"database/sql"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=pickup_repo.go -destination=mock/pickup_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, v *PendingVerification) error
	FindByIDAndTenant(ctx context.Context, tenantID, id string) (*PendingVerification, error)
	ExpirePendingByChild(ctx context.Context, tenantID, childID string) error
	// UpdateGuarded persists v only if the stored row is still PENDING with
	// the expected attempt count. Returns false when another submission won
	// the race.
	UpdateGuarded(ctx context.Context, v *PendingVerification, expectedAttempts int) (bool, error)
	Delete(ctx context.Context, tenantID, id string) error
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

func (r *repository) Create(ctx context.Context, v *PendingVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repository) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*PendingVerification, error) {
	var v PendingVerification
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&v).Error
	return &v, err
}

func (r *repository) ExpirePendingByChild(ctx context.Context, tenantID, childID string) error {
	return r.db.WithContext(ctx).
		Model(&PendingVerification{}).
		Scopes(tenant.Scope(tenantID)).
		Where("child_id = ?", childID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":     StatusExpired,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateGuarded(ctx context.Context, v *PendingVerification, expectedAttempts int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&PendingVerification{}).
		Where("id = ?", v.ID).
		Where("tenant_id = ?", v.TenantID).
		Where("status = ?", StatusPending).
		Where("attempts = ?", expectedAttempts).
		Updates(map[string]any{
			"code":        v.Code,
			"status":      v.Status,
			"attempts":    v.Attempts,
			"expires_at":  v.ExpiresAt,
			"verified_at": v.VerifiedAt,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&PendingVerification{}).Error
}
