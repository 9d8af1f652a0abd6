package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByChildAndDate(ctx context.Context, tenantID, childID string, date time.Time) (*Attendance, error)
	FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Attendance, error)
	FindAllByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByChildAndDate(ctx context.Context, tenantID, childID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("child_id = ?", childID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&a).Error
	return &a, err
}

func (r *repository) FindAllByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Order("check_in ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}
