package auth

import (
	"context"
	"errors"

	autherrors "github.com/Justoo1/daycare-management-system-sub000/internal/auth/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

type Repository interface {
	Create(ctx context.Context, user *StaffUser) error
	GetByEmail(ctx context.Context, email string) (*StaffUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StaffUser, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *StaffUser) error {
	err := r.db.WithContext(ctx).Create(user).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return autherrors.ErrEmailAlreadyRegistered
	}
	return err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*StaffUser, error) {
	var user StaffUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	var user StaffUser
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	return &user, err
}
