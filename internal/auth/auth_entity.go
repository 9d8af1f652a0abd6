package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff roles. TEACHER accounts carry a ClassID and are scoped to it.
const (
	RoleAdmin     = "ADMIN"
	RoleFrontDesk = "FRONT_DESK"
	RoleTeacher   = "TEACHER"
)

type StaffUser struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClassID   *uuid.UUID `gorm:"type:uuid;index"`
	Name      string     `gorm:"type:varchar(255);not null"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string     `gorm:"type:varchar(32)"`
	Password  string     `gorm:"type:varchar(255);not null"`
	Role      string     `gorm:"type:varchar(50);not null;default:'FRONT_DESK'"`
	IsActive  bool       `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (StaffUser) TableName() string {
	return "staff_users"
}
