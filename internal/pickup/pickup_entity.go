package pickup

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusVerified = "VERIFIED"
	StatusExpired  = "EXPIRED"
	StatusFailed   = "FAILED"
)

// PendingVerification is one in-flight secure checkout attempt. A
// (tenant, child) pair never holds more than one PENDING row: creating a new
// one retires the previous PENDING row to EXPIRED.
type PendingVerification struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	ChildID      uuid.UUID  `gorm:"column:child_id;type:uuid;not null;index"`
	AttendanceID uuid.UUID  `gorm:"column:attendance_id;type:uuid;not null"`
	GuardianID   *uuid.UUID `gorm:"column:guardian_id;type:uuid"`

	Code        string    `gorm:"column:code;type:varchar(10);not null"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:PENDING"`
	ExpiresAt   time.Time `gorm:"column:expires_at;type:timestamptz;not null"`
	Attempts    int       `gorm:"column:attempts;not null;default:0"`
	MaxAttempts int       `gorm:"column:max_attempts;not null;default:3"`

	// Claimed pickup person, recorded for audit.
	PickupName         string `gorm:"column:pickup_name;type:varchar(200);not null"`
	PickupRelationship string `gorm:"column:pickup_relationship;type:varchar(50)"`
	PickupPhone        string `gorm:"column:pickup_phone;type:varchar(20);not null"`

	RequestedBy uuid.UUID  `gorm:"column:requested_by;type:uuid;not null"`
	VerifiedAt  *time.Time `gorm:"column:verified_at;type:timestamptz"`

	// Carried forward to the attendance record on success.
	CheckOutAt *time.Time `gorm:"column:check_out_at;type:timestamptz"`
	PhotoURL   *string    `gorm:"column:photo_url;type:text"`
	Notes      *string    `gorm:"column:notes;type:text"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (PendingVerification) TableName() string {
	return "pending_verifications"
}
