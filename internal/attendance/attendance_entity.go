package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent     = "PRESENT"
	StatusAbsent      = "ABSENT"
	StatusLate        = "LATE"
	StatusEarlyPickup = "EARLY_PICKUP"
)

// Attendance holds one row per (tenant, child, calendar day). Check-out may
// only be set once, and only after check-in.
type Attendance struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	ChildID        uuid.UUID  `gorm:"column:child_id;type:uuid;not null;index"`
	AttendanceDate time.Time  `gorm:"column:attendance_date;type:date;not null;index"`
	CheckIn        time.Time  `gorm:"column:check_in;type:timestamptz;not null"`
	CheckOut       *time.Time `gorm:"column:check_out;type:timestamptz"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`

	// Who took the child home, as claimed at the door.
	CheckedOutBy       *uuid.UUID `gorm:"column:checked_out_by;type:uuid"`
	PickupName         *string    `gorm:"column:pickup_name;type:varchar(200)"`
	PickupRelationship *string    `gorm:"column:pickup_relationship;type:varchar(50)"`

	PhotoURL  *string        `gorm:"column:photo_url;type:text"`
	Notes     *string        `gorm:"column:notes;type:text"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}
