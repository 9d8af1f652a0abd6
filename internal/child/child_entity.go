package child

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Child struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:ux_children_tenant_enrollment"`
	ClassID   *uuid.UUID `gorm:"column:class_id;type:uuid;index"`
	FirstName string     `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string     `gorm:"column:last_name;type:varchar(100);not null"`
	BirthDate time.Time  `gorm:"column:birth_date;type:date"`

	// Sequential per tenant, assigned at enrollment.
	EnrollmentNumber string  `gorm:"column:enrollment_number;type:varchar(20);not null;uniqueIndex:ux_children_tenant_enrollment"`
	Allergies        *string `gorm:"column:allergies;type:text"`
	Notes            *string `gorm:"column:notes;type:text"`

	// Secondary, lower-trust authorization source: names only, no phone.
	AuthorizedPickupPersons []string `gorm:"column:authorized_pickup_persons;type:jsonb;serializer:json"`

	Guardians []Guardian `gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Child) TableName() string {
	return "children"
}

// Guardian belongs to exactly one child; deleted with it.
type Guardian struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID           uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	ChildID            uuid.UUID `gorm:"column:child_id;type:uuid;not null;index"`
	FullName           string    `gorm:"column:full_name;type:varchar(200);not null"`
	Relationship       string    `gorm:"column:relationship;type:varchar(50)"`
	Phone              string    `gorm:"column:phone;type:varchar(20)"`
	IsAuthorizedPickup bool      `gorm:"column:is_authorized_pickup;not null;default:false"`
	Priority           int       `gorm:"column:priority;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (Guardian) TableName() string {
	return "guardians"
}
