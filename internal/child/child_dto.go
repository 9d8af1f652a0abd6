package child

type GuardianRequest struct {
	FullName           string `json:"full_name" binding:"required"`
	Relationship       string `json:"relationship"`
	Phone              string `json:"phone"`
	IsAuthorizedPickup bool   `json:"is_authorized_pickup"`
	Priority           int    `json:"priority"`
}

type CreateChildRequest struct {
	ClassID                 *string           `json:"class_id"`
	FirstName               string            `json:"first_name" binding:"required"`
	LastName                string            `json:"last_name" binding:"required"`
	BirthDate               string            `json:"birth_date" binding:"required"`
	Allergies               *string           `json:"allergies"`
	Notes                   *string           `json:"notes"`
	AuthorizedPickupPersons []string          `json:"authorized_pickup_persons"`
	Guardians               []GuardianRequest `json:"guardians"`
}

type UpdateChildRequest struct {
	ClassID                 *string  `json:"class_id"`
	FirstName               string   `json:"first_name" binding:"required"`
	LastName                string   `json:"last_name" binding:"required"`
	Allergies               *string  `json:"allergies"`
	Notes                   *string  `json:"notes"`
	AuthorizedPickupPersons []string `json:"authorized_pickup_persons"`
}

type GuardianResponse struct {
	ID                 string `json:"id"`
	ChildID            string `json:"child_id"`
	FullName           string `json:"full_name"`
	Relationship       string `json:"relationship"`
	Phone              string `json:"phone,omitempty"`
	IsAuthorizedPickup bool   `json:"is_authorized_pickup"`
	Priority           int    `json:"priority"`
}

type ChildResponse struct {
	ID                      string             `json:"id"`
	TenantID                string             `json:"tenant_id"`
	ClassID                 *string            `json:"class_id,omitempty"`
	EnrollmentNumber        string             `json:"enrollment_number"`
	FirstName               string             `json:"first_name"`
	LastName                string             `json:"last_name"`
	BirthDate               string             `json:"birth_date"`
	Allergies               *string            `json:"allergies,omitempty"`
	Notes                   *string            `json:"notes,omitempty"`
	AuthorizedPickupPersons []string           `json:"authorized_pickup_persons,omitempty"`
	Guardians               []GuardianResponse `json:"guardians,omitempty"`
}
