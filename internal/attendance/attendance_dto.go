package attendance

type CheckInRequest struct {
	ChildID string  `json:"child_id" binding:"required"`
	Notes   *string `json:"notes"`
}

type AttendanceResponse struct {
	ID                 string  `json:"id"`
	TenantID           string  `json:"tenant_id"`
	ChildID            string  `json:"child_id"`
	AttendanceDate     string  `json:"attendance_date"`
	CheckIn            string  `json:"check_in"`
	CheckOut           *string `json:"check_out,omitempty"`
	Status             string  `json:"status"`
	CheckedOutBy       *string `json:"checked_out_by,omitempty"`
	PickupName         *string `json:"pickup_name,omitempty"`
	PickupRelationship *string `json:"pickup_relationship,omitempty"`
	PhotoURL           *string `json:"photo_url,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}
