package pickup

import (
	"github.com/Justoo1/daycare-management-system-sub000/internal/attendance"
)

type DirectCheckoutRequest struct {
	ChildID            string  `json:"child_id" binding:"required"`
	PickupPersonName   string  `json:"pickup_person_name" binding:"required"`
	PickupRelationship string  `json:"pickup_person_relationship"`
	PhotoURL           *string `json:"photo_url"`
	Notes              *string `json:"notes"`
}

type InitiateCheckoutRequest struct {
	ChildID            string  `json:"child_id" binding:"required"`
	PickupPersonName   string  `json:"pickup_person_name" binding:"required"`
	PickupRelationship string  `json:"pickup_person_relationship"`
	PhotoURL           *string `json:"photo_url"`
	Notes              *string `json:"notes"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// VerificationHandleResponse is what the desk gets back: never the code,
// never the full phone number.
type VerificationHandleResponse struct {
	ID                string `json:"id"`
	ChildID           string `json:"child_id"`
	MaskedPhone       string `json:"masked_phone"`
	ExpiresAt         string `json:"expires_at"`
	AttemptsRemaining int    `json:"attempts_remaining"`
	Status            string `json:"status"`
}

type VerifyCodeResponse struct {
	Status     string                         `json:"status"`
	VerifiedAt string                         `json:"verified_at"`
	Attendance *attendance.AttendanceResponse `json:"attendance,omitempty"`
}
