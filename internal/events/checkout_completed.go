package events

import "time"

const CheckoutCompletedTopic = "daycare.pickup.checkout.v1"

const (
	CheckoutMethodDirect = "DIRECT"
	CheckoutMethodSecure = "SECURE"
)

// CheckoutCompletedEvent is published through the outbox when an attendance
// record is finalized. The consumer sends the guardian the completion notice;
// GuardianPhone is empty when the pickup was authorized via the free-text
// list and nobody can be notified.
type CheckoutCompletedEvent struct {
	EventType     string    `json:"event_type"`
	TenantID      string    `json:"tenant_id"`
	ChildID       string    `json:"child_id"`
	AttendanceID  string    `json:"attendance_id"`
	ChildName     string    `json:"child_name"`
	PickupName    string    `json:"pickup_name"`
	GuardianPhone string    `json:"guardian_phone,omitempty"`
	Method        string    `json:"method"`
	CheckedOutAt  time.Time `json:"checked_out_at"`
}
