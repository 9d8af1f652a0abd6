package auth

type RegisterRequest struct {
	TenantID string `json:"tenant_id" binding:"required,uuid"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ADMIN FRONT_DESK TEACHER"`
	ClassID  string `json:"class_id" binding:"omitempty,uuid"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	ClassID  string `json:"class_id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
