package model

import "time"

// Status represents an account's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Role represents an account's role within the institution.
// Role is descriptive; it carries no privileges. Admin privilege is the
// separate IsAdmin flag.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Account is a student record that doubles as a login principal.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Department     string    `json:"department"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	AttachmentPath string    `json:"attachment_path,omitempty"`
	Status         Status    `json:"status"`
	Role           Role      `json:"role"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for self-registration.
// Privilege and lifecycle fields are intentionally absent: new accounts are
// always active students without admin rights.
type RegisterRequest struct {
	ID         string `json:"id" binding:"required,min=1,max=40"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=4,max=128"`
	Department string `json:"department" binding:"required,min=1,max=100"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// AuthResponse is returned after successful registration or login.
type AuthResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// CreateAccountRequest is the admin payload for creating an account with an
// explicit role and status.
type CreateAccountRequest struct {
	ID         string `json:"id" binding:"required,min=1,max=40"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=4,max=128"`
	Department string `json:"department" binding:"required,min=1,max=100"`
	Status     Status `json:"status" binding:"omitempty,oneof=active inactive suspended"`
	Role       Role   `json:"role" binding:"omitempty,oneof=student teacher admin"`
}

// UpdateAccountRequest is the payload for updating an existing account.
// Password is optional; when present it is re-hashed, otherwise the stored
// hash is left untouched.
type UpdateAccountRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Department string `json:"department" binding:"required,min=1,max=100"`
	Password   string `json:"password" binding:"omitempty,min=4,max=128"`
}

// UpdateStatusRequest patches an account's status.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=active inactive suspended"`
}

// UpdateRoleRequest patches an account's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=student teacher admin"`
}

// BulkDeleteRequest removes a batch of accounts by ID.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,min=1,max=40"`
}

// ChangeEvent is published to Redis whenever an account is mutated.
type ChangeEvent struct {
	Op        string    `json:"op"`
	AccountID string    `json:"account_id"`
	At        time.Time `json:"at"`
}
