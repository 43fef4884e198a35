package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies the kind of principal a token was issued to.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// StudentLoginRequest holds student credentials.
type StudentLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest holds administrator credentials.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	StudentID int64     `json:"student_id,omitempty"`
	GroupID   int64     `json:"group_id,omitempty"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating a student password.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ClaimData is the application payload nested under the "data" claim.
type ClaimData struct {
	StudentID int64  `json:"student_id,omitempty"`
	GroupID   int64  `json:"group_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Data ClaimData `json:"data"`
	jwt.RegisteredClaims
}

// Identity is the verified principal extracted from a bearer token.
type Identity struct {
	SubjectID int64
	GroupID   int64
	Email     string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// IsStudent reports whether the identity belongs to a student.
func (i *Identity) IsStudent() bool {
	return i != nil && i.Role == RoleStudent
}

// Admin is an administrator account.
type Admin struct {
	ID           int64  `db:"admin_id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
}
