package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleEmployee UserRole = "employee"
	RoleAdmin    UserRole = "admin"
)

// IsStaff reports whether the role may use the admin dashboard.
func (r UserRole) IsStaff() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// User is either a customer identified by phone or a staff member identified by username.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Phone        *string   `json:"phone,omitempty" gorm:"uniqueIndex"`
	Username     *string   `json:"username,omitempty" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role" gorm:"not null;default:'user'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
