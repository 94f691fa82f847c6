package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a storefront account, identified by phone number
type User struct {
	gorm.Model

	UserID       string `json:"user_id" gorm:"uniqueIndex"`
	Name         string `json:"name"`
	Phone        string `json:"phone" gorm:"uniqueIndex"` // canonical form, unique
	Email        string `json:"email" gorm:"index"`
	PasswordHash string `json:"-"` // only set for admin accounts
	Role         string `json:"role" gorm:"default:customer"`
	Verified     bool   `json:"verified" gorm:"default:false"`
	Active       bool   `json:"active" gorm:"default:true"`
}

// BeforeCreate hook to auto-generate UserID and normalize the phone number
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = fmt.Sprintf("US%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	// Normalize phone number (ensure it starts with +91 if not already)
	if u.Phone != "" && !strings.HasPrefix(u.Phone, "+") {
		u.Phone = "+91" + strings.TrimPrefix(u.Phone, "91")
	}

	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

// IsAdmin reports whether the account has dashboard access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRegistration is the signup payload
type UserRegistration struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"omitempty,email"`
}
