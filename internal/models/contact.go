package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Contact message status
const (
	ContactStatusOpen     = "open"
	ContactStatusResolved = "resolved"
)

// Contact is a message submitted through the storefront contact form
type Contact struct {
	gorm.Model
	ContactID string `json:"contact_id" gorm:"uniqueIndex"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Status    string `json:"status" gorm:"default:open"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ContactID == "" {
		c.ContactID = fmt.Sprintf("CT%d", time.Now().UnixNano())
	}
	return nil
}
