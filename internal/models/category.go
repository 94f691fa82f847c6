package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	CategoryID  string `json:"category_id" gorm:"uniqueIndex"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.CategoryID == "" {
		c.CategoryID = fmt.Sprintf("CAT%d", time.Now().UnixNano()%1000000)
	}
	return nil
}
