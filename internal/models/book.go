package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Book represents a rentable title in the catalog
type Book struct {
	gorm.Model

	BookID      string  `json:"book_id" gorm:"uniqueIndex"`
	Title       string  `json:"title" gorm:"not null"`
	Author      string  `json:"author"`
	ISBN        string  `json:"isbn" gorm:"index"`
	CategoryID  string  `json:"category_id" gorm:"index"`
	Description string  `json:"description"`
	CoverURL    string  `json:"cover_url"`
	WeeklyPrice float64 `json:"weekly_price" gorm:"not null"` // base rental price per week
	Stock       int     `json:"stock" gorm:"default:0"`
	Active      bool    `json:"active" gorm:"default:true"`
}

// BeforeCreate hook to auto-generate BookID
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.BookID == "" {
		b.BookID = fmt.Sprintf("BK%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// InStock reports whether the requested quantity can be rented
func (b *Book) InStock(quantity int) bool {
	return b.Active && b.Stock >= quantity
}

// BookSearch parameters for browsing the catalog
type BookSearch struct {
	Query      string `json:"query"`
	CategoryID string `json:"category_id"`
	Author     string `json:"author"`
}
