package models

import "gorm.io/gorm"

// WishlistItem marks a book a user wants to rent later. One row per
// (user, book) pair.
type WishlistItem struct {
	gorm.Model
	UserID string `json:"user_id" gorm:"uniqueIndex:idx_wishlist_user_book"`
	BookID string `json:"book_id" gorm:"uniqueIndex:idx_wishlist_user_book"`
}
