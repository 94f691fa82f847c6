package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/middleware"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// WishlistHandler handles wishlist requests
type WishlistHandler struct {
	store storage.Store
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(store storage.Store) *WishlistHandler {
	return &WishlistHandler{
		store: store,
	}
}

// GetWishlist returns the authenticated user's wishlist
func (h *WishlistHandler) GetWishlist(c *fiber.Ctx) error {
	items, err := h.store.GetWishlist(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve wishlist",
		})
	}

	return c.JSON(fiber.Map{
		"wishlist": items,
		"count":    len(items),
	})
}

// AddToWishlist saves a book for later
func (h *WishlistHandler) AddToWishlist(c *fiber.Ctx) error {
	var req struct {
		BookID string `json:"book_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Book ID is required",
		})
	}

	if _, err := h.store.GetBook(req.BookID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Book not found",
		})
	}

	item, err := h.store.AddToWishlist(middleware.UserID(c), req.BookID)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyWishlisted) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Book is already in your wishlist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update wishlist",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Book added to wishlist",
		"item":    item,
	})
}

// RemoveFromWishlist drops a book from the wishlist
func (h *WishlistHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	bookID := c.Params("bookId")
	if err := h.store.RemoveFromWishlist(middleware.UserID(c), bookID); err != nil {
		if errors.Is(err, storage.ErrNotWishlisted) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Book is not in your wishlist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update wishlist",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Book removed from wishlist",
	})
}
