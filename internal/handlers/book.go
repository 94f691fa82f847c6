package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// BookHandler handles catalog requests
type BookHandler struct {
	store storage.Store
}

// NewBookHandler creates a new book handler
func NewBookHandler(store storage.Store) *BookHandler {
	return &BookHandler{
		store: store,
	}
}

// ListBooks returns active catalog entries, optionally filtered
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	search := &models.BookSearch{
		Query:      c.Query("q"),
		CategoryID: c.Query("category"),
		Author:     c.Query("author"),
	}

	books, err := h.store.SearchBooks(search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve books",
		})
	}

	return c.JSON(fiber.Map{
		"books": books,
		"count": len(books),
	})
}

// GetBook retrieves a book by ID
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Book ID is required",
		})
	}

	book, err := h.store.GetBook(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Book not found",
		})
	}

	return c.JSON(book)
}

// CreateBook adds a catalog entry (admin)
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var req struct {
		Title       string  `json:"title" validate:"required"`
		Author      string  `json:"author"`
		ISBN        string  `json:"isbn"`
		CategoryID  string  `json:"category_id"`
		Description string  `json:"description"`
		CoverURL    string  `json:"cover_url"`
		WeeklyPrice float64 `json:"weekly_price" validate:"required,gt=0"`
		Stock       int     `json:"stock" validate:"gte=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and a positive weekly price are required",
		})
	}

	if req.CategoryID != "" {
		if _, err := h.store.GetCategory(req.CategoryID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown category",
			})
		}
	}

	book, err := h.store.CreateBook(&models.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		WeeklyPrice: req.WeeklyPrice,
		Stock:       req.Stock,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create book",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Book created successfully",
		"book":    book,
	})
}

// UpdateBook edits a catalog entry (admin)
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	id := c.Params("id")
	book, err := h.store.GetBook(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Book not found",
		})
	}

	var req struct {
		Title       *string  `json:"title"`
		Author      *string  `json:"author"`
		Description *string  `json:"description"`
		CoverURL    *string  `json:"cover_url"`
		WeeklyPrice *float64 `json:"weekly_price"`
		Stock       *int     `json:"stock"`
		Active      *bool    `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.WeeklyPrice != nil {
		if *req.WeeklyPrice <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Weekly price must be positive",
			})
		}
		book.WeeklyPrice = *req.WeeklyPrice
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Stock cannot be negative",
			})
		}
		book.Stock = *req.Stock
	}
	if req.Active != nil {
		book.Active = *req.Active
	}

	if err := h.store.UpdateBook(book); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update book",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Book updated successfully",
		"book":    book,
	})
}

// DeleteBook removes a catalog entry (admin)
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.DeleteBook(id); err != nil {
		if errors.Is(err, storage.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Book not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete book",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
	})
}
