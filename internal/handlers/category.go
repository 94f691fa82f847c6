package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	store storage.Store
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(store storage.Store) *CategoryHandler {
	return &CategoryHandler{
		store: store,
	}
}

// ListCategories returns all categories
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.store.GetAllCategories()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve categories",
		})
	}

	return c.JSON(fiber.Map{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory adds a category (admin)
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category name is required",
		})
	}

	category, err := h.store.CreateCategory(&models.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}
