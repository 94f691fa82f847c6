package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// AdminHandler handles admin operations
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{
		store: store,
	}
}

// Overview returns storefront counts for the admin dashboard
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	books, err := h.store.SearchBooks(&models.BookSearch{})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load overview",
		})
	}

	users, err := h.store.GetAllUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load overview",
		})
	}

	rentalCounts := fiber.Map{}
	activeRentals := 0
	for _, status := range []string{
		models.RentalStatusPending, models.RentalStatusConfirmed,
		models.RentalStatusDelivered, models.RentalStatusReturned,
		models.RentalStatusCancelled,
	} {
		rentals, err := h.store.GetRentalsByStatus(status)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load overview",
			})
		}
		rentalCounts[status] = len(rentals)
		if status == models.RentalStatusConfirmed || status == models.RentalStatusDelivered {
			activeRentals += len(rentals)
		}
	}

	overdue, err := h.store.GetOverdueRentals(time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load overview",
		})
	}

	return c.JSON(fiber.Map{
		"books":           len(books),
		"users":           len(users),
		"rentals":         rentalCounts,
		"active_rentals":  activeRentals,
		"overdue_rentals": len(overdue),
	})
}

// ListUsers returns all registered users (admin)
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.store.GetAllUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// ListOverdueRentals returns rentals past their due date (admin)
func (h *AdminHandler) ListOverdueRentals(c *fiber.Ctx) error {
	rentals, err := h.store.GetOverdueRentals(time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve overdue rentals",
		})
	}

	return c.JSON(fiber.Map{
		"rentals": rentals,
		"count":   len(rentals),
	})
}
