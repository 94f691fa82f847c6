package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// ContactHandler handles contact form requests
type ContactHandler struct {
	store storage.Store
}

// NewContactHandler creates a new contact handler
func NewContactHandler(store storage.Store) *ContactHandler {
	return &ContactHandler{
		store: store,
	}
}

// SubmitContact records a contact form message
func (h *ContactHandler) SubmitContact(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"omitempty,email"`
		Phone   string `json:"phone"`
		Message string `json:"message" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and message are required",
		})
	}

	contact, err := h.store.CreateContact(&models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Status:  models.ContactStatusOpen,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit message",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Thanks for reaching out, we'll get back to you soon",
		"contact_id": contact.ContactID,
	})
}

// ListContacts returns every contact message (admin)
func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.store.GetAllContacts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve contacts",
		})
	}

	return c.JSON(fiber.Map{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// ResolveContact marks a contact message resolved (admin)
func (h *ContactHandler) ResolveContact(c *fiber.Ctx) error {
	if err := h.store.UpdateContactStatus(c.Params("id"), models.ContactStatusResolved); err != nil {
		if errors.Is(err, storage.ErrContactNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Contact not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update contact",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Contact marked as resolved",
	})
}
