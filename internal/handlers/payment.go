package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/middleware"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// PaymentHandler handles payment webhooks and order status lookups
type PaymentHandler struct {
	store    storage.Store
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(store storage.Store, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		store:    store,
		payments: payments,
	}
}

// HandleWebhook ingests gateway payment webhooks. The signature middleware has
// already verified the request before it reaches here.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	if h.payments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Payments are not configured",
		})
	}

	if err := h.payments.ProcessWebhook(c.Body()); err != nil {
		log.Printf("⚠️ Webhook processing failed: %v", err)
		// Non-200 makes the gateway retry; parse failures won't improve
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to process webhook",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// GetOrderStatus returns a payment order, owner only
func (h *PaymentHandler) GetOrderStatus(c *fiber.Ctx) error {
	order, err := h.store.GetPaymentOrder(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment order not found",
		})
	}

	if order.UserID != middleware.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not your order",
		})
	}

	return c.JSON(order)
}
