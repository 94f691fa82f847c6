package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/services"
)

// ValidateGatewaySignature rejects payment webhooks whose HMAC signature
// doesn't match what the gateway secret produces for the raw body
func ValidateGatewaySignature(gateway services.PaymentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("x-webhook-signature")
		timestamp := c.Get("x-webhook-timestamp")
		if signature == "" || timestamp == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing webhook signature",
			})
		}

		if !gateway.VerifyWebhookSignature(c.Body(), signature, timestamp) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}
