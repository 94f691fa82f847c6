package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/otp"
)

// OTPHandler handles OTP send/verify/status requests
type OTPHandler struct {
	service *otp.Service
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(service *otp.Service) *OTPHandler {
	return &OTPHandler{
		service: service,
	}
}

// SendOTP issues a verification code for a phone number
func (h *OTPHandler) SendOTP(c *fiber.Ctx) error {
	var req struct {
		Phone    string `json:"phone" validate:"required,phone"`
		IsResend bool   `json:"isResend"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A valid phone number with at least 10 digits is required",
		})
	}

	result := h.service.Send(c.UserContext(), req.Phone, req.IsResend)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": result.Message,
		})
	}

	return c.JSON(fiber.Map{
		"message": result.Message,
	})
}

// VerifyOTP checks a submitted code against the pending challenge
func (h *OTPHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone" validate:"required,phone"`
		OTP   string `json:"otp" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid request body",
			"verified": false,
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Phone number and OTP are required",
			"verified": false,
		})
	}

	result := h.service.Verify(c.UserContext(), req.Phone, req.OTP)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  result.Message,
			"verified": false,
		})
	}

	return c.JSON(fiber.Map{
		"message":  result.Message,
		"verified": true,
	})
}

// GetOTPStatus reports whether a phone has a live pending challenge
func (h *OTPHandler) GetOTPStatus(c *fiber.Ctx) error {
	phone := c.Params("phone")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Phone number is required",
		})
	}

	status := h.service.GetStatus(phone)
	response := fiber.Map{
		"hasActiveOTP": status.HasActiveOTP,
	}
	if status.HasActiveOTP {
		response["remainingTime"] = status.RemainingSeconds
	}
	return c.JSON(response)
}
