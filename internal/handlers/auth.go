package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/otp"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
	"github.com/pageturn-labs/bookrent-backend/internal/utils"
)

// AuthHandler handles phone-based signup/login and admin password login
type AuthHandler struct {
	store      storage.Store
	otpService *otp.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, otpService *otp.Service) *AuthHandler {
	return &AuthHandler{
		store:      store,
		otpService: otpService,
	}
}

// Register creates an account for a new phone number and sends the first OTP
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and a valid phone number are required",
		})
	}

	phone := otp.CanonicalPhone(req.Phone)
	if existing, err := h.store.GetUserByPhone(phone); err == nil && existing.Verified {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This phone number is already registered, please login",
		})
	} else if err != nil {
		_, err = h.store.CreateUser(&models.User{
			Name:  req.Name,
			Phone: phone,
			Email: req.Email,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create account",
			})
		}
	}

	result := h.otpService.Send(c.UserContext(), phone, false)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": result.Message,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created, verify the OTP sent to your phone",
	})
}

// Login sends an OTP to an existing account's phone
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone" validate:"required,phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid phone number is required",
		})
	}

	phone := otp.CanonicalPhone(req.Phone)
	if _, err := h.store.GetUserByPhone(phone); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No account found for this phone number, please register",
		})
	}

	result := h.otpService.Send(c.UserContext(), phone, false)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": result.Message,
		})
	}

	return c.JSON(fiber.Map{
		"message": "OTP sent to your phone",
	})
}

// VerifyLogin confirms the OTP and issues an access token
func (h *AuthHandler) VerifyLogin(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone" validate:"required,phone"`
		OTP   string `json:"otp" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number and OTP are required",
		})
	}

	result := h.otpService.Verify(c.UserContext(), req.Phone, req.OTP)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  result.Message,
			"verified": false,
		})
	}

	phone := otp.CanonicalPhone(req.Phone)
	user, err := h.store.GetUserByPhone(phone)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No account found for this phone number",
		})
	}

	if !user.Verified {
		user.Verified = true
		if err := h.store.UpdateUser(user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update account",
			})
		}
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{
		"message":  result.Message,
		"verified": true,
		"token":    token,
		"user":     user,
	})
}

// AdminLogin authenticates a dashboard account with email and password
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !user.IsAdmin() || !utils.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown account and wrong password
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
