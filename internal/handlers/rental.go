package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/middleware"
	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/pricing"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// RentalHandler handles checkout and rental lifecycle requests
type RentalHandler struct {
	store    storage.Store
	payments *services.PaymentService
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(store storage.Store, payments *services.PaymentService) *RentalHandler {
	return &RentalHandler{
		store:    store,
		payments: payments,
	}
}

// CheckoutRequest is the cart a client wants to turn into a rental. ClientTotal
// is the grand total the client displayed; checkout fails if the server's own
// pricing disagrees by a cent or more.
type CheckoutRequest struct {
	Items         []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Delivery      string            `json:"delivery"`
	PromoCode     string            `json:"promo_code"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=gateway cod"`
	ClientTotal   float64           `json:"client_total"`
}

// Checkout prices the cart server-side, verifies the client's total, reserves
// stock and creates the rental
func (h *RentalHandler) Checkout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	user, err := h.store.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Checkout needs at least one item and a payment method",
		})
	}

	if req.PaymentMethod == models.PaymentMethodGateway && h.payments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Online payments are not available, try cash on delivery",
		})
	}

	delivery := pricing.DeliveryOption(req.Delivery)
	if req.Delivery == "" {
		delivery = pricing.DeliveryStandard
	}

	cartHandler := CartHandler{store: h.store}
	cart, err := cartHandler.buildCart(req.Items)
	if err != nil {
		return quoteError(c, err)
	}

	quote, err := cart.Quote(delivery, req.PromoCode)
	if err != nil {
		return quoteError(c, err)
	}

	// The client saw a price before paying. If our price differs, the catalog
	// or a promo changed underneath them; make them re-quote instead of
	// charging a surprise amount.
	if !pricing.SameCents(quote.GrandTotal, req.ClientTotal) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":        "Cart total has changed, please review before paying",
			"server_total": quote.GrandTotal,
			"quote":        quote,
		})
	}

	// Reserve stock line by line, rolling back on failure
	items := cart.Items()
	reserved := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		if err := h.store.AdjustStock(item.BookID, -item.Quantity); err != nil {
			for _, r := range reserved {
				if rbErr := h.store.AdjustStock(r.BookID, r.Quantity); rbErr != nil {
					log.Printf("⚠️ Failed to restore stock for %s: %v", r.BookID, rbErr)
				}
			}
			if errors.Is(err, storage.ErrOutOfStock) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error":   "Not enough copies in stock",
					"book_id": item.BookID,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to reserve stock",
			})
		}
		reserved = append(reserved, item)
	}

	rental := &models.Rental{
		UserID:         user.UserID,
		Subtotal:       quote.Subtotal,
		DeliveryFee:    quote.DeliveryFee,
		PromoDiscount:  quote.PromoDiscount,
		TotalAmount:    quote.GrandTotal,
		DeliveryOption: string(delivery),
		PromoCode:      req.PromoCode,
		Status:         models.RentalStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
	}
	for _, item := range items {
		rental.Items = append(rental.Items, models.RentalItem{
			BookID:      item.BookID,
			Title:       item.Title,
			WeeklyPrice: item.WeeklyPrice,
			Tier:        string(item.Tier),
			Quantity:    item.Quantity,
			LineTotal:   pricing.Round2(item.Total()),
		})
	}

	// Due date follows the longest tier in the cart
	weeks := 0
	for _, item := range items {
		if w := pricing.TierWeeks(item.Tier); w > weeks {
			weeks = w
		}
	}
	dueAt := time.Now().AddDate(0, 0, weeks*7)
	rental.DueAt = &dueAt

	rental, err = h.store.CreateRental(rental)
	if err != nil {
		for _, r := range reserved {
			if rbErr := h.store.AdjustStock(r.BookID, r.Quantity); rbErr != nil {
				log.Printf("⚠️ Failed to restore stock for %s: %v", r.BookID, rbErr)
			}
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create rental",
		})
	}

	log.Printf("📚 Rental %s created for user %s (₹%.2f, %s)",
		rental.RentalID, user.UserID, rental.TotalAmount, rental.PaymentMethod)

	response := fiber.Map{
		"message": "Rental created successfully",
		"rental":  rental,
		"quote":   quote,
	}

	if req.PaymentMethod == models.PaymentMethodGateway {
		order, err := h.payments.CreateOrderForRental(c.UserContext(), rental, user)
		if err != nil {
			log.Printf("⚠️ Failed to open payment order for rental %s: %v", rental.RentalID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":     "Failed to start payment, try again",
				"rental_id": rental.RentalID,
			})
		}
		response["payment_order"] = order
	} else {
		// COD rentals confirm immediately; payment settles at the doorstep
		if err := h.store.UpdateRentalStatus(rental.RentalID, models.RentalStatusConfirmed); err != nil {
			log.Printf("⚠️ Failed to confirm COD rental %s: %v", rental.RentalID, err)
		} else {
			rental.Status = models.RentalStatusConfirmed
		}
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// MyRentals lists the authenticated user's rentals
func (h *RentalHandler) MyRentals(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	rentals, err := h.store.GetRentalsByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve rentals",
		})
	}

	return c.JSON(fiber.Map{
		"rentals": rentals,
		"count":   len(rentals),
	})
}

// GetRental retrieves one rental, owner or admin only
func (h *RentalHandler) GetRental(c *fiber.Ctx) error {
	rental, err := h.store.GetRental(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Rental not found",
		})
	}

	if rental.UserID != middleware.UserID(c) && c.Locals("role") != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not your rental",
		})
	}

	return c.JSON(rental)
}

// allowed status moves, keyed by current status
var rentalTransitions = map[string][]string{
	models.RentalStatusPending:   {models.RentalStatusConfirmed, models.RentalStatusCancelled},
	models.RentalStatusConfirmed: {models.RentalStatusDelivered, models.RentalStatusCancelled},
	models.RentalStatusDelivered: {models.RentalStatusReturned},
}

// UpdateRentalStatus moves a rental along its lifecycle (admin)
func (h *RentalHandler) UpdateRentalStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status" validate:"required,oneof=confirmed delivered returned cancelled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown rental status",
		})
	}

	rental, err := h.store.GetRental(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Rental not found",
		})
	}

	allowed := false
	for _, next := range rentalTransitions[rental.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":          "Invalid status transition",
			"current_status": rental.Status,
		})
	}

	if err := h.store.UpdateRentalStatus(rental.RentalID, req.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update rental",
		})
	}

	// Returned or cancelled copies go back on the shelf
	if req.Status == models.RentalStatusReturned || req.Status == models.RentalStatusCancelled {
		for _, item := range rental.Items {
			if err := h.store.AdjustStock(item.BookID, item.Quantity); err != nil {
				log.Printf("⚠️ Failed to restore stock for %s: %v", item.BookID, err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message":   "Rental status updated",
		"rental_id": rental.RentalID,
		"status":    req.Status,
	})
}

// ListRentals lists rentals, optionally by status (admin)
func (h *RentalHandler) ListRentals(c *fiber.Ctx) error {
	status := c.Query("status")

	statuses := []string{status}
	if status == "" {
		statuses = []string{
			models.RentalStatusPending, models.RentalStatusConfirmed,
			models.RentalStatusDelivered, models.RentalStatusReturned,
			models.RentalStatusCancelled,
		}
	}

	var rentals []*models.Rental
	for _, s := range statuses {
		batch, err := h.store.GetRentalsByStatus(s)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to retrieve rentals",
			})
		}
		rentals = append(rentals, batch...)
	}

	return c.JSON(fiber.Map{
		"rentals": rentals,
		"count":   len(rentals),
	})
}
