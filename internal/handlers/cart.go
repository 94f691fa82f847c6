package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pageturn-labs/bookrent-backend/internal/pricing"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// CartHandler prices carts server-side. Clients send book IDs, tiers and
// quantities; weekly prices always come from the catalog, never the request.
type CartHandler struct {
	store storage.Store
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store storage.Store) *CartHandler {
	return &CartHandler{
		store: store,
	}
}

// CartItemRequest is one rental line as the client sends it
type CartItemRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Tier     string `json:"tier"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// QuoteRequest is the cart the client wants priced
type QuoteRequest struct {
	Items     []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Delivery  string            `json:"delivery"`
	PromoCode string            `json:"promo_code"`
}

// buildCart loads catalog prices for the requested lines
func (h *CartHandler) buildCart(items []CartItemRequest) (*pricing.Cart, error) {
	cart := pricing.NewCart()
	for _, line := range items {
		book, err := h.store.GetBook(line.BookID)
		if err != nil {
			return nil, err
		}
		if !book.Active {
			return nil, storage.ErrBookNotFound
		}
		if err := cart.AddItem(pricing.Item{
			BookID:      book.BookID,
			Title:       book.Title,
			WeeklyPrice: book.WeeklyPrice,
			Tier:        pricing.Tier(line.Tier),
			Quantity:    line.Quantity,
		}); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Quote prices a cart and returns the breakdown
func (h *CartHandler) Quote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cart must have at least one item with quantity 1 or more",
		})
	}

	delivery := pricing.DeliveryOption(req.Delivery)
	if req.Delivery == "" {
		delivery = pricing.DeliveryStandard
	}

	cart, err := h.buildCart(req.Items)
	if err != nil {
		return quoteError(c, err)
	}

	quote, err := cart.Quote(delivery, req.PromoCode)
	if err != nil {
		return quoteError(c, err)
	}

	return c.JSON(fiber.Map{
		"items": cart.Items(),
		"quote": quote,
	})
}

// quoteError maps pricing and catalog failures to client responses
func quoteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrBookNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "One or more books are not available",
		})
	case errors.Is(err, pricing.ErrQuantityBelowOne):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Quantity must be at least 1",
		})
	case errors.Is(err, pricing.ErrUnknownDelivery):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown delivery option",
		})
	case errors.Is(err, pricing.ErrUnknownPromoCode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid promo code",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to price cart",
		})
	}
}
