package pricing

// Item is one rental line in a cart. WeeklyPrice is catalog-owned input;
// everything monetary here derives from it.
type Item struct {
	BookID      string  `json:"book_id"`
	Title       string  `json:"title,omitempty"`
	WeeklyPrice float64 `json:"weekly_price"`
	Tier        Tier    `json:"tier"`
	Quantity    int     `json:"quantity"`
}

// Total is the line total for the item, unrounded
func (it Item) Total() float64 {
	return TierPrice(it.WeeklyPrice, it.Tier) * float64(it.Quantity)
}

// Quote is the priced breakdown of a cart. Subtotal, discount and total are
// rounded to the cent; the delivery fee is already whole.
type Quote struct {
	Subtotal      float64 `json:"subtotal"`
	DeliveryFee   float64 `json:"delivery_fee"`
	PromoDiscount float64 `json:"promo_discount"`
	GrandTotal    float64 `json:"grand_total"`
}

// Cart holds rental line items, one per book
type Cart struct {
	items []Item
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{}
}

// Items returns a copy of the cart's lines
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// AddItem puts a line in the cart. Adding a book already present increments
// its quantity. Quantities below 1 are rejected, never stored.
func (c *Cart) AddItem(item Item) error {
	if item.Quantity < 1 {
		return ErrQuantityBelowOne
	}
	for i := range c.items {
		if c.items[i].BookID == item.BookID {
			c.items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.items = append(c.items, item)
	return nil
}

// UpdateQuantity changes one line's quantity. Setting it below 1 is rejected;
// removal is an explicit RemoveItem, not a quantity of zero.
func (c *Cart) UpdateQuantity(bookID string, quantity int) error {
	if quantity < 1 {
		return ErrQuantityBelowOne
	}
	for i := range c.items {
		if c.items[i].BookID == bookID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateTier changes one line's rental duration; other lines are untouched
func (c *Cart) UpdateTier(bookID string, tier Tier) error {
	for i := range c.items {
		if c.items[i].BookID == bookID {
			c.items[i].Tier = tier
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem drops a line from the cart
func (c *Cart) RemoveItem(bookID string) error {
	for i := range c.items {
		if c.items[i].BookID == bookID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Subtotal sums line totals without rounding
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.items {
		sum += item.Total()
	}
	return sum
}

// Quote prices the cart with a delivery option and optional promo code. The
// grand total clamps at zero when a discount exceeds subtotal plus delivery.
func (c *Cart) Quote(delivery DeliveryOption, promoCode string) (Quote, error) {
	fee, err := DeliveryFee(delivery)
	if err != nil {
		return Quote{}, err
	}

	subtotal := c.Subtotal()
	discount, err := PromoDiscount(promoCode, subtotal)
	if err != nil {
		return Quote{}, err
	}

	total := subtotal + fee - discount
	if total < 0 {
		total = 0
	}

	return Quote{
		Subtotal:      Round2(subtotal),
		DeliveryFee:   fee,
		PromoDiscount: Round2(discount),
		GrandTotal:    Round2(total),
	}, nil
}
