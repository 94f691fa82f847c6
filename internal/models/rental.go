package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Rental status constants
const (
	RentalStatusPending   = "pending"
	RentalStatusConfirmed = "confirmed"
	RentalStatusDelivered = "delivered"
	RentalStatusReturned  = "returned"
	RentalStatusCancelled = "cancelled"

	PaymentMethodGateway = "gateway"
	PaymentMethodCOD     = "cod"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Rental represents a confirmed checkout: a set of rented books with the
// totals the pricing engine computed for them
type Rental struct {
	gorm.Model

	RentalID string `json:"rental_id" gorm:"uniqueIndex"`
	UserID   string `json:"user_id" gorm:"index"`

	Items []RentalItem `json:"items" gorm:"foreignKey:RentalID;references:RentalID"`

	// Totals, snapshot at checkout time
	Subtotal       float64 `json:"subtotal"`
	DeliveryFee    float64 `json:"delivery_fee"`
	PromoDiscount  float64 `json:"promo_discount"`
	TotalAmount    float64 `json:"total_amount"`
	DeliveryOption string  `json:"delivery_option"`
	PromoCode      string  `json:"promo_code,omitempty"`

	Status        string `json:"status" gorm:"default:pending"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status" gorm:"default:pending"`

	DueAt       *time.Time `json:"due_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	ReturnedAt  *time.Time `json:"returned_at"`
}

// BeforeCreate hook to auto-generate RentalID
func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.RentalID == "" {
		r.RentalID = fmt.Sprintf("RN%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// IsOverdue reports whether the rental is past its due date and not returned
func (r *Rental) IsOverdue(asOf time.Time) bool {
	return r.DueAt != nil && asOf.After(*r.DueAt) &&
		r.Status != RentalStatusReturned && r.Status != RentalStatusCancelled
}

// RentalItem is the per-book snapshot inside a rental. Prices are copied from
// the catalog at checkout so later catalog edits don't change past orders.
type RentalItem struct {
	gorm.Model

	RentalID    string  `json:"rental_id" gorm:"index"`
	BookID      string  `json:"book_id"`
	Title       string  `json:"title"`
	WeeklyPrice float64 `json:"weekly_price"`
	Tier        string  `json:"tier"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}
