package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Payment order status constants
const (
	PaymentOrderCreated = "created"
	PaymentOrderPaid    = "paid"
	PaymentOrderFailed  = "failed"
)

// PaymentOrder tracks a payment attempt against the external gateway for a
// rental. COD rentals never get one.
type PaymentOrder struct {
	gorm.Model

	OrderID  string  `json:"order_id" gorm:"uniqueIndex"`
	RentalID string  `json:"rental_id" gorm:"index"`
	UserID   string  `json:"user_id" gorm:"index"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency" gorm:"default:INR"`

	// Gateway-side identifiers
	GatewayOrderID   string `json:"gateway_order_id" gorm:"index"`
	PaymentSessionID string `json:"payment_session_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`

	Status string     `json:"status" gorm:"default:created"`
	PaidAt *time.Time `json:"paid_at"`
}

// BeforeCreate hook to auto-generate OrderID
func (p *PaymentOrder) BeforeCreate(tx *gorm.DB) error {
	if p.OrderID == "" {
		p.OrderID = fmt.Sprintf("ORD%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}
