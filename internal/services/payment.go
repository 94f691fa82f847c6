package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// PaymentGateway is the external payment provider (Cashfree), reached over
// HTTPS. It stays behind this interface so checkout logic is testable
// without the gateway.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, order *models.PaymentOrder, customer *models.User) (gatewayOrderID, paymentSessionID string, err error)
	VerifyWebhookSignature(payload []byte, signature, timestamp string) bool
}

// CashfreeGateway talks to the Cashfree PG REST API
type CashfreeGateway struct {
	client    *http.Client
	baseURL   string
	appID     string
	secretKey string
}

// NewCashfreeGateway creates a gateway client from environment credentials
func NewCashfreeGateway() (*CashfreeGateway, error) {
	appID := os.Getenv("CASHFREE_APP_ID")
	secretKey := os.Getenv("CASHFREE_SECRET_KEY")
	if appID == "" || secretKey == "" {
		return nil, fmt.Errorf("missing Cashfree credentials in environment variables")
	}

	baseURL := os.Getenv("CASHFREE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://sandbox.cashfree.com/pg"
	}

	return &CashfreeGateway{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		appID:     appID,
		secretKey: secretKey,
	}, nil
}

type cashfreeOrderRequest struct {
	OrderID         string               `json:"order_id"`
	OrderAmount     float64              `json:"order_amount"`
	OrderCurrency   string               `json:"order_currency"`
	CustomerDetails cashfreeCustomerInfo `json:"customer_details"`
}

type cashfreeCustomerInfo struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type cashfreeOrderResponse struct {
	CFOrderID        json.Number `json:"cf_order_id"`
	PaymentSessionID string      `json:"payment_session_id"`
	OrderStatus      string      `json:"order_status"`
}

// CreateOrder registers the order with Cashfree and returns the gateway
// order ID plus the payment session the frontend opens checkout with
func (g *CashfreeGateway) CreateOrder(ctx context.Context, order *models.PaymentOrder, customer *models.User) (string, string, error) {
	body, err := json.Marshal(cashfreeOrderRequest{
		OrderID:       order.OrderID,
		OrderAmount:   order.Amount,
		OrderCurrency: order.Currency,
		CustomerDetails: cashfreeCustomerInfo{
			CustomerID:    customer.UserID,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			CustomerEmail: customer.Email,
		},
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("x-client-id", g.appID)
	req.Header.Set("x-client-secret", g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("cashfree order creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("cashfree order creation returned status %d", resp.StatusCode)
	}

	var parsed cashfreeOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("failed to parse cashfree response: %w", err)
	}

	return parsed.CFOrderID.String(), parsed.PaymentSessionID, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature Cashfree sends with
// each webhook (base64 of timestamp + raw body, keyed by the secret)
func (g *CashfreeGateway) VerifyWebhookSignature(payload []byte, signature, timestamp string) bool {
	h := hmac.New(sha256.New, []byte(g.secretKey))
	h.Write([]byte(timestamp))
	h.Write(payload)
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// PaymentService ties checkout payments to the store and the gateway
type PaymentService struct {
	store   storage.Store
	gateway PaymentGateway
}

// NewPaymentService creates a new payment service
func NewPaymentService(store storage.Store, gateway PaymentGateway) *PaymentService {
	return &PaymentService{
		store:   store,
		gateway: gateway,
	}
}

// CreateOrderForRental opens a gateway payment order for a pending rental
func (p *PaymentService) CreateOrderForRental(ctx context.Context, rental *models.Rental, customer *models.User) (*models.PaymentOrder, error) {
	order, err := p.store.CreatePaymentOrder(&models.PaymentOrder{
		RentalID: rental.RentalID,
		UserID:   rental.UserID,
		Amount:   rental.TotalAmount,
		Currency: "INR",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment order: %w", err)
	}

	gatewayOrderID, sessionID, err := p.gateway.CreateOrder(ctx, order, customer)
	if err != nil {
		order.Status = models.PaymentOrderFailed
		_ = p.store.UpdatePaymentOrder(order)
		return nil, err
	}

	order.GatewayOrderID = gatewayOrderID
	order.PaymentSessionID = sessionID
	if err := p.store.UpdatePaymentOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// webhookPayload is the slice of the Cashfree webhook body we act on
type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			CFPaymentID   json.Number `json:"cf_payment_id"`
			PaymentStatus string      `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

// ProcessWebhook handles payment webhooks. The signature must already be
// verified by the caller (middleware).
func (p *PaymentService) ProcessWebhook(payload []byte) error {
	var webhook webhookPayload
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	log.Printf("Processing payment webhook: %s", webhook.Type)

	switch webhook.Type {
	case "PAYMENT_SUCCESS_WEBHOOK":
		return p.handlePaymentSuccess(webhook)
	case "PAYMENT_FAILED_WEBHOOK":
		return p.handlePaymentFailed(webhook)
	default:
		log.Printf("Unhandled webhook type: %s", webhook.Type)
		return nil
	}
}

func (p *PaymentService) handlePaymentSuccess(webhook webhookPayload) error {
	order, err := p.store.GetPaymentOrder(webhook.Data.Order.OrderID)
	if err != nil {
		return fmt.Errorf("payment order not found: %w", err)
	}

	now := time.Now()
	order.Status = models.PaymentOrderPaid
	order.GatewayPaymentID = webhook.Data.Payment.CFPaymentID.String()
	order.PaidAt = &now
	if err := p.store.UpdatePaymentOrder(order); err != nil {
		return fmt.Errorf("failed to update payment order: %w", err)
	}

	rental, err := p.store.GetRental(order.RentalID)
	if err != nil {
		return fmt.Errorf("rental not found: %w", err)
	}
	rental.PaymentStatus = models.PaymentStatusPaid
	rental.Status = models.RentalStatusConfirmed
	if err := p.store.UpdateRental(rental); err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}

	// Confirmation text is best effort; the payment is already recorded
	if sender := GetSMSSender(); sender != nil {
		user, err := p.store.GetUser(rental.UserID)
		if err == nil {
			msg := fmt.Sprintf("Payment of ₹%.2f received for rental %s. Happy reading!", order.Amount, rental.RentalID)
			if err := sender.SendSMS(user.Phone, msg); err != nil {
				log.Printf("Failed to send payment confirmation to %s: %v", user.Phone, err)
			}
		}
	}

	log.Printf("Payment recorded: order %s for rental %s", order.OrderID, rental.RentalID)
	return nil
}

func (p *PaymentService) handlePaymentFailed(webhook webhookPayload) error {
	order, err := p.store.GetPaymentOrder(webhook.Data.Order.OrderID)
	if err != nil {
		return fmt.Errorf("payment order not found: %w", err)
	}

	order.Status = models.PaymentOrderFailed
	if err := p.store.UpdatePaymentOrder(order); err != nil {
		return err
	}

	log.Printf("Payment failed: order %s (gateway status %s)",
		order.OrderID, webhook.Data.Payment.PaymentStatus)
	return nil
}
