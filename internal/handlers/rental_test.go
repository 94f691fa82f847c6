package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn-labs/bookrent-backend/internal/middleware"
	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

func checkoutApp(t *testing.T, store storage.Store) (*fiber.App, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	user, err := store.CreateUser(&models.User{
		Name:     "Priya",
		Phone:    "+919876543210",
		Verified: true,
	})
	require.NoError(t, err)

	token, err := services.GenerateToken(user)
	require.NoError(t, err)

	app := fiber.New()
	handler := NewRentalHandler(store, nil)
	app.Post("/api/rentals/checkout", middleware.RequireAuth(), handler.Checkout)
	app.Get("/api/rentals/my", middleware.RequireAuth(), handler.MyRentals)
	return app, token
}

func postAuthJSON(t *testing.T, app *fiber.App, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestCheckoutCreatesRentalAndReservesStock(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app, token := checkoutApp(t, store)

	resp, body := postAuthJSON(t, app, "/api/rentals/checkout", token, fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 2},
		},
		"delivery":       "standard",
		"payment_method": "cod",
		"client_total":   69.0, // 10*2 + 49
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	rental := body["rental"].(map[string]interface{})
	assert.InDelta(t, 69.0, rental["total_amount"], 0.001)
	assert.Equal(t, models.RentalStatusConfirmed, rental["status"])

	book, err := store.GetBook(weekly.BookID)
	require.NoError(t, err)
	assert.Equal(t, 3, book.Stock)
}

func TestCheckoutRejectsStaleClientTotal(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app, token := checkoutApp(t, store)

	resp, body := postAuthJSON(t, app, "/api/rentals/checkout", token, fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 1},
		},
		"delivery":       "standard",
		"payment_method": "cod",
		"client_total":   42.0, // server will price 59
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.InDelta(t, 59.0, body["server_total"], 0.001)

	// Nothing reserved on a rejected checkout
	book, err := store.GetBook(weekly.BookID)
	require.NoError(t, err)
	assert.Equal(t, 5, book.Stock)
}

func TestCheckoutToleratesSubCentDrift(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app, token := checkoutApp(t, store)

	resp, _ := postAuthJSON(t, app, "/api/rentals/checkout", token, fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 1},
		},
		"delivery":       "standard",
		"payment_method": "cod",
		"client_total":   59.0001,
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCheckoutRejectsOversell(t *testing.T) {
	store, _, pricey := seedCatalog(t)
	app, token := checkoutApp(t, store)

	resp, body := postAuthJSON(t, app, "/api/rentals/checkout", token, fiber.Map{
		"items": []fiber.Map{
			{"book_id": pricey.BookID, "tier": "1month", "quantity": 3}, // stock is 2
		},
		"delivery":       "pickup",
		"payment_method": "cod",
		"client_total":   60.0,
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Not enough copies in stock", body["error"])
}

func TestCheckoutRequiresAuth(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app, _ := checkoutApp(t, store)

	raw, _ := json.Marshal(fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 1},
		},
		"payment_method": "cod",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rentals/checkout", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMyRentalsListsOwnOnly(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app, token := checkoutApp(t, store)

	_, body := postAuthJSON(t, app, "/api/rentals/checkout", token, fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "2months", "quantity": 1},
		},
		"delivery":       "pickup",
		"payment_method": "cod",
		"client_total":   18.0, // 10*2*0.9
	})
	require.NotNil(t, body["rental"])

	req := httptest.NewRequest(http.MethodGet, "/api/rentals/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.EqualValues(t, 1, listed["count"])
}
