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

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

func seedCatalog(t *testing.T) (*storage.MemoryStore, *models.Book, *models.Book) {
	t.Helper()
	store := storage.NewMemoryStore()

	weekly, err := store.CreateBook(&models.Book{
		Title:       "The Midnight Library",
		Author:      "Matt Haig",
		WeeklyPrice: 10.0,
		Stock:       5,
	})
	require.NoError(t, err)

	pricey, err := store.CreateBook(&models.Book{
		Title:       "Project Hail Mary",
		Author:      "Andy Weir",
		WeeklyPrice: 20.0,
		Stock:       2,
	})
	require.NoError(t, err)

	return store, weekly, pricey
}

func quoteApp(store storage.Store) *fiber.App {
	app := fiber.New()
	handler := NewCartHandler(store)
	app.Post("/api/cart/quote", handler.Quote)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestQuoteUsesCatalogPrices(t *testing.T) {
	store, weekly, pricey := seedCatalog(t)
	app := quoteApp(store)

	resp, body := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 1},
			{"book_id": pricey.BookID, "tier": "2months", "quantity": 1},
		},
		"delivery": "standard",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := body["quote"].(map[string]interface{})
	// 10 + 20*2*0.9 = 46, plus standard delivery 49
	assert.InDelta(t, 46.0, quote["subtotal"], 0.001)
	assert.InDelta(t, 49.0, quote["delivery_fee"], 0.001)
	assert.InDelta(t, 95.0, quote["grand_total"], 0.001)
}

func TestQuoteAppliesPromo(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app := quoteApp(store)

	resp, body := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 2},
		},
		"delivery":   "pickup",
		"promo_code": "READER10",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := body["quote"].(map[string]interface{})
	assert.InDelta(t, 20.0, quote["subtotal"], 0.001)
	assert.InDelta(t, 2.0, quote["promo_discount"], 0.001)
	assert.InDelta(t, 18.0, quote["grand_total"], 0.001)
}

func TestQuoteRejectsUnknownPromo(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app := quoteApp(store)

	resp, body := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 1},
		},
		"promo_code": "NOTREAL",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid promo code", body["error"])
}

func TestQuoteRejectsZeroQuantity(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app := quoteApp(store)

	resp, _ := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "1month", "quantity": 0},
		},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuoteRejectsUnknownBook(t *testing.T) {
	store, _, _ := seedCatalog(t)
	app := quoteApp(store)

	resp, _ := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": "BK99999", "tier": "1month", "quantity": 1},
		},
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuoteUnknownTierFallsBack(t *testing.T) {
	store, weekly, _ := seedCatalog(t)
	app := quoteApp(store)

	resp, body := postJSON(t, app, "/api/cart/quote", fiber.Map{
		"items": []fiber.Map{
			{"book_id": weekly.BookID, "tier": "6months", "quantity": 1},
		},
		"delivery": "pickup",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := body["quote"].(map[string]interface{})
	// Unrecognized tier prices as one month
	assert.InDelta(t, 10.0, quote["grand_total"], 0.001)
}
