package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturn-labs/bookrent-backend/internal/otp"
)

// scriptedProvider hands out a fixed token and accepts one known code
type scriptedProvider struct {
	code string
}

func (p *scriptedProvider) SendChallenge(ctx context.Context, phone string) (string, error) {
	return "session-1", nil
}

func (p *scriptedProvider) CheckChallenge(ctx context.Context, token, code string) (bool, error) {
	return code == p.code, nil
}

func otpApp() *fiber.App {
	service := otp.NewService(otp.NewMemoryStore(), &scriptedProvider{code: "482913"})
	handler := NewOTPHandler(service)

	app := fiber.New()
	app.Post("/api/otp/send", handler.SendOTP)
	app.Post("/api/otp/verify", handler.VerifyOTP)
	app.Get("/api/otp/status/:phone", handler.GetOTPStatus)
	return app
}

func otpPost(t *testing.T, app *fiber.App, path string, body fiber.Map) (*http.Response, map[string]interface{}) {
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

func TestSendThenVerifyOverHTTP(t *testing.T) {
	app := otpApp()

	resp, body := otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent successfully", body["message"])

	resp, body = otpPost(t, app, "/api/otp/verify", fiber.Map{"phone": "9876543210", "otp": "482913"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["verified"])
}

func TestVerifyWrongCodeReportsRemainingAttempts(t *testing.T) {
	app := otpApp()

	_, _ = otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210"})

	resp, body := otpPost(t, app, "/api/otp/verify", fiber.Map{"phone": "9876543210", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["verified"])
	assert.Equal(t, "invalid OTP, 2 attempts remaining", body["message"])
}

func TestSendRejectsShortPhone(t *testing.T) {
	app := otpApp()

	resp, _ := otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "12345"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateSendOverHTTP(t *testing.T) {
	app := otpApp()

	_, _ = otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210"})

	resp, _ := otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// An explicit resend is allowed through
	resp, body := otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210", "isResend": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent successfully", body["message"])
}

func TestStatusEndpoint(t *testing.T) {
	app := otpApp()

	req := httptest.NewRequest(http.MethodGet, "/api/otp/status/9876543210", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["hasActiveOTP"])

	_, _ = otpPost(t, app, "/api/otp/send", fiber.Map{"phone": "9876543210"})

	req = httptest.NewRequest(http.MethodGet, "/api/otp/status/9876543210", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	body = map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["hasActiveOTP"])
	assert.InDelta(t, 600, body["remainingTime"], 1)
}
