package otp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// TwilioProvider delivers OTPs through the Twilio Verify API. Twilio owns the
// code; we only keep the verification SID it hands back as the session token.
type TwilioProvider struct {
	client     *twilio.RestClient
	serviceSID string
}

// NewTwilioProvider creates a Verify-backed provider from environment credentials
func NewTwilioProvider() (*TwilioProvider, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	serviceSID := os.Getenv("TWILIO_VERIFY_SERVICE_SID")

	if accountSid == "" || authToken == "" || serviceSID == "" {
		return nil, fmt.Errorf("missing Twilio Verify credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	// Twilio's client has no per-call context; bound it with a hard timeout
	// so a slow gateway surfaces as a send/verify failure, not a hang.
	client.SetTimeout(10 * time.Second)

	return &TwilioProvider{
		client:     client,
		serviceSID: serviceSID,
	}, nil
}

func (p *TwilioProvider) SendChallenge(ctx context.Context, phone string) (string, error) {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel("sms")

	resp, err := p.client.VerifyV2.CreateVerification(p.serviceSID, params)
	if err != nil {
		return "", fmt.Errorf("twilio verification failed: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio verification returned no SID")
	}

	return *resp.Sid, nil
}

func (p *TwilioProvider) CheckChallenge(ctx context.Context, token, code string) (bool, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetVerificationSid(token)
	params.SetCode(code)

	resp, err := p.client.VerifyV2.CreateVerificationCheck(p.serviceSID, params)
	if err != nil {
		return false, fmt.Errorf("twilio verification check failed: %w", err)
	}

	return resp.Status != nil && *resp.Status == "approved", nil
}
