package services

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers transactional texts (order confirmations, due-date
// reminders). OTP delivery goes through the otp package's provider instead.
type SMSSender interface {
	SendSMS(to string, message string) error
}

var smsSender SMSSender

// SetSMSSender sets the global SMS sender (call from main.go)
func SetSMSSender(s SMSSender) {
	smsSender = s
}

// GetSMSSender returns the global SMS sender
func GetSMSSender() SMSSender {
	return smsSender
}

// TwilioSMS sends texts via the Twilio messaging API
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSMS creates a Twilio-backed SMS sender from environment credentials
func NewTwilioSMS() (*TwilioSMS, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioSMS{
		client: client,
		from:   from,
	}, nil
}

// SendSMS sends a text message via Twilio
func (t *TwilioSMS) SendSMS(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return err
	}

	log.Printf("✅ SMS sent! SID: %s", *resp.Sid)
	return nil
}

// LogSMS just logs messages, used when Twilio isn't configured
type LogSMS struct{}

func (LogSMS) SendSMS(to string, message string) error {
	log.Printf("📱 [dev] SMS to %s: %s", to, message)
	return nil
}
