package otp

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/pageturn-labs/bookrent-backend/internal/utils"
)

// Provider delivers verification challenges and checks submitted codes. The
// session token it returns is opaque to the service: the production adapter
// returns a gateway-side verification SID, the dev adapter returns a random
// token it can map back to the code it generated. Either way the service only
// manages lifecycle (TTL, attempts, single pending record per phone) and
// never compares digits itself.
type Provider interface {
	// SendChallenge delivers a code to the phone and returns a session token
	SendChallenge(ctx context.Context, phone string) (string, error)
	// CheckChallenge reports whether code matches the challenge behind token
	CheckChallenge(ctx context.Context, token, code string) (bool, error)
}

// DevProvider self-generates and self-compares 6-digit codes, for local
// development and tests where no SMS gateway is configured. Codes are logged
// instead of delivered.
type DevProvider struct {
	mu    sync.Mutex
	codes map[string]string // session token -> code
}

// NewDevProvider creates a development provider
func NewDevProvider() *DevProvider {
	return &DevProvider{
		codes: make(map[string]string),
	}
}

func (p *DevProvider) SendChallenge(ctx context.Context, phone string) (string, error) {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return "", err
	}

	token := uuid.NewString()

	p.mu.Lock()
	p.codes[token] = code
	p.mu.Unlock()

	log.Printf("📱 [dev] OTP for %s: %s", phone, code)
	return token, nil
}

func (p *DevProvider) CheckChallenge(ctx context.Context, token, code string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	expected, exists := p.codes[token]
	if !exists || expected != code {
		return false, nil
	}

	// One-shot: a matched challenge can't be replayed
	delete(p.codes, token)
	return true, nil
}
