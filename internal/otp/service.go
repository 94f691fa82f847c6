package otp

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Policy defaults, overridable via OTP_TTL_MINUTES / OTP_MAX_ATTEMPTS
const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 3
)

// Result is the structured outcome of a send or verify call. Expected
// failures (duplicate send, bad code, expiry) come back here, never as errors.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SessionToken string `json:"session_token,omitempty"`
}

// Status reports whether a phone has a live pending challenge
type Status struct {
	HasActiveOTP     bool `json:"has_active_otp"`
	RemainingSeconds int  `json:"remaining_seconds,omitempty"`
}

// Service owns the per-phone OTP lifecycle: one pending challenge per phone,
// fixed TTL, bounded verification attempts. Code delivery and comparison are
// delegated to the Provider.
type Service struct {
	store       Store
	provider    Provider
	ttl         time.Duration
	maxAttempts int

	// now is swappable in tests
	now func() time.Time

	// mu serializes record transitions. Provider network calls happen
	// outside the lock so one slow gateway call can't stall other phones.
	mu sync.Mutex
}

// NewService creates an OTP service with policy constants from the environment
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:       store,
		provider:    provider,
		ttl:         ttlFromEnv(),
		maxAttempts: maxAttemptsFromEnv(),
		now:         time.Now,
	}
}

// Send issues a challenge for the phone. A second send while a challenge is
// still pending is rejected unless isResend is set, in which case the old
// record is discarded and replaced with a fresh one (new token, attempts 0).
func (s *Service) Send(ctx context.Context, rawPhone string, isResend bool) Result {
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		return Result{Success: false, Message: "phone number is required"}
	}

	s.mu.Lock()
	if existing, ok := s.getLive(phone); ok && !isResend {
		remaining := secondsUntil(existing.ExpiresAt, s.now())
		s.mu.Unlock()
		return Result{
			Success: false,
			Message: fmt.Sprintf("an OTP was already sent to this number, please wait %d seconds before requesting again", remaining),
		}
	}
	s.mu.Unlock()

	token, err := s.provider.SendChallenge(ctx, phone)
	if err != nil {
		log.Printf("OTP send failed for %s: %v", phone, err)
		return Result{Success: false, Message: "failed to send OTP, please try again"}
	}

	s.mu.Lock()
	s.store.Put(&Record{
		Phone:        phone,
		SessionToken: token,
		ExpiresAt:    s.now().Add(s.ttl),
		Attempts:     0,
	})
	s.mu.Unlock()

	return Result{Success: true, Message: "OTP sent successfully", SessionToken: token}
}

// Verify checks a submitted code against the pending challenge. On success
// the record is consumed; a wrong code burns an attempt, and the record is
// purged once no attempts remain or the TTL has elapsed.
func (s *Service) Verify(ctx context.Context, rawPhone, code string) Result {
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		return Result{Success: false, Message: "phone number is required"}
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{Success: false, Message: "OTP code is required"}
	}

	s.mu.Lock()
	record, ok := s.store.Get(phone)
	if !ok {
		s.mu.Unlock()
		return Result{Success: false, Message: "no OTP found for this phone number"}
	}
	if record.Expired(s.now()) {
		s.store.Delete(phone)
		s.mu.Unlock()
		return Result{Success: false, Message: "OTP expired, please request a new one"}
	}
	if record.Attempts >= s.maxAttempts {
		s.store.Delete(phone)
		s.mu.Unlock()
		return Result{Success: false, Message: "too many attempts, please request a new OTP"}
	}
	token := record.SessionToken
	s.mu.Unlock()

	match, err := s.provider.CheckChallenge(ctx, token, code)
	if err != nil {
		// A failing provider check degrades to a mismatch; it still burns
		// an attempt and never reaches the caller as a transport error.
		log.Printf("OTP check failed for %s: %v", phone, err)
		match = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok = s.store.Get(phone)
	if !ok {
		// Consumed or replaced while the provider call was in flight
		return Result{Success: false, Message: "no OTP found for this phone number"}
	}

	if match {
		s.store.Delete(phone)
		return Result{Success: true, Message: "OTP verified successfully"}
	}

	record.Attempts++
	remaining := s.maxAttempts - record.Attempts
	if remaining <= 0 {
		s.store.Delete(phone)
		return Result{Success: false, Message: "invalid OTP, no attempts remaining, please request a new one"}
	}
	s.store.Put(record)
	return Result{Success: false, Message: fmt.Sprintf("invalid OTP, %d attempts remaining", remaining)}
}

// GetStatus reports whether a live challenge exists for the phone, cleaning
// up an expired record as a side effect.
func (s *Service) GetStatus(rawPhone string) Status {
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		return Status{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.getLive(phone)
	if !ok {
		return Status{}
	}
	return Status{
		HasActiveOTP:     true,
		RemainingSeconds: secondsUntil(record.ExpiresAt, s.now()),
	}
}

// getLive fetches the record for phone, lazily deleting it when expired.
// Callers must hold s.mu.
func (s *Service) getLive(phone string) (*Record, bool) {
	record, ok := s.store.Get(phone)
	if !ok {
		return nil, false
	}
	if record.Expired(s.now()) {
		s.store.Delete(phone)
		return nil, false
	}
	return record, true
}

func secondsUntil(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Seconds()))
}

func ttlFromEnv() time.Duration {
	if v := os.Getenv("OTP_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return DefaultTTL
}

func maxAttemptsFromEnv() int {
	if v := os.Getenv("OTP_MAX_ATTEMPTS"); v != "" {
		if attempts, err := strconv.Atoi(v); err == nil && attempts > 0 {
			return attempts
		}
	}
	return DefaultMaxAttempts
}
