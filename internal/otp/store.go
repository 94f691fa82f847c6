package otp

import (
	"sync"
	"time"
)

// Record is a pending verification challenge for one phone number. At most
// one live record exists per phone.
type Record struct {
	Phone        string
	SessionToken string
	ExpiresAt    time.Time
	Attempts     int
}

// Expired reports whether the record's TTL has elapsed as of now
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store holds pending OTP records keyed by canonical phone number. The
// in-memory implementation below suits single-instance deployments; a
// TTL-capable external key-value store can implement the same interface for
// multi-instance setups.
type Store interface {
	Get(phone string) (*Record, bool)
	Put(record *Record)
	Delete(phone string)
}

// MemoryStore keeps pending records in a mutex-guarded map. Records die with
// the process, which is acceptable for a short-lived verification step.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory OTP store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (m *MemoryStore) Get(phone string) (*Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.records[phone]
	if !exists {
		return nil, false
	}
	// Return a copy so callers can't mutate the stored record outside Put
	clone := *record
	return &clone, true
}

func (m *MemoryStore) Put(record *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records[record.Phone] = &clone
}

func (m *MemoryStore) Delete(phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, phone)
}
