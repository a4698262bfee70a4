package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is a mutex-guarded in-memory Store used in tests and local
// development. The single lock makes every operation trivially atomic.
type memoryStore struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*Profile
	byEmail    map[string]uuid.UUID
	byCustomer map[string]uuid.UUID
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		byID:       make(map[uuid.UUID]*Profile),
		byEmail:    make(map[string]uuid.UUID),
		byCustomer: make(map[string]uuid.UUID),
	}
}

func (s *memoryStore) Create(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.UserID]; exists {
		return ErrAlreadyExists
	}
	if _, exists := s.byEmail[p.Email]; exists {
		return ErrAlreadyExists
	}

	stored := *p
	s.byID[p.UserID] = &stored
	s.byEmail[p.Email] = p.UserID
	if p.BillingCustomerID != "" {
		s.byCustomer[p.BillingCustomerID] = p.UserID
	}
	return nil
}

func (s *memoryStore) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID)
}

// get returns a copy so callers never hold a reference into the store.
func (s *memoryStore) get(userID uuid.UUID) (*Profile, error) {
	p, exists := s.byID[userID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memoryStore) Update(ctx context.Context, userID uuid.UUID, changes Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byID[userID]
	if !exists {
		return ErrNotFound
	}

	if changes.Email != nil {
		delete(s.byEmail, p.Email)
		p.Email = *changes.Email
		s.byEmail[p.Email] = userID
	}
	if changes.FirstName != nil {
		p.FirstName = *changes.FirstName
	}
	if changes.RawTier != nil {
		p.RawTier = *changes.RawTier
	}
	if changes.BillingCustomerID != nil {
		delete(s.byCustomer, p.BillingCustomerID)
		p.BillingCustomerID = *changes.BillingCustomerID
		if p.BillingCustomerID != "" {
			s.byCustomer[p.BillingCustomerID] = userID
		}
	}
	if changes.BillingInterval != nil {
		p.BillingInterval = *changes.BillingInterval
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryStore) IncrementCounter(ctx context.Context, userID uuid.UUID, counter Counter, amount int64) (int64, error) {
	if !counter.Valid() {
		return 0, ErrUnknownCounter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byID[userID]
	if !exists {
		return 0, ErrNotFound
	}

	var target *int64
	switch counter {
	case CounterTrialLeads:
		target = &p.Usage.TrialLeads
	case CounterTrialEmails:
		target = &p.Usage.TrialEmails
	case CounterTrialVoiceCalls:
		target = &p.Usage.TrialVoiceCalls
	case CounterTrialAIEmails:
		target = &p.Usage.TrialAIEmails
	case CounterTrialKeywordSearches:
		target = &p.Usage.TrialKeywordSearches
	case CounterTrialCampaigns:
		target = &p.Usage.TrialCampaigns
	case CounterMonthlyLeads:
		target = &p.Usage.MonthlyLeads
	case CounterMonthlyEmails:
		target = &p.Usage.MonthlyEmails
	case CounterMonthlyKeywordSearches:
		target = &p.Usage.MonthlyKeywordSearches
	}

	*target += amount
	p.UpdatedAt = time.Now().UTC()
	return *target, nil
}

func (s *memoryStore) ResetMonthlyUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byID[userID]
	if !exists {
		return false, ErrNotFound
	}

	if !p.Usage.MonthlyResetAt.Equal(observed) {
		return false, nil
	}

	p.Usage.MonthlyLeads = 0
	p.Usage.MonthlyEmails = 0
	p.Usage.MonthlyKeywordSearches = 0
	p.Usage.MonthlyResetAt = next
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memoryStore) ApplyBillingChange(ctx context.Context, userID uuid.UUID, occurredAt time.Time, change BillingChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byID[userID]
	if !exists {
		return false, ErrNotFound
	}

	if !occurredAt.After(p.LastBillingEventAt) {
		return false, nil
	}

	p.RawTier = change.RawTier
	if change.BillingCustomerID != "" && p.BillingCustomerID == "" {
		p.BillingCustomerID = change.BillingCustomerID
		s.byCustomer[p.BillingCustomerID] = userID
	}
	if change.BillingInterval != BillingIntervalNone {
		p.BillingInterval = change.BillingInterval
	}
	p.LastBillingEventAt = occurredAt
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memoryStore) FindByBillingCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, exists := s.byCustomer[customerID]
	if !exists {
		return nil, ErrNotFound
	}
	return s.get(userID)
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, exists := s.byEmail[email]
	if !exists {
		return nil, ErrNotFound
	}
	return s.get(userID)
}
