package memory

import (
	"context"
	"sync"
	"time"

	"github.com/travel-planner-api/internal/domain"
)

// CodeStore keeps verification codes in process memory. It is safe for
// concurrent use; Consume compares and deletes under one lock so a code
// can be redeemed at most once.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]domain.VerificationCode
	now   func() time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		codes: make(map[string]domain.VerificationCode),
		now:   time.Now,
	}
}

// Put stores v, replacing any unconsumed code for the same identifier.
func (s *CodeStore) Put(_ context.Context, v *domain.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	s.codes[v.Identifier] = *v
	return nil
}

// Consume runs check against the stored code for identifier. The entry is
// deleted only when check returns nil; a failing check leaves it in place.
func (s *CodeStore) Consume(_ context.Context, identifier string, check func(*domain.VerificationCode) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.codes[identifier]
	if !ok {
		return domain.ErrCodeNotFound
	}
	if v.Expired(s.now()) {
		delete(s.codes, identifier)
		return domain.ErrCodeNotFound
	}
	if err := check(&v); err != nil {
		return err
	}
	delete(s.codes, identifier)
	return nil
}

// Len returns the number of live codes.
func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	return len(s.codes)
}

func (s *CodeStore) purgeExpiredLocked() {
	now := s.now()
	for k, v := range s.codes {
		if v.Expired(now) {
			delete(s.codes, k)
		}
	}
}
