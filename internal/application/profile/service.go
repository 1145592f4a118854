package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/randnum"
)

const defaultStatus = "planned"

type snapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

type Service interface {
	GetProfile(ctx context.Context, email string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error)
	Ensure(ctx context.Context, email string) (*domain.UserProfile, error)
	AddItem(ctx context.Context, email string, item domain.Itinerary) (*domain.Itinerary, error)
	ListItems(ctx context.Context, email string) ([]domain.Itinerary, error)
	DeleteItem(ctx context.Context, email, itemID string) error
}

// service serializes every mutation behind one lock: each call loads the
// whole snapshot, changes it and writes it back, so two writers interleaving
// would drop one of the updates.
type service struct {
	store snapshotStore
	mu    sync.RWMutex
	now   func() time.Time
}

type ServiceDeps struct {
	Store snapshotStore
	Now   func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: deps.Store, now: now}
}

// NormalizeEmail is the identifier form every profile is keyed by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) GetProfile(ctx context.Context, email string) (*domain.UserProfile, error) {
	email = NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := snap[email]; ok {
		return p, nil
	}
	return domain.NewProfile(email), nil
}

func (s *service) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	email = NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p := getOrCreate(snap, email)
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Ensure(ctx context.Context, email string) (*domain.UserProfile, error) {
	email = NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := snap[email]; ok {
		return p, nil
	}
	p := getOrCreate(snap, email)
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	slog.Info("profile created", "email", email)
	return p, nil
}

// AddItem stores item at the front of the list and drops whatever falls past
// domain.MaxItineraries.
func (s *service) AddItem(ctx context.Context, email string, item domain.Itinerary) (*domain.Itinerary, error) {
	email = NormalizeEmail(email)
	if err := s.fillDefaults(&item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p := getOrCreate(snap, email)
	items := make([]domain.Itinerary, 0, len(p.Itineraries)+1)
	items = append(items, item)
	items = append(items, p.Itineraries...)
	if len(items) > domain.MaxItineraries {
		items = items[:domain.MaxItineraries]
	}
	p.Itineraries = items
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *service) ListItems(ctx context.Context, email string) ([]domain.Itinerary, error) {
	email = NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := snap[email]; ok && p.Itineraries != nil {
		return p.Itineraries, nil
	}
	return []domain.Itinerary{}, nil
}

// DeleteItem removes every item with itemID. Nothing is written when nothing
// matched.
func (s *service) DeleteItem(ctx context.Context, email, itemID string) error {
	email = NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	p, ok := snap[email]
	if !ok {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	kept := make([]domain.Itinerary, 0, len(p.Itineraries))
	for _, it := range p.Itineraries {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(p.Itineraries) {
		return fmt.Errorf("itinerary %s not found: %w", itemID, domain.ErrNotFound)
	}
	p.Itineraries = kept
	return s.save(ctx, snap)
}

func (s *service) fillDefaults(item *domain.Itinerary) error {
	if item.ID == "" {
		id, err := randnum.Digits(12)
		if err != nil {
			return err
		}
		item.ID = id
	}
	if item.CreatedAt == "" {
		item.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if item.Status == "" {
		item.Status = defaultStatus
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return nil
}

func (s *service) load(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		slog.Error("load profile snapshot", "err", err)
		return nil, fmt.Errorf("load profiles: %w: %w", domain.ErrPersistence, err)
	}
	if snap == nil {
		snap = domain.Snapshot{}
	}
	return snap, nil
}

func (s *service) save(ctx context.Context, snap domain.Snapshot) error {
	if err := s.store.Save(ctx, snap); err != nil {
		slog.Error("save profile snapshot", "err", err)
		return fmt.Errorf("save profiles: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func getOrCreate(snap domain.Snapshot, email string) *domain.UserProfile {
	p, ok := snap[email]
	if !ok {
		p = domain.NewProfile(email)
		snap[email] = p
	}
	return p
}
