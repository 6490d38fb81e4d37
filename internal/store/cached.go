package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"room-booking-backend/internal/cache"
	"room-booking-backend/internal/metrics"
	"room-booking-backend/internal/model"
)

const (
	keyBookings = "bookings"
	keyRooms    = "rooms"
)

// cachedStore memoizes the two full-table reads. Writes going through it
// drop the memo so the next read sees them; writes from other processes
// become visible once the ttl has passed.
//
// Every key carries a generation that forget bumps. A read only stores its
// result if no write invalidated the key while the read was in flight, so a
// slow read can never put rows back that a write has already removed.
type cachedStore struct {
	Store
	backend cache.Backend
	ttl     time.Duration
	now     func() time.Time

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCachedStore wraps inner with a time-bounded memo of ListBookings and
// ListRooms.
func NewCachedStore(inner Store, backend cache.Backend, ttl time.Duration) Store {
	return &cachedStore{
		Store:       inner,
		backend:     backend,
		ttl:         ttl,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

func (s *cachedStore) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

func (s *cachedStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var rows []model.Booking
	if s.lookup(ctx, keyBookings, &rows) {
		return rows, nil
	}
	gen := s.generation(keyBookings)
	rows, err := s.Store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, keyBookings, gen, rows)
	return rows, nil
}

func (s *cachedStore) ListRooms(ctx context.Context) ([]model.RoomCoord, error) {
	var rooms []model.RoomCoord
	if s.lookup(ctx, keyRooms, &rooms) {
		return rooms, nil
	}
	gen := s.generation(keyRooms)
	rooms, err := s.Store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, keyRooms, gen, rooms)
	return rooms, nil
}

func (s *cachedStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	err := s.Store.CreateBooking(ctx, b)
	s.forget(ctx, keyBookings)
	return err
}

func (s *cachedStore) DeleteBooking(ctx context.Context, id string) (int64, error) {
	n, err := s.Store.DeleteBooking(ctx, id)
	s.forget(ctx, keyBookings)
	return n, err
}

func (s *cachedStore) ImportBookings(ctx context.Context, rows []model.Booking) (int64, error) {
	n, err := s.Store.ImportBookings(ctx, rows)
	if n > 0 {
		s.forget(ctx, keyBookings)
	}
	return n, err
}

func (s *cachedStore) UpsertRooms(ctx context.Context, floor string, rooms []model.RoomCoord) error {
	err := s.Store.UpsertRooms(ctx, floor, rooms)
	s.forget(ctx, keyRooms)
	return err
}

func (s *cachedStore) lookup(ctx context.Context, key string, v any) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("Warning: cache read %s failed: %v", key, err)
		}
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return false
	}
	ok, err := cache.DecodeEntry(data, v, s.ttl, s.now())
	if err != nil {
		log.Printf("Warning: dropping undecodable cache entry %s: %v", key, err)
	}
	if !ok || err != nil {
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(key).Inc()
	return true
}

// remember stores v unless key was invalidated after gen was read.
func (s *cachedStore) remember(ctx context.Context, key string, gen uint64, v any) {
	data, err := cache.NewEntry(v, s.now())
	if err != nil {
		log.Printf("Warning: could not encode cache entry %s: %v", key, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[key] != gen {
		return
	}
	if err := s.backend.Set(ctx, key, data, s.ttl); err != nil {
		log.Printf("Warning: cache write %s failed: %v", key, err)
	}
}

func (s *cachedStore) forget(ctx context.Context, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.generations[k]++
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		log.Printf("Warning: cache invalidation failed: %v", err)
	}
}
