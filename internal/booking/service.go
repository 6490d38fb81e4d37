package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/metrics"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/parse"
	"room-booking-backend/internal/store"
)

// Notifier is told when a resource becomes free again.
type Notifier interface {
	Dispatch(resourceID string)
}

// Options configures a Service.
type Options struct {
	StorageOffset time.Duration
	Overlap       availability.OverlapRule
	Zoom          []string
}

// Service answers occupancy and availability questions and owns the booking
// lifecycle.
type Service struct {
	store      store.Store
	notifier   Notifier
	normalizer *availability.Normalizer
	overlap    availability.OverlapRule
	zoom       []string
	now        func() time.Time
}

// NewService creates a booking service. notifier may be nil.
func NewService(st store.Store, notifier Notifier, opts Options) *Service {
	return &Service{
		store:      st,
		notifier:   notifier,
		normalizer: availability.NewNormalizer(opts.StorageOffset),
		overlap:    opts.Overlap,
		zoom:       opts.Zoom,
		now:        time.Now,
	}
}

// Location returns the display zone.
func (s *Service) Location() *time.Location {
	return s.normalizer.Location()
}

// Normalizer returns the timestamp normalizer used by the service.
func (s *Service) Normalizer() *availability.Normalizer {
	return s.normalizer
}

// Snapshot reads all bookings and rooms once and normalizes the bookings.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.store.ListBookings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	records, dropped := s.normalize(rows)
	return Snapshot{records: records, Rooms: rooms, Dropped: dropped}, nil
}

func (s *Service) normalize(rows []model.Booking) ([]record, int) {
	typed := make([]availability.Booking, len(rows))
	byID := make(map[string]model.Booking, len(rows))
	for i, row := range rows {
		typed[i] = availability.Booking{
			ID:         row.ID,
			Name:       row.Name,
			ResourceID: row.ResourceID,
			Start:      row.StartsAt,
			End:        row.EndsAt,
		}
		byID[row.ID] = row
	}

	good, dropped := s.normalizer.NormalizeAll(typed)
	if dropped > 0 {
		metrics.DroppedRows.Add(float64(dropped))
		log.Printf("Warning: skipped %d bookings with malformed timestamps", dropped)
	}

	out := make([]record, len(good))
	for i, b := range good {
		row := byID[b.ID]
		out[i] = record{Booking: b, Kind: row.Kind, Room: row.Room, Place: row.Place}
	}
	return out, dropped
}

// Occupancy classifies every room for the calendar date of day.
func (s *Service) Occupancy(ctx context.Context, day time.Time) ([]availability.Occupancy, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Classify(snap.roomBookings(), snap.resources(), day, s.Location()), nil
}

// HourlyOccupancy classifies every room for every hour of day.
func (s *Service) HourlyOccupancy(ctx context.Context, day time.Time) ([]availability.HourlyOccupancy, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.ClassifyHourly(snap.roomBookings(), snap.resources(), day, s.Location()), nil
}

// Pool returns the resource ids of the named pool.
func (s *Service) Pool(ctx context.Context, pool string) ([]string, error) {
	switch pool {
	case PoolRooms, PoolWorkplaces:
		rooms, err := s.store.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		return poolFromRooms(pool, rooms), nil
	case PoolZoom:
		return slices.Clone(s.zoom), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPool, pool)
	}
}

func poolFromRooms(pool string, rooms []model.RoomCoord) []string {
	var ids []string
	for _, r := range rooms {
		if pool == PoolRooms {
			ids = append(ids, r.RoomNo)
			continue
		}
		ids = append(ids, parse.WorkplaceKeys(r.RoomNo, r.Capacity)...)
	}
	return ids
}

// Unknown returns the ids among resourceIDs that belong to none of the
// pools.
func (s *Service) Unknown(ctx context.Context, resourceIDs []string) ([]string, error) {
	known := make(map[string]struct{})
	for _, pool := range []string{PoolRooms, PoolWorkplaces, PoolZoom} {
		ids, err := s.Pool(ctx, pool)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			known[id] = struct{}{}
		}
	}
	var unknown []string
	for _, id := range resourceIDs {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

// Available lists the resources of pool that are free for the whole window.
func (s *Service) Available(ctx context.Context, pool string, window availability.Interval) ([]string, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRequest)
	}
	ids, err := s.Pool(ctx, pool)
	if err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.FindAvailable(snap.Bookings(), ids, s.toDisplay(window), s.overlap), nil
}

func (s *Service) toDisplay(iv availability.Interval) availability.Interval {
	loc := s.Location()
	return availability.Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

func poolForKind(k model.Kind) string {
	switch k {
	case model.KindWorkplace:
		return PoolWorkplaces
	case model.KindZoom:
		return PoolZoom
	default:
		return PoolRooms
	}
}

func (s *Service) validate(req *CreateRequest) (room, place string, err error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ResourceID = strings.TrimSpace(req.ResourceID)

	if req.Name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if !req.Kind.Valid() {
		return "", "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
	if req.ResourceID == "" {
		return "", "", fmt.Errorf("%w: resource_id is required", ErrInvalidRequest)
	}
	if req.Start.IsZero() || !req.End.After(req.Start) {
		return "", "", fmt.Errorf("%w: end must be after start", ErrInvalidRequest)
	}

	if req.Kind == model.KindWorkplace {
		key, err := parse.ParseResourceKey(req.ResourceID)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return key.Room, key.Place, nil
	}
	return req.ResourceID, "", nil
}

// Create books a resource. The conflict check and the insert are not
// atomic: two concurrent requests for the same slot can both succeed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (View, error) {
	room, place, err := s.validate(&req)
	if err != nil {
		return View{}, err
	}

	ids, err := s.Pool(ctx, poolForKind(req.Kind))
	if err != nil {
		return View{}, err
	}
	if !slices.Contains(ids, req.ResourceID) {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownResource, req.ResourceID)
	}

	window := s.toDisplay(availability.Interval{Start: req.Start, End: req.End})
	// Widened so bookings that only touch the window edges still reach the
	// overlap rule.
	rows, err := s.store.ListBookingsOn(ctx, window.Start.Add(-time.Minute), window.End.Add(time.Minute))
	if err != nil {
		return View{}, err
	}
	records, _ := s.normalize(rows)
	existing := make([]availability.Booking, len(records))
	for i, r := range records {
		existing[i] = r.Booking
	}
	if !availability.IsAvailable(existing, req.ResourceID, window, s.overlap) {
		metrics.BookingConflicts.Inc()
		return View{}, ErrTimeConflict
	}

	row := &model.Booking{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Kind:       req.Kind,
		ResourceID: req.ResourceID,
		Room:       room,
		Place:      place,
		StartsAt:   req.Start.UTC(),
		EndsAt:     req.End.UTC(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateBooking(ctx, row); err != nil {
		return View{}, err
	}
	metrics.BookingsCreated.Inc()

	return record{
		Booking: availability.Booking{ID: row.ID, Name: row.Name, ResourceID: row.ResourceID, Start: window.Start, End: window.End},
		Kind:    row.Kind,
		Room:    row.Room,
		Place:   row.Place,
	}.view(), nil
}

// Cancel deletes a booking and tells watchers that its resource is free.
func (s *Service) Cancel(ctx context.Context, id string) error {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrBookingNotFound, err)
		}
		return err
	}

	if _, err := s.store.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, store.ErrWriteFailed) {
			return fmt.Errorf("%w: %w", ErrBookingNotFound, err)
		}
		return err
	}
	metrics.BookingsCancelled.Inc()

	if s.notifier != nil {
		s.notifier.Dispatch(b.ResourceID)
	}
	return nil
}

// ListOn returns the bookings starting on the calendar date of day, the
// same rows Occupancy counts for that day. A booking running past midnight
// is listed on its first day only.
func (s *Service) ListOn(ctx context.Context, day time.Time) ([]View, error) {
	loc := s.Location()
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	rows, err := s.store.ListBookingsOn(ctx, from, to)
	if err != nil {
		return nil, err
	}
	records, _ := s.normalize(rows)
	views := make([]View, 0, len(records))
	for _, r := range records {
		if r.Start.Before(from) {
			continue
		}
		views = append(views, r.view())
	}
	return views, nil
}

// SeedRooms writes the statically configured rooms into the capacity
// tables.
func (s *Service) SeedRooms(ctx context.Context, rooms []model.RoomCoord) error {
	for floor, part := range model.GroupByFloor(rooms) {
		if err := s.store.UpsertRooms(ctx, floor, part); err != nil {
			return fmt.Errorf("failed to seed rooms on %s: %w", floor, err)
		}
	}
	return nil
}
