package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"room-booking-backend/config"
	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/metrics"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/store"
)

// signupNamespace seeds the deterministic ids of imported sign-ups.
var signupNamespace = uuid.MustParse("6f1c9c2e-3d0b-4a53-9a43-2b5f0f3e8d11")

// Service periodically pulls the capacity sheet and the legacy sign-up sheet
// into the database.
type Service struct {
	cfg        config.ImporterConfig
	store      store.Store
	normalizer *availability.Normalizer
	client     *http.Client
}

// NewService creates and initializes a new importer service.
func NewService(cfg config.ImporterConfig, st store.Store, normalizer *availability.Normalizer) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Importer will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		cfg:        cfg,
		store:      st,
		normalizer: normalizer,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Run starts the import process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Importer is disabled. Not starting.")
		return
	}
	log.Println("Starting importer service...")

	s.runOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Importer service shutting down.")
			return
		case <-timer.C:
			s.runOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if err := s.ImportOnce(ctx); err != nil {
		log.Printf("Import cycle failed: %v", err)
	}
}

// ImportOnce performs a single import round. A failing sheet aborts the
// round before anything of that sheet is written.
func (s *Service) ImportOnce(ctx context.Context) error {
	log.Println("Executing import cycle...")

	if s.cfg.RoomCoordsURL != "" {
		if err := s.importRooms(ctx); err != nil {
			return fmt.Errorf("room coordinates: %w", err)
		}
	}
	if s.cfg.BookingsURL != "" {
		if err := s.importSignups(ctx); err != nil {
			return fmt.Errorf("sign-ups: %w", err)
		}
	}

	log.Println("Import cycle finished.")
	return nil
}

func (s *Service) importRooms(ctx context.Context) error {
	body, err := s.fetch(ctx, s.cfg.RoomCoordsURL)
	if err != nil {
		return err
	}
	defer body.Close()

	t, err := readTable(body, "roomno", "capacity")
	if err != nil {
		return err
	}

	var rooms []model.RoomCoord
	skipped := t.skipped
	for _, row := range t.rows {
		room, err := parseRoom(t, row)
		if err != nil {
			skipped++
			log.Printf("Skipping room row %v: %v", row, err)
			continue
		}
		rooms = append(rooms, room)
	}

	for floor, part := range model.GroupByFloor(rooms) {
		if err := s.store.UpsertRooms(ctx, floor, part); err != nil {
			return err
		}
		metrics.ImportedRows.WithLabelValues("room_coords_" + strings.ToLower(floor)).Add(float64(len(part)))
	}
	log.Printf("Imported %d rooms, skipped %d rows", len(rooms), skipped)
	return nil
}

func parseRoom(t *table, row []string) (model.RoomCoord, error) {
	roomNo := t.get(row, "roomno")
	if roomNo == "" {
		return model.RoomCoord{}, fmt.Errorf("empty roomno")
	}
	capacity, err := strconv.Atoi(t.get(row, "capacity"))
	if err != nil || capacity < 0 {
		return model.RoomCoord{}, fmt.Errorf("invalid capacity %q", t.get(row, "capacity"))
	}
	x, err := t.float(row, "x")
	if err != nil {
		return model.RoomCoord{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := t.float(row, "y")
	if err != nil {
		return model.RoomCoord{}, fmt.Errorf("invalid y: %w", err)
	}

	floor := strings.ToUpper(t.get(row, "floor"))
	switch floor {
	case "", model.FloorOG, model.FloorUG:
	default:
		return model.RoomCoord{}, fmt.Errorf("unknown floor %q", floor)
	}
	return model.RoomCoord{RoomNo: roomNo, Capacity: capacity, X: x, Y: y, Floor: floor}, nil
}

func (s *Service) importSignups(ctx context.Context) error {
	body, err := s.fetch(ctx, s.cfg.BookingsURL)
	if err != nil {
		return err
	}
	defer body.Close()

	t, err := readTable(body, "name", "roomno", "date")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var rows []model.Booking
	skipped := t.skipped
	for _, row := range t.rows {
		b, err := s.signup(t, row)
		if err != nil {
			skipped++
			continue
		}
		b.CreatedAt = now
		rows = append(rows, b)
	}

	n, err := s.store.ImportBookings(ctx, rows)
	if err != nil {
		return err
	}
	metrics.ImportedRows.WithLabelValues("bookings").Add(float64(n))
	log.Printf("Imported %d new sign-ups, skipped %d rows", n, skipped)
	return nil
}

// signup turns a "name,roomno,date" row into a day-long room booking. Rows
// that also fill the optional "start" and "end" columns become a booking of
// that slot instead. Those columns come from the legacy booking table and
// hold storage-clock timestamps; a bare clock time ("09:00") is taken on the
// row's date.
func (s *Service) signup(t *table, row []string) (model.Booking, error) {
	name, room, date := t.get(row, "name"), t.get(row, "roomno"), t.get(row, "date")
	if name == "" || room == "" {
		return model.Booking{}, fmt.Errorf("incomplete row")
	}

	start, end := t.get(row, "start"), t.get(row, "end")
	if start != "" || end != "" {
		b, err := s.normalizer.ParseRow(availability.RawBooking{
			ID:         SignupID(name, room, date+" "+start+"/"+end),
			Name:       name,
			ResourceID: room,
			Start:      onDate(date, start),
			End:        onDate(date, end),
		})
		if err != nil {
			return model.Booking{}, err
		}
		return roomBooking(b), nil
	}

	day, err := s.normalizer.ParseDate(date)
	if err != nil {
		return model.Booking{}, err
	}
	return roomBooking(availability.Booking{
		ID:         SignupID(name, room, date),
		Name:       name,
		ResourceID: room,
		Start:      day,
		End:        day.AddDate(0, 0, 1),
	}), nil
}

// onDate prefixes a bare clock time with date.
func onDate(date, clock string) string {
	if len(clock) <= len("15:04") && strings.Contains(clock, ":") && date != "" {
		return date + " " + clock
	}
	return clock
}

func roomBooking(b availability.Booking) model.Booking {
	return model.Booking{
		ID:         b.ID,
		Name:       b.Name,
		Kind:       model.KindRoom,
		ResourceID: b.ResourceID,
		Room:       b.ResourceID,
		StartsAt:   b.Start.UTC(),
		EndsAt:     b.End.UTC(),
	}
}

// SignupID derives a stable booking id so that re-imports do not duplicate
// rows.
func SignupID(name, room, date string) string {
	return uuid.NewSHA1(signupNamespace, []byte(name+"\x00"+room+"\x00"+date)).String()
}

// fetch downloads a sheet as CSV. The caller closes the body.
func (s *Service) fetch(ctx context.Context, sheetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ExportURL(sheetURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
