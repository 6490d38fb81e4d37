package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-booking-backend/config"
	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/db"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/store"
)

const roomsCSV = `roomno,capacity,x,y,floor
113,3,1,2,OG
115,1,2,2,OG
bro"ken,4,1,1,OG
117,many,3,2,OG
012,6,1,1,UG
119,2
121,4,5,5,roof
`

const signupsCSV = `name,roomno,date
Ana,113,2024-05-06
Bo,113,2024-05-06
Cy,115,06.05.2024
,117,2024-05-06
Di,117,2024-05-07
`

func newSheetServer(t *testing.T, sheets map[string]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := sheets[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestStore(t *testing.T) store.Store {
	gormDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	return store.NewGormStore(gormDB, false)
}

func TestExportURL(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=42",
		ExportURL("https://docs.google.com/spreadsheets/d/abc/edit#gid=42"))
	assert.Equal(t, "https://example.org/rooms.csv", ExportURL("https://example.org/rooms.csv"))
}

func TestImportOnce(t *testing.T) {
	server := newSheetServer(t, map[string]string{
		"/rooms/export":   roomsCSV,
		"/signups/export": signupsCSV,
	})
	st := newTestStore(t)
	svc := NewService(config.ImporterConfig{
		Enabled:       true,
		RoomCoordsURL: server.URL + "/rooms/edit#gid=0",
		BookingsURL:   server.URL + "/signups/edit#gid=1",
		Timeout:       5 * time.Second,
	}, st, availability.NewNormalizer(2*time.Hour))

	ctx := context.Background()
	require.NoError(t, svc.ImportOnce(ctx))

	rooms, err := st.ListRooms(ctx)
	require.NoError(t, err)
	byNo := make(map[string]model.RoomCoord)
	for _, r := range rooms {
		byNo[r.RoomNo] = r
	}
	assert.Len(t, byNo, 3, "malformed lines are skipped")
	assert.Equal(t, 3, byNo["113"].Capacity)
	assert.Equal(t, model.FloorUG, byNo["012"].Floor)

	bookings, err := st.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	for _, b := range bookings {
		assert.Equal(t, model.KindRoom, b.Kind)
		assert.Equal(t, 24*time.Hour, b.EndsAt.Sub(b.StartsAt))
	}
	// 2024-05-06 00:00 in the office is 22:00 UTC the day before.
	assert.True(t, bookings[0].StartsAt.Equal(time.Date(2024, 5, 5, 22, 0, 0, 0, time.UTC)))

	// Re-importing the same sheet adds nothing.
	require.NoError(t, svc.ImportOnce(ctx))
	bookings, err = st.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 3)
}

const slotSignupsCSV = `name,roomno,date,start,end
Eve,113,2024-05-06,09:00,10:30
Fay,115,,2024-05-06T08:00:00Z,2024-05-06 09:00
Gus,113,2024-05-06,11:00,10:00
Hal,117,2024-05-06,,
Ivy,117,2024-05-06,noon,13:00
`

func TestImportOnceTimeSlots(t *testing.T) {
	server := newSheetServer(t, map[string]string{"/signups/export": slotSignupsCSV})
	st := newTestStore(t)
	svc := NewService(config.ImporterConfig{
		BookingsURL: server.URL + "/signups/edit#gid=1",
		Timeout:     5 * time.Second,
	}, st, availability.NewNormalizer(2*time.Hour))

	ctx := context.Background()
	require.NoError(t, svc.ImportOnce(ctx))

	bookings, err := st.ListBookings(ctx)
	require.NoError(t, err)
	byName := make(map[string]model.Booking)
	for _, b := range bookings {
		byName[b.Name] = b
	}
	require.Len(t, byName, 3, "inverted and unparsable slots are skipped")

	testCases := []struct {
		name  string
		room  string
		start time.Time
		end   time.Time
	}{
		{name: "Eve", room: "113", start: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), end: time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)},
		{name: "Fay", room: "115", start: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC), end: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)},
		{name: "Hal", room: "117", start: time.Date(2024, 5, 5, 22, 0, 0, 0, time.UTC), end: time.Date(2024, 5, 6, 22, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := byName[tc.name]
			require.True(t, ok)
			assert.Equal(t, tc.room, b.ResourceID)
			assert.Equal(t, tc.room, b.Room)
			assert.Equal(t, model.KindRoom, b.Kind)
			assert.True(t, b.StartsAt.Equal(tc.start), b.StartsAt)
			assert.True(t, b.EndsAt.Equal(tc.end), b.EndsAt)
		})
	}

	require.NoError(t, svc.ImportOnce(ctx))
	bookings, err = st.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 3, "slot ids are stable across imports")
}

func TestOnDate(t *testing.T) {
	assert.Equal(t, "2024-05-06 09:00", onDate("2024-05-06", "09:00"))
	assert.Equal(t, "2024-05-06T08:00:00Z", onDate("2024-05-06", "2024-05-06T08:00:00Z"))
	assert.Equal(t, "9:30", onDate("", "9:30"))
}

func TestImportOnceFailsOnUpstreamError(t *testing.T) {
	server := newSheetServer(t, map[string]string{})
	svc := NewService(config.ImporterConfig{
		RoomCoordsURL: server.URL + "/missing/edit#gid=0",
	}, newTestStore(t), availability.NewNormalizer(0))

	err := svc.ImportOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
}

func TestImportOnceRequiresColumns(t *testing.T) {
	server := newSheetServer(t, map[string]string{"/rooms/export": "room,places\n113,3\n"})
	svc := NewService(config.ImporterConfig{
		RoomCoordsURL: server.URL + "/rooms/edit#gid=0",
	}, newTestStore(t), availability.NewNormalizer(0))

	err := svc.ImportOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "roomno"`)
}

func TestRunDisabledReturns(t *testing.T) {
	svc := NewService(config.ImporterConfig{Enabled: false}, nil, availability.NewNormalizer(0))
	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled importer did not return")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	server := newSheetServer(t, map[string]string{"/rooms/export": roomsCSV})
	st := newTestStore(t)
	svc := NewService(config.ImporterConfig{
		Enabled:       true,
		Interval:      time.Hour,
		RoomCoordsURL: server.URL + "/rooms/edit#gid=0",
	}, st, availability.NewNormalizer(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		rooms, err := st.ListRooms(context.Background())
		return err == nil && len(rooms) == 3
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("importer did not stop")
	}
}

func TestSignupID(t *testing.T) {
	a := SignupID("Ana", "113", "2024-05-06")
	assert.Equal(t, a, SignupID("Ana", "113", "2024-05-06"))
	assert.NotEqual(t, a, SignupID("Ana", "115", "2024-05-06"))
	assert.Len(t, a, 36)
}

func TestReadTableSkipsShortRows(t *testing.T) {
	tbl, err := readTable(strings.NewReader("\ufeffRoomNo,Capacity\n113,3\n115\n"), "roomno")
	require.NoError(t, err)
	assert.Len(t, tbl.rows, 1)
	assert.Equal(t, 1, tbl.skipped)
	assert.Equal(t, "113", tbl.get(tbl.rows[0], "roomno"))
}
