package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-booking-backend/config"
	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/db"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	store  store.Store
	svc    *booking.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	st := store.NewGormStore(gormDB, false)
	svc := booking.NewService(st, nil, booking.Options{
		StorageOffset: 2 * time.Hour,
		Overlap:       availability.OverlapInclusive,
		Zoom:          []string{"zoom_1"},
	})
	require.NoError(t, svc.SeedRooms(context.Background(), []model.RoomCoord{
		{RoomNo: "115", Capacity: 1, Floor: model.FloorOG},
		{RoomNo: "113", Capacity: 2, Floor: model.FloorUG},
	}))

	handler := NewHandler(svc, st, nil)
	router := NewRouter(handler, config.ServerConfig{RateLimitPerSec: 1000, CacheTTLSeconds: 5})
	return &fixture{router: router, store: st, svc: svc}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func bookingBody(resourceID, kind string, start, end time.Time) gin.H {
	return gin.H{
		"name":        "Ada",
		"kind":        kind,
		"resource_id": resourceID,
		"start":       start.Format(time.RFC3339),
		"end":         end.Format(time.RFC3339),
	}
}

var (
	nineUTC   = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	elevenUTC = time.Date(2024, 5, 6, 11, 0, 0, 0, time.UTC)
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/bookings", bookingBody("115", "room", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view booking.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "115", view.ResourceID)
	assert.Equal(t, "115", view.Room)
	assert.Equal(t, nineUTC, view.Start.UTC())

	t.Run("conflict", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/bookings", bookingBody("115", "room", nineUTC.Add(time.Hour), elevenUTC.Add(time.Hour)))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown resource", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/bookings", bookingBody("999", "room", nineUTC, elevenUTC))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/bookings", bookingBody("113", "room", elevenUTC, nineUTC))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/bookings", gin.H{"name": "Ada"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/bookings", bookingBody("113_1", "workplace", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view booking.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))

	w = f.do(http.MethodDelete, "/api/bookings/"+view.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, "/api/bookings/"+view.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodDelete, "/api/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOccupancy(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/bookings", bookingBody("115", "room", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/occupancy?date=2024-05-06", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date  string `json:"date"`
		Rooms []struct {
			ResourceID string `json:"resource_id"`
			Count      int    `json:"count"`
			Category   string `json:"category"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-05-06", resp.Date)

	counts := make(map[string]int)
	for _, r := range resp.Rooms {
		counts[r.ResourceID] = r.Count
	}
	assert.Equal(t, map[string]int{"115": 1, "113": 0}, counts)

	w = f.do(http.MethodGet, "/api/occupancy?date=06.05.2024x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHourlyOccupancy(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/bookings", bookingBody("115", "room", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/occupancy/hourly?date=2024-05-06", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Slots []struct {
			ResourceID string    `json:"resource_id"`
			Count      int       `json:"count"`
			Hour       time.Time `json:"hour"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Slots, 2*24)

	busy := 0
	for _, s := range resp.Slots {
		if s.ResourceID == "115" && s.Count > 0 {
			busy++
		}
	}
	assert.Equal(t, 2, busy)
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/bookings", bookingBody("113_1", "workplace", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	query := "&start=" + nineUTC.Format(time.RFC3339) + "&end=" + elevenUTC.Format(time.RFC3339)

	w = f.do(http.MethodGet, "/api/availability?pool=workplaces"+query, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Available []string `json:"available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"115_1", "113_2"}, resp.Available)

	w = f.do(http.MethodGet, "/api/availability?pool=desks"+query, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/availability?pool=rooms&start=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBookingsFlushesCache(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/bookings?date=2024-05-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bookings":[]`)

	w = f.do(http.MethodPost, "/api/bookings", bookingBody("zoom_1", "zoom", nineUTC, elevenUTC))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/bookings?date=2024-05-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), `"resource_id":"zoom_1"`)
}

func TestGetRoomsAndCategories(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"roomno":"115"`)
	assert.Contains(t, w.Body.String(), `"roomno":"113"`)

	w = f.do(http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Categories []categoryResponse `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Categories)
	for _, c := range resp.Categories {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Color)
	}
}

func TestSubscriptions(t *testing.T) {
	f := newFixture(t)
	endpoint := "https://push.example.com/send/abc"

	w := f.do(http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint":             endpoint,
		"p256dh":               "key",
		"auth":                 "secret",
		"subscribed_resources": []string{"115", " 113_2", "115", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint":             endpoint,
		"p256dh":               "key",
		"auth":                 "secret",
		"subscribed_resources": []string{"115", "999_9"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "999_9")

	w = f.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SubscribedResources []string `json:"subscribed_resources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"115", "113_2"}, resp.SubscribedResources)

	w = f.do(http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCleanResourceIDs(t *testing.T) {
	assert.Equal(t, []string{"115", "113_2"}, cleanResourceIDs([]string{" 115", "", "113_2", "115"}))
	assert.Empty(t, cleanResourceIDs(nil))
}

func TestGetVAPIDPublicKey(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
