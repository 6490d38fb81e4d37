package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/availability"
)

// GetRooms handles GET /api/rooms, the base capacity view.
func (h *Handler) GetRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type categoryResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// GetCategories handles GET /api/categories.
func (h *Handler) GetCategories(c *gin.Context) {
	out := make([]categoryResponse, 0)
	for _, cat := range availability.Categories() {
		out = append(out, categoryResponse{Name: cat.String(), Color: cat.Color(), Order: int(cat)})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetOccupancy handles GET /api/occupancy?date=YYYY-MM-DD.
func (h *Handler) GetOccupancy(c *gin.Context) {
	day, ok := h.dateParam(c)
	if !ok {
		return
	}
	occ, err := h.bookings.Occupancy(c.Request.Context(), day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(time.DateOnly), "rooms": occ})
}

// GetHourlyOccupancy handles GET /api/occupancy/hourly?date=YYYY-MM-DD.
func (h *Handler) GetHourlyOccupancy(c *gin.Context) {
	day, ok := h.dateParam(c)
	if !ok {
		return
	}
	occ, err := h.bookings.HourlyOccupancy(c.Request.Context(), day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(time.DateOnly), "slots": occ})
}

// GetAvailability handles GET /api/availability?pool=&start=&end=.
func (h *Handler) GetAvailability(c *gin.Context) {
	start, errStart := time.Parse(time.RFC3339, c.Query("start"))
	end, errEnd := time.Parse(time.RFC3339, c.Query("end"))
	if errStart != nil || errEnd != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "start and end must be RFC3339 timestamps"})
		return
	}

	pool := c.DefaultQuery("pool", "rooms")
	free, err := h.bookings.Available(c.Request.Context(), pool, availability.Interval{Start: start, End: end})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pool": pool, "available": free})
}
