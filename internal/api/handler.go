package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	bookings *booking.Service
	store    store.Store
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *booking.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		bookings: svc,
		store:    s,
		webpush:  webpushOptions,
	}
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, booking.ErrUnknownPool),
		errors.Is(err, booking.ErrUnknownResource):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrTimeConflict):
		status = http.StatusConflict
	case errors.Is(err, booking.ErrBookingNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		if errors.Is(err, store.ErrWriteFailed) {
			c.AbortWithStatusJSON(status, gin.H{"error": "write failed"})
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// dateParam reads the "date" query parameter as a calendar date in the
// display zone. It defaults to today.
func (h *Handler) dateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		now := time.Now().In(h.bookings.Location())
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	}
	day, err := h.bookings.Normalizer().ParseDate(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return day, true
}
