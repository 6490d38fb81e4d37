package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/model"
)

type createBookingRequest struct {
	Name       string    `json:"name" binding:"required"`
	Kind       string    `json:"kind" binding:"required"`
	ResourceID string    `json:"resource_id" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
}

// ListBookings handles GET /api/bookings?date=YYYY-MM-DD.
func (h *Handler) ListBookings(c *gin.Context) {
	day, ok := h.dateParam(c)
	if !ok {
		return
	}
	views, err := h.bookings.ListOn(c.Request.Context(), day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(time.DateOnly), "bookings": views})
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.bookings.Create(c.Request.Context(), booking.CreateRequest{
		Name:       req.Name,
		Kind:       model.Kind(req.Kind),
		ResourceID: req.ResourceID,
		Start:      req.Start,
		End:        req.End,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DeleteBooking handles DELETE /api/bookings/:id.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
