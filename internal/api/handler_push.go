package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/model"
)

type subscriptionRequest struct {
	Endpoint            string   `json:"endpoint" binding:"required,url"`
	P256DH              string   `json:"p256dh" binding:"required"`
	Auth                string   `json:"auth" binding:"required"`
	SubscribedResources []string `json:"subscribed_resources"`
}

type endpointRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// GetVAPIDPublicKey handles GET /api/vapid_public_key. Browsers need the
// key before they can subscribe.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

// PutSubscription handles PUT /api/subscriptions. The watched resources of
// an existing endpoint are replaced.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resources := cleanResourceIDs(req.SubscribedResources)
	unknown, err := h.bookings.Unknown(c.Request.Context(), resources)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(unknown) > 0 {
		writeError(c, fmt.Errorf("%w: %s", booking.ErrUnknownResource, strings.Join(unknown, ", ")))
		return
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.PutSubscription(c.Request.Context(), sub, resources); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscribed_resources": resources})
}

// GetSubscription handles GET /api/subscriptions?endpoint=.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err != nil {
		writeError(c, err)
		return
	}

	ids := make([]string, 0, len(sub.Resources))
	for _, r := range sub.Resources {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	c.JSON(http.StatusOK, gin.H{"subscribed_resources": ids})
}

// DeleteSubscription handles DELETE /api/subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cleanResourceIDs trims ids and drops blanks and duplicates, keeping the
// first occurrence.
func cleanResourceIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
