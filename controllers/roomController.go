package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrayerRoom/workflows"
)

// CreateRoom opens a browsing session for the calling device and loads the public prayers.
// POST /rooms
func CreateRoom(c *gin.Context) {
	deviceID := c.MustGet("deviceId").(string)

	room := workflows.NewBrowsing(recordStore(), tallyStore(deviceID), workflows.WithBrowsingLogger(logger))
	sessionID := Sessions.AddRoom(deviceID, room)

	err := room.Load(c.Request.Context())
	respondRoom(c, sessionID, room, err, http.StatusCreated)
}

// GetRoom returns the current card and counters.
// GET /rooms/:session_id
func GetRoom(c *gin.Context) {
	sessionID, room, ok := lookupRoom(c)
	if !ok {
		return
	}
	respondRoom(c, sessionID, room, nil, http.StatusOK)
}

// LoadRoom retries the initial fetch after a failure.
// POST /rooms/:session_id/load
func LoadRoom(c *gin.Context) {
	roomAction(c, func(ctx context.Context, room *workflows.Browsing) error {
		return room.Load(ctx)
	})
}

// NextPrayer moves to the next card.
// POST /rooms/:session_id/next
func NextPrayer(c *gin.Context) {
	roomAction(c, func(ctx context.Context, room *workflows.Browsing) error {
		return room.Next(ctx)
	})
}

// RestartRoom goes back to the first card of the same snapshot.
// POST /rooms/:session_id/restart
func RestartRoom(c *gin.Context) {
	roomAction(c, func(ctx context.Context, room *workflows.Browsing) error {
		return room.Restart(ctx)
	})
}

// TogglePrayed flips the device's prayed mark on the current card.
// POST /rooms/:session_id/toggle
func TogglePrayed(c *gin.Context) {
	roomAction(c, func(ctx context.Context, room *workflows.Browsing) error {
		return room.TogglePrayed(ctx)
	})
}

func roomAction(c *gin.Context, action func(context.Context, *workflows.Browsing) error) {
	sessionID, room, ok := lookupRoom(c)
	if !ok {
		return
	}
	err := action(c.Request.Context(), room)
	respondRoom(c, sessionID, room, err, http.StatusOK)
}

func lookupRoom(c *gin.Context) (string, *workflows.Browsing, bool) {
	deviceID := c.MustGet("deviceId").(string)
	sessionID := c.Param("session_id")

	room, ok := Sessions.Room(sessionID, deviceID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer room session not found"})
		return "", nil, false
	}
	return sessionID, room, true
}

func respondRoom(c *gin.Context, sessionID string, room *workflows.Browsing, err error, okStatus int) {
	view := room.View()

	if err != nil {
		status := workflowErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("prayer room action failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		body := workflowErrorBody(err)
		body["sessionId"] = sessionID
		body["room"] = view
		c.JSON(status, body)
		return
	}

	c.JSON(okStatus, gin.H{"sessionId": sessionID, "room": view})
}
