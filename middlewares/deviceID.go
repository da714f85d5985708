package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DeviceHeader       = "X-Device-ID"
	DeviceCookie       = "device_id"
	deviceCookieMaxAge = 60 * 60 * 24 * 365 * 5
)

// DeviceID resolves the viewing device from the X-Device-ID header or the
// device_id cookie, issuing a fresh id when neither holds a valid UUID.
// The id is stored in the context under "deviceId".
func DeviceID(c *gin.Context) {
	deviceID := c.GetHeader(DeviceHeader)
	if deviceID == "" {
		if cookie, err := c.Cookie(DeviceCookie); err == nil {
			deviceID = cookie
		}
	}

	if _, err := uuid.Parse(deviceID); err != nil {
		deviceID = uuid.NewString()
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DeviceCookie, deviceID, deviceCookieMaxAge, "/", "", isHTTPS(c), true)
	c.Header(DeviceHeader, deviceID)
	c.Set("deviceId", deviceID)

	c.Next()
}

func isHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
