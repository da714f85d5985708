package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrayerRoom/workflows"
)

// FormatPhone reshapes a partially typed phone number.
// GET /phone/format?value=
func FormatPhone(c *gin.Context) {
	value := c.Query("value")
	c.JSON(http.StatusOK, gin.H{"value": value, "formatted": workflows.FormatPhone(value)})
}
