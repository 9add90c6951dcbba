package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports whether the service and its database are reachable.
func Health(c *gin.Context) {
	sqlDB, err := dbFrom(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
