package handlers

import (
	"net/http"
	"time"

	"genzfits/internal/database"
	"genzfits/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "GenZFits API",
		"version": serviceVersion,
		"status":  "operational",
	})
}

// HealthCheck reports liveness. With ?check=db it also pings PostgreSQL.
func HealthCheck(c *gin.Context) {
	response := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	if c.Query("check") == "db" {
		if err := database.DB.PingContext(c.Request.Context()); err != nil {
			logger.FromGin(c).Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response["db_status"] = "ok"
	}

	c.JSON(http.StatusOK, response)
}
