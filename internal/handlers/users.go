package handlers

import (
	"errors"
	"net/http"

	"genzfits/internal/database"
	"genzfits/internal/logger"
	"genzfits/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ListUsers(c *gin.Context) {
	users, err := store.ListUsers(c.Request.Context(), database.DB)
	if err != nil {
		logger.FromGin(c).Error("Error loading users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	user, err := store.GetUser(c.Request.Context(), database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondStoreError(c, "loading user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type deleteUserSummary struct {
	UserID         int64 `json:"user_id"`
	Deleted        bool  `json:"deleted"`
	SessionsClosed int   `json:"sessions_closed"`
}

// DeleteUser removes an account and closes its open sessions. Unknown ids
// succeed without effect.
func DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	deleted, err := store.DeleteUser(c.Request.Context(), database.DB, id)
	if err != nil {
		respondStoreError(c, "deleting user", err)
		return
	}

	summary := deleteUserSummary{UserID: id, Deleted: deleted}
	if sessionStore := sessions(); sessionStore != nil {
		summary.SessionsClosed = sessionStore.InvalidateUser(id)
	}

	logger.FromGin(c).Info("User deleted",
		zap.Int64("user_id", id),
		zap.Bool("existed", deleted),
		zap.Int("sessions_closed", summary.SessionsClosed))

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"summary": summary,
	})
}
