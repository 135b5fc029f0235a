package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"genzfits/internal/logger"
	"genzfits/internal/session"
	"genzfits/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMaxImageUploadBytes int64 = 5 * 1024 * 1024 // 5 MB
	defaultMaxParallelUploads        = 4
	defaultUploadsBasePath           = "./uploads"
)

// Options carries the runtime dependencies shared by the handlers.
type Options struct {
	Sessions            *session.Store
	UploadsBasePath     string
	MaxImageUploadBytes int64
	MaxParallelUploads  int
	CookieSecure        bool
	MonitoringAPIKey    string
}

var (
	optionsMu sync.RWMutex
	options   Options
)

// Configure installs the handler dependencies. Call it before serving.
func Configure(opts Options) {
	if opts.UploadsBasePath == "" {
		opts.UploadsBasePath = defaultUploadsBasePath
	}
	if opts.MaxImageUploadBytes <= 0 {
		opts.MaxImageUploadBytes = defaultMaxImageUploadBytes
	}
	if opts.MaxParallelUploads <= 0 {
		opts.MaxParallelUploads = defaultMaxParallelUploads
	}

	optionsMu.Lock()
	options = opts
	optionsMu.Unlock()

	resetUploadLimiter(opts.MaxParallelUploads)
}

func currentOptions() Options {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	return options
}

func sessions() *session.Store {
	return currentOptions().Sessions
}

func parseIDParam(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + entity + " ID"})
		return 0, false
	}
	return id, true
}

// respondStoreError maps a store failure on a CRUD endpoint. Validation errors
// carry their cause to the client; anything else is logged and reported
// without the driver text.
func respondStoreError(c *gin.Context, action string, err error) {
	if store.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error " + action + ": " + err.Error()})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Error " + action + ": not found"})
		return
	}

	logger.FromGin(c).Error("Store operation failed", zap.String("action", action), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Error " + action})
}
