package handlers

import (
	"crypto/subtle"
	"io/fs"
	"math"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"genzfits/internal/database"
	"genzfits/internal/logger"
	"genzfits/internal/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	monitoringMu      sync.Mutex
	monitoringService *monitoring.Service
)

// SetMonitoringService registers runtime monitoring service for handlers.
func SetMonitoringService(service *monitoring.Service) {
	monitoringMu.Lock()
	monitoringService = service
	monitoringMu.Unlock()
}

func getMonitoringService() *monitoring.Service {
	monitoringMu.Lock()
	defer monitoringMu.Unlock()
	if monitoringService == nil {
		monitoringService = monitoring.NewService(time.Now(), currentOptions().UploadsBasePath, nil)
	}
	return monitoringService
}

func checkMonitoringToken(c *gin.Context) bool {
	expected := strings.TrimSpace(currentOptions().MonitoringAPIKey)
	if expected == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitoring API is disabled"})
		return false
	}

	provided := strings.TrimSpace(c.GetHeader("X-Monitoring-Key"))
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		logger.FromGin(c).Warn("Rejected monitoring request", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid monitoring key"})
		return false
	}
	return true
}

func monitorText(render func(*monitoring.Service) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checkMonitoringToken(c) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"text": render(getMonitoringService())})
	}
}

var (
	MonitorStatus      = monitorText((*monitoring.Service).StatusText)
	MonitorStorage     = monitorText((*monitoring.Service).StorageText)
	MonitorConnections = monitorText((*monitoring.Service).ConnectionsText)
	MonitorRuntime     = monitorText((*monitoring.Service).RuntimeText)
	MonitorCatalog     = monitorText((*monitoring.Service).CatalogText)
	MonitorAll         = monitorText((*monitoring.Service).AllText)
)

func MonitorSnapshot(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, getMonitoringService().Snapshot())
}

type monitorUserItem struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	IsAdmin     bool      `json:"is_admin"`
	OrdersCount int64     `json:"orders_count"`
	OrdersTotal float64   `json:"orders_total"`
	CreatedAt   time.Time `json:"created_at"`
}

// MonitorUsersList pages through accounts with their order volume.
func MonitorUsersList(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 8)
	if limit > 50 {
		limit = 50
	}

	ctx := c.Request.Context()
	var totalUsers int
	if err := database.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		logger.FromGin(c).Error("Failed to load users count", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users count"})
		return
	}

	pages := totalPages(totalUsers, limit)
	if pages == 0 {
		page = 1
	} else if page > pages {
		page = pages
	}
	offset := (page - 1) * limit

	rows, err := database.DB.QueryContext(ctx, `
		SELECT
			u.id,
			u.username,
			u.full_name,
			u.is_admin,
			u.created_at,
			COUNT(o.id) AS orders_count,
			COALESCE(SUM(o.total), 0) AS orders_total
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		GROUP BY u.id, u.username, u.full_name, u.is_admin, u.created_at
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		logger.FromGin(c).Error("Failed to load users list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users list"})
		return
	}
	defer rows.Close()

	users := make([]monitorUserItem, 0)
	for rows.Next() {
		var item monitorUserItem
		if scanErr := rows.Scan(&item.ID, &item.Username, &item.FullName, &item.IsAdmin, &item.CreatedAt, &item.OrdersCount, &item.OrdersTotal); scanErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan users list"})
			return
		}
		users = append(users, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        page,
		"limit":       limit,
		"total_users": totalUsers,
		"total_pages": pages,
		"users":       users,
	})
}

type monitorFileItem struct {
	Name         string    `json:"name"`
	RelativePath string    `json:"relative_path"`
	SizeBytes    int64     `json:"size_bytes"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// MonitorFilesList pages through stored uploads, largest first.
func MonitorFilesList(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 10)
	if limit > 50 {
		limit = 50
	}

	rootPath := filepath.Clean(getMonitoringService().UploadsDir())
	if absRootPath, err := filepath.Abs(rootPath); err == nil {
		rootPath = absRootPath
	}

	files := make([]monitorFileItem, 0)
	_ = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		relativePath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			relativePath = d.Name()
		}

		files = append(files, monitorFileItem{
			Name:         d.Name(),
			RelativePath: filepath.ToSlash(relativePath),
			SizeBytes:    info.Size(),
			ModifiedAt:   info.ModTime().UTC(),
		})
		return nil
	})

	sort.Slice(files, func(left, right int) bool {
		if files[left].SizeBytes == files[right].SizeBytes {
			if files[left].ModifiedAt.Equal(files[right].ModifiedAt) {
				return files[left].RelativePath < files[right].RelativePath
			}
			return files[left].ModifiedAt.After(files[right].ModifiedAt)
		}
		return files[left].SizeBytes > files[right].SizeBytes
	})

	totalFiles := len(files)
	pages := totalPages(totalFiles, limit)
	if pages > 0 && page > pages {
		page = pages
	}

	pagedFiles := make([]monitorFileItem, 0)
	if offset := (page - 1) * limit; totalFiles > 0 && offset < totalFiles {
		end := offset + limit
		if end > totalFiles {
			end = totalFiles
		}
		pagedFiles = files[offset:end]
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        page,
		"limit":       limit,
		"total_files": totalFiles,
		"total_pages": pages,
		"root_path":   rootPath,
		"files":       pagedFiles,
	})
}

func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
