package monitoring

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"genzfits/internal/database"
)

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt    time.Time
	uploadsDir   string
	sessionCount func() int
}

type Snapshot struct {
	TimestampUTC        string      `json:"timestamp_utc"`
	UptimeSeconds       int64       `json:"uptime_seconds"`
	HTTPActiveRequests  int64       `json:"http_active_requests"`
	HTTPTotalRequests   uint64      `json:"http_total_requests"`
	ActiveSessions      int         `json:"active_sessions"`
	DBOpenConnections   int         `json:"db_open_connections"`
	DBInUseConnections  int         `json:"db_in_use_connections"`
	DBWaitCount         int64       `json:"db_wait_count"`
	Goroutines          int         `json:"goroutines"`
	GoMemoryAllocBytes  uint64      `json:"go_memory_alloc_bytes"`
	GoMemorySysBytes    uint64      `json:"go_memory_sys_bytes"`
	GoHeapInUseBytes    uint64      `json:"go_heap_in_use_bytes"`
	GoGCCount           uint32      `json:"go_gc_count"`
	UsersTotal          int64       `json:"users_total"`
	ProductsTotal       int64       `json:"products_total"`
	OrdersTotal         int64       `json:"orders_total"`
	OrdersPending       int64       `json:"orders_pending"`
	DBSizeBytes         int64       `json:"db_size_bytes"`
	UploadsSizeBytes    int64       `json:"uploads_size_bytes"`
	UploadsFilesCount   int64       `json:"uploads_files_count"`
	UploadsFSTotalBytes uint64      `json:"uploads_fs_total_bytes"`
	UploadsFSFreeBytes  uint64      `json:"uploads_fs_free_bytes"`
	Uploads             UploadStats `json:"uploads"`
}

// NewService creates a monitoring service. sessionCount may be nil.
func NewService(startedAt time.Time, uploadsDir string, sessionCount func() int) *Service {
	if sessionCount == nil {
		sessionCount = func() int { return 0 }
	}
	return &Service{startedAt: startedAt, uploadsDir: uploadsDir, sessionCount: sessionCount}
}

func (s *Service) UploadsDir() string {
	return s.uploadsDir
}

func (s *Service) StatusText() string {
	dbState := "ok"
	if err := database.DB.Ping(); err != nil {
		dbState = "error: " + err.Error()
	}

	uptime := time.Since(s.startedAt).Round(time.Second)
	activeHTTP, totalHTTP := getHTTPStats()

	return strings.Join([]string{
		"GenZFits Server Status",
		fmt.Sprintf("Uptime: %s", uptime),
		fmt.Sprintf("DB: %s", dbState),
		fmt.Sprintf("HTTP active requests: %d", activeHTTP),
		fmt.Sprintf("HTTP total requests: %d", totalHTTP),
		fmt.Sprintf("Active sessions: %d", s.sessionCount()),
		fmt.Sprintf("Go goroutines: %d", runtime.NumGoroutine()),
	}, "\n")
}

func (s *Service) StorageText() string {
	var dbSizeBytes int64
	_ = database.DB.QueryRow(`SELECT COALESCE(pg_database_size(current_database()), 0)`).Scan(&dbSizeBytes)

	uploadsBytes := dirSize(s.uploadsDir)
	uploadsFiles := dirFileCount(s.uploadsDir)
	uploadsTotal, uploadsFree := fsUsage(s.uploadsDir)
	uploads := GetUploadStats()

	return strings.Join([]string{
		"GenZFits Storage",
		fmt.Sprintf("PostgreSQL DB size: %s", formatBytes(dbSizeBytes)),
		fmt.Sprintf("Uploads folder size (%s): %s", s.uploadsDir, formatBytes(uploadsBytes)),
		fmt.Sprintf("Uploads files count: %d", uploadsFiles),
		fmt.Sprintf("Uploads disk free: %s", formatBytes(int64(uploadsFree))),
		fmt.Sprintf("Uploads disk total: %s", formatBytes(int64(uploadsTotal))),
		fmt.Sprintf("Image upload requests: %d (%d failed, avg %.2f ms)", uploads.RequestsTotal, uploads.FailedTotal, uploads.AvgDurationMS),
	}, "\n")
}

func (s *Service) ConnectionsText() string {
	stats := database.DB.Stats()
	activeHTTP, totalHTTP := getHTTPStats()

	return strings.Join([]string{
		"GenZFits Connections",
		fmt.Sprintf("DB MaxOpenConnections: %d", stats.MaxOpenConnections),
		fmt.Sprintf("DB OpenConnections: %d", stats.OpenConnections),
		fmt.Sprintf("DB InUse: %d", stats.InUse),
		fmt.Sprintf("DB Idle: %d", stats.Idle),
		fmt.Sprintf("DB WaitCount: %d", stats.WaitCount),
		fmt.Sprintf("HTTP active requests: %d", activeHTTP),
		fmt.Sprintf("HTTP total requests: %d", totalHTTP),
	}, "\n")
}

func (s *Service) RuntimeText() string {
	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	return strings.Join([]string{
		"GenZFits Runtime",
		fmt.Sprintf("Go version: %s", runtime.Version()),
		fmt.Sprintf("CPU cores: %d", runtime.NumCPU()),
		fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()),
		fmt.Sprintf("Memory alloc: %s", formatBytes(int64(memory.Alloc))),
		fmt.Sprintf("Memory sys: %s", formatBytes(int64(memory.Sys))),
		fmt.Sprintf("Heap in use: %s", formatBytes(int64(memory.HeapInuse))),
		fmt.Sprintf("GC cycles: %d", memory.NumGC),
	}, "\n")
}

// CatalogText summarizes users, products and orders.
func (s *Service) CatalogText() string {
	counts := loadCatalogCounts()

	var usersNew24h int64
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE created_at >= NOW() - INTERVAL '24 hours'`).Scan(&usersNew24h)

	var outOfStock int64
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM products WHERE stock <= 0`).Scan(&outOfStock)

	return strings.Join([]string{
		"GenZFits Catalog",
		fmt.Sprintf("Users total: %d", counts.users),
		fmt.Sprintf("Users created in 24h: %d", usersNew24h),
		fmt.Sprintf("Products total: %d", counts.products),
		fmt.Sprintf("Products out of stock: %d", outOfStock),
		fmt.Sprintf("Orders total: %d", counts.orders),
		fmt.Sprintf("Orders pending: %d", counts.ordersPending),
	}, "\n")
}

func (s *Service) AllText() string {
	return strings.Join([]string{
		s.StatusText(),
		"",
		s.StorageText(),
		"",
		s.ConnectionsText(),
		"",
		s.RuntimeText(),
		"",
		s.CatalogText(),
	}, "\n")
}

func (s *Service) Snapshot() Snapshot {
	stats := database.DB.Stats()
	activeHTTP, totalHTTP := getHTTPStats()
	uploadsTotal, uploadsFree := fsUsage(s.uploadsDir)
	counts := loadCatalogCounts()

	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	snap := Snapshot{
		TimestampUTC:        time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:       int64(time.Since(s.startedAt).Seconds()),
		HTTPActiveRequests:  activeHTTP,
		HTTPTotalRequests:   totalHTTP,
		ActiveSessions:      s.sessionCount(),
		DBOpenConnections:   stats.OpenConnections,
		DBInUseConnections:  stats.InUse,
		DBWaitCount:         stats.WaitCount,
		Goroutines:          runtime.NumGoroutine(),
		GoMemoryAllocBytes:  memory.Alloc,
		GoMemorySysBytes:    memory.Sys,
		GoHeapInUseBytes:    memory.HeapInuse,
		GoGCCount:           memory.NumGC,
		UsersTotal:          counts.users,
		ProductsTotal:       counts.products,
		OrdersTotal:         counts.orders,
		OrdersPending:       counts.ordersPending,
		UploadsSizeBytes:    dirSize(s.uploadsDir),
		UploadsFilesCount:   dirFileCount(s.uploadsDir),
		UploadsFSTotalBytes: uploadsTotal,
		UploadsFSFreeBytes:  uploadsFree,
		Uploads:             GetUploadStats(),
	}

	_ = database.DB.QueryRow(`SELECT COALESCE(pg_database_size(current_database()), 0)`).Scan(&snap.DBSizeBytes)

	return snap
}

type catalogCounts struct {
	users         int64
	products      int64
	orders        int64
	ordersPending int64
}

func loadCatalogCounts() catalogCounts {
	var counts catalogCounts
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&counts.users)
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&counts.products)
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&counts.orders)
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM orders WHERE status = 'pending'`).Scan(&counts.ordersPending)
	return counts
}

func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}

func dirFileCount(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		total++
		return nil
	})
	return total
}

func formatBytes(value int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(value)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", value, units[unit])
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
