package server

import (
	"time"

	"genzfits/internal/handlers"
	"genzfits/internal/middleware"
	"genzfits/internal/monitoring"
	"genzfits/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the settings the route table depends on.
type RouterConfig struct {
	AllowedOrigin   string
	UploadsBasePath string
}

// NewRouter builds the HTTP surface. handlers.Configure must have been called.
func NewRouter(cfg RouterConfig, sessions *session.Store) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(monitoring.RequestMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SessionMiddleware(sessions))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/api/status", handlers.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadsBasePath)

	users := router.Group("/api/users")
	{
		users.POST("/signup", handlers.Signup)
		users.POST("/login", handlers.Login)
		users.POST("/logout", handlers.Logout)
		users.GET("/check-session", handlers.CheckSession)
	}

	admin := router.Group("/api/admin")
	{
		// Catalog reads are public; the storefront uses them anonymously.
		admin.GET("/products", handlers.ListProducts)
		admin.GET("/products/search", handlers.SearchProducts)
		admin.GET("/products/category/:category", handlers.ListProductsByCategory)
		admin.GET("/products/:id", handlers.GetProduct)

		privileged := admin.Group("", middleware.RequireAdmin())
		privileged.POST("/products", handlers.CreateProduct)
		privileged.POST("/products/upload-images", handlers.UploadProductImages)
		privileged.PUT("/products/:id", handlers.UpdateProduct)
		privileged.DELETE("/products/:id", handlers.DeleteProduct)

		privileged.GET("/users", handlers.ListUsers)
		privileged.GET("/users/:id", handlers.GetUser)
		privileged.DELETE("/users/:id", handlers.DeleteUser)

		privileged.GET("/orders", handlers.ListOrders)
		privileged.GET("/orders/:id", handlers.GetOrder)
		privileged.PUT("/orders/:id", handlers.UpdateOrderStatus)
	}

	orders := router.Group("/api/orders", middleware.RequireSession())
	{
		orders.POST("", handlers.PlaceOrder)
		orders.GET("", handlers.ListMyOrders)
	}

	monitor := router.Group("/api/monitoring")
	{
		monitor.GET("/status", handlers.MonitorStatus)
		monitor.GET("/storage", handlers.MonitorStorage)
		monitor.GET("/connections", handlers.MonitorConnections)
		monitor.GET("/runtime", handlers.MonitorRuntime)
		monitor.GET("/catalog", handlers.MonitorCatalog)
		monitor.GET("/all", handlers.MonitorAll)
		monitor.GET("/snapshot", handlers.MonitorSnapshot)
		monitor.GET("/users", handlers.MonitorUsersList)
		monitor.GET("/files", handlers.MonitorFilesList)
	}

	return router
}
