package cmd

import (
	"log"
	"os"
	"strconv"

	"tubegrab/config"
	"tubegrab/extractor"
	"tubegrab/handlers"
	"tubegrab/middleware"
	"tubegrab/services"
	"tubegrab/websocket"

	"github.com/gin-gonic/gin"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	registry := services.NewRegistry()
	ex := extractor.NewYouTube(config.GetDownloadLocation())
	orchestrator := services.NewOrchestrator(registry, hub, ex, config.GetMaxConcurrentDownloads())
	fileService := services.NewFileService()

	// Initialize handlers
	downloadHandler := handlers.NewDownloadHandler(orchestrator, registry, hub)
	fileHandler := handlers.NewFileHandler(fileService)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.Default()

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())

	// Setup routes
	setupRoutes(r, downloadHandler, fileHandler, healthHandler, settingsHandler)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("TubeGrab web server starting on port %s", portStr)
	log.Printf("Download location: %s", config.GetDownloadLocation())
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, downloadHandler *handlers.DownloadHandler, fileHandler *handlers.FileHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Format inspection
		apiGroup.POST("/probe", downloadHandler.Probe)

		// Download Management Endpoints
		downloadsGroup := apiGroup.Group("/downloads")
		{
			downloadsGroup.POST("", downloadHandler.Enqueue)
			downloadsGroup.GET("", downloadHandler.GetAllJobs)
			downloadsGroup.GET("/:jobId", downloadHandler.GetJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific job progress
			wsGroup.GET("/downloads/:jobId", downloadHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all downloads progress
			wsGroup.GET("/downloads", downloadHandler.HandleWebSocketAllConnection)
		}

		// File discovery endpoint
		apiGroup.GET("/files", fileHandler.ListFiles)

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
