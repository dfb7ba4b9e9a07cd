package handlers

import (
	"errors"
	"log"
	"net/http"

	"tubegrab/extractor"
	"tubegrab/services"
	"tubegrab/types"
	"tubegrab/websocket"

	"github.com/gin-gonic/gin"
)

// DownloadHandler handles probe, download and progress endpoints
type DownloadHandler struct {
	orchestrator services.Orchestrator
	registry     services.Registry
	hub          websocket.Hub
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(orchestrator services.Orchestrator, registry services.Registry, hub websocket.Hub) *DownloadHandler {
	return &DownloadHandler{
		orchestrator: orchestrator,
		registry:     registry,
		hub:          hub,
	}
}

// Probe inspects a media URL and returns its available formats
func (h *DownloadHandler) Probe(c *gin.Context) {
	var req types.ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	info, err := h.orchestrator.Probe(c.Request.Context(), req.URL)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": validationErr.Error(),
			})
			return
		}

		var extractionErr *extractor.ExtractionError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "extraction failed",
				"details": extractionErr.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "probe failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, info)
}

// Enqueue starts a background download and returns the job immediately
func (h *DownloadHandler) Enqueue(c *gin.Context) {
	var req types.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	job, err := h.orchestrator.Enqueue(req.URL, req.FormatID)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": validationErr.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to enqueue download",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Download started",
		"job":     job,
	})
}

// GetAllJobs returns all download jobs
func (h *DownloadHandler) GetAllJobs(c *gin.Context) {
	jobs := h.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific download job by ID
func (h *DownloadHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, exists := h.registry.Get(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": services.ErrJobNotFound.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// HandleWebSocketConnection handles WebSocket connections for specific job progress
func (h *DownloadHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job ID is required"})
		return
	}

	// Check if job exists
	if _, exists := h.registry.Get(jobID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrJobNotFound.Error()})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, jobID)
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all job progress
func (h *DownloadHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}
