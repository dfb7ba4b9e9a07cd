package handlers

import (
	"log"
	"net/http"

	"tubegrab/config"
	"tubegrab/services"

	"github.com/gin-gonic/gin"
)

// FileHandler handles file management endpoints
type FileHandler struct {
	fileService services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fs services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fs,
	}
}

// ListFiles returns the media files present in the download directory
func (h *FileHandler) ListFiles(c *gin.Context) {
	downloadLocation := config.GetDownloadLocation()

	files, err := h.fileService.ScanMediaFiles(downloadLocation)
	if err != nil {
		log.Printf("Error scanning media files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to scan files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}
