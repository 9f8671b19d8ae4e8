package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	archiveDir string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(archiveDir string) *HealthHandler {
	return &HealthHandler{archiveDir: archiveDir}
}

// Health reports the service status and whether the document archive
// directory is present on disk.
func (h *HealthHandler) Health(c *gin.Context) {
	archive := "missing"
	if info, err := os.Stat(h.archiveDir); err == nil && info.IsDir() {
		archive = "ok"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "docpack",
		"archive": archive,
	})
}
