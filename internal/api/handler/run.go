package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/hualin/docpack/internal/api/middleware"
	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/pipeline"
)

// RunHandler exposes the state of the most recent download run.
type RunHandler struct {
	archiveDir string
}

func NewRunHandler(archiveDir string) *RunHandler {
	return &RunHandler{archiveDir: archiveDir}
}

// GetRun returns the persisted progress of the download pipeline.
func (h *RunHandler) GetRun(c *gin.Context) {
	log := middleware.GetLogger(c)

	path := filepath.Join(h.archiveDir, pipeline.DownloadProgressName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run recorded"})
		return
	}

	store := batch.NewStore(path, log)
	led := store.Load()

	c.JSON(http.StatusOK, gin.H{
		"timestamp": led.Timestamp,
		"total":     led.Total,
		"completed": led.CompletedCount(),
		"failed":    led.Failed,
	})
}
