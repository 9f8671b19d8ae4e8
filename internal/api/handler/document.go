package handler

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hualin/docpack/internal/catalog"
	"gorm.io/gorm"
)

// DocumentHandler serves the document catalog.
type DocumentHandler struct {
	repo *catalog.Repository
}

// NewDocumentHandler creates a document handler.
// Parameters:
//   - repo: catalog repository.
//
// Returns:
//   - *DocumentHandler: initialized handler.
func NewDocumentHandler(repo *catalog.Repository) *DocumentHandler {
	return &DocumentHandler{repo: repo}
}

// ListDocuments handles GET /api/v1/documents.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	category := c.Query("category")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	docs, err := h.repo.List(c.Request.Context(), category, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	total, err := h.repo.Count(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetDocument handles GET /api/v1/documents/:id, returning the catalog
// record together with the file content.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	content, err := os.ReadFile(doc.Path)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"document": doc,
			"content":  nil,
			"warning":  "archived file is missing",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"content":  string(content),
	})
}

// GetCategories handles GET /api/v1/categories.
func (h *DocumentHandler) GetCategories(c *gin.Context) {
	counts, err := h.repo.CountByCategory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to tally categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": counts})
}
