package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"yamdb/internal/apperror" // Error taxonomy
	"yamdb/internal/store"    // Pagination
)

// PageResponse is the envelope of every paginated listing
type PageResponse[T any] struct {
	Count      int64 `json:"count"`       // Total number of items
	Page       int   `json:"page"`        // Current page
	PageSize   int   `json:"page_size"`   // Page size
	TotalPages int   `json:"total_pages"` // Total pages
	Results    []T   `json:"results"`     // Items of this page
}

func newPage[T any](results []T, total int64, page store.Page) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	totalPages := int((total + int64(page.Size) - 1) / int64(page.Size))
	return PageResponse[T]{
		Count:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
		Results:    results,
	}
}

// pageFromQuery reads page and page_size, falling back to defaults on bad input
func pageFromQuery(c *gin.Context, defaultSize int) store.Page {
	var p store.Page
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil {
		p.Size = v
	}
	return p.Normalize(defaultSize)
}

// idParam parses a numeric path parameter; a malformed id cannot exist
func idParam(c *gin.Context, name, entity string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		respondError(c, apperror.NotFound(entity))
		return 0, false
	}
	return uint(v), true
}

// respondError writes err with the status its kind maps to
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err,
		}).Error("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Field != "" {
		c.JSON(status, gin.H{"error": appErr.Message, "field": appErr.Field})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindError reports a request body that failed binding
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
