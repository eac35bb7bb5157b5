package api

import (
	"fmt"      // Cache key formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library

	"yamdb/internal/domain"     // Domain models
	"yamdb/internal/metrics"    // Cache counters
	"yamdb/internal/middleware" // Request principal
	"yamdb/internal/store"      // Persistence
	"yamdb/internal/utils"      // Cache helpers
)

// Cache keeps category and genre list pages in Redis. A nil Redis client
// disables caching.
type Cache struct {
	Redis   *redis.Client    // Redis client
	TTL     time.Duration    // Lifetime of a cached page
	Metrics *metrics.Metrics // Hit/miss counters, optional
}

const (
	categoriesCache = "categories"
	genresCache     = "genres"
)

func listKey(cache, search string, page store.Page) string {
	return fmt.Sprintf("%s:search=%s:page=%d:size=%d", cache, search, page.Number, page.Size)
}

func (c Cache) get(ctx *gin.Context, cache, key string, dest any) bool {
	found, err := utils.GetCache(ctx.Request.Context(), c.Redis, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache read failed")
		return false
	}
	if c.Redis != nil {
		c.Metrics.ObserveCache(cache, found)
	}
	return found
}

func (c Cache) set(ctx *gin.Context, key string, value any) {
	if err := utils.SetCache(ctx.Request.Context(), c.Redis, key, value, c.TTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache write failed")
	}
}

func (c Cache) invalidate(ctx *gin.Context, cache string) {
	if err := utils.DeletePrefix(ctx.Request.Context(), c.Redis, cache+":"); err != nil {
		logrus.WithFields(logrus.Fields{"cache": cache, "error": err}).Warn("Cache invalidation failed")
	}
}

// NamedRequest is the payload for creating a category or a genre
type NamedRequest struct {
	Name string `json:"name" binding:"required,max=256"`     // Display name
	Slug string `json:"slug" binding:"required,max=50,slug"` // Unique slug
}

// ListCategoriesHandler lists categories, searchable by name
func ListCategoriesHandler(catalog *store.CatalogStore, cache Cache, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageFromQuery(c, pageSize)
		search := c.Query("search")
		key := listKey(categoriesCache, search, page)

		var cached PageResponse[domain.Category]
		if cache.get(c, categoriesCache, key, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
		items, total, err := catalog.ListCategories(c.Request.Context(), search, page)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := newPage(items, total, page)
		cache.set(c, key, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// CreateCategoryHandler adds a category
func CreateCategoryHandler(catalog *store.CatalogStore, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NamedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		category, err := catalog.CreateCategory(c.Request.Context(), middleware.PrincipalFrom(c), req.Name, req.Slug)
		if err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c, categoriesCache)
		logrus.WithFields(logrus.Fields{"slug": category.Slug}).Info("Category created")
		c.JSON(http.StatusCreated, category)
	}
}

// DeleteCategoryHandler removes a category by slug
func DeleteCategoryHandler(catalog *store.CatalogStore, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if err := catalog.DeleteCategory(c.Request.Context(), middleware.PrincipalFrom(c), slug); err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c, categoriesCache)
		logrus.WithFields(logrus.Fields{"slug": slug}).Info("Category deleted")
		c.Status(http.StatusNoContent)
	}
}

// ListGenresHandler lists genres, searchable by name
func ListGenresHandler(catalog *store.CatalogStore, cache Cache, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageFromQuery(c, pageSize)
		search := c.Query("search")
		key := listKey(genresCache, search, page)

		var cached PageResponse[domain.Genre]
		if cache.get(c, genresCache, key, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
		items, total, err := catalog.ListGenres(c.Request.Context(), search, page)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := newPage(items, total, page)
		cache.set(c, key, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// CreateGenreHandler adds a genre
func CreateGenreHandler(catalog *store.CatalogStore, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NamedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		genre, err := catalog.CreateGenre(c.Request.Context(), middleware.PrincipalFrom(c), req.Name, req.Slug)
		if err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c, genresCache)
		logrus.WithFields(logrus.Fields{"slug": genre.Slug}).Info("Genre created")
		c.JSON(http.StatusCreated, genre)
	}
}

// DeleteGenreHandler removes a genre by slug
func DeleteGenreHandler(catalog *store.CatalogStore, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if err := catalog.DeleteGenre(c.Request.Context(), middleware.PrincipalFrom(c), slug); err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c, genresCache)
		logrus.WithFields(logrus.Fields{"slug": slug}).Info("Genre deleted")
		c.Status(http.StatusNoContent)
	}
}

// TitleRequest is the payload for creating a title
type TitleRequest struct {
	Name        string   `json:"name" binding:"required"` // Title name
	Year        int      `json:"year"`                    // Release year, range checked by the store
	Description *string  `json:"description"`             // Optional description
	Category    string   `json:"category"`                // Category slug
	Genre       []string `json:"genre"`                   // Genre slugs
}

// TitlePatchRequest is the payload for a partial title update
type TitlePatchRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// ListTitlesHandler lists titles filtered by name, category, genre and year
func ListTitlesHandler(catalog *store.CatalogStore, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.TitleFilter{
			Name:     c.Query("name"),
			Category: c.Query("category"),
			Genre:    c.Query("genre"),
		}
		if y := c.Query("year"); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number", "field": "year"})
				return
			}
			filter.Year = year
		}
		page := pageFromQuery(c, pageSize)
		titles, total, err := catalog.ListTitles(c.Request.Context(), filter, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(titles, total, page))
	}
}

// GetTitleHandler returns one title
func GetTitleHandler(catalog *store.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "title_id", "title")
		if !ok {
			return
		}
		title, err := catalog.GetTitle(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, title)
	}
}

// CreateTitleHandler adds a title
func CreateTitleHandler(catalog *store.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TitleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		title, err := catalog.CreateTitle(c.Request.Context(), middleware.PrincipalFrom(c), store.TitleInput{
			Name:        req.Name,
			Year:        req.Year,
			Description: req.Description,
			Category:    req.Category,
			Genres:      req.Genre,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"title_id": title.ID}).Info("Title created")
		c.JSON(http.StatusCreated, title)
	}
}

// UpdateTitleHandler partially updates a title
func UpdateTitleHandler(catalog *store.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "title_id", "title")
		if !ok {
			return
		}
		var req TitlePatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		title, err := catalog.UpdateTitle(c.Request.Context(), middleware.PrincipalFrom(c), id, store.TitlePatch{
			Name:        req.Name,
			Year:        req.Year,
			Description: req.Description,
			Category:    req.Category,
			Genres:      req.Genre,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, title)
	}
}

// DeleteTitleHandler removes a title with its reviews and comments
func DeleteTitleHandler(catalog *store.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "title_id", "title")
		if !ok {
			return
		}
		if err := catalog.DeleteTitle(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"title_id": id}).Info("Title deleted")
		c.Status(http.StatusNoContent)
	}
}
