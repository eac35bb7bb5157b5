package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"yamdb/internal/auth"        // Signup and token exchange
	"yamdb/internal/metrics"     // Prometheus collectors
	"yamdb/internal/middleware"  // Authentication and authorization
	"yamdb/internal/permissions" // Authorization policies
	"yamdb/internal/store"       // Persistence
	"yamdb/internal/validation"  // Custom binding rules
)

// Deps are the collaborators the HTTP layer is wired with
type Deps struct {
	Catalog   *store.CatalogStore
	Reviews   *store.ReviewStore
	Users     *store.UserStore
	Auth      *auth.Service
	Cache     Cache
	Metrics   *metrics.Metrics // Optional
	JWTSecret string
	PageSize  int
}

// RegisterRoutes mounts the API under /api/v1 plus the operational endpoints
func RegisterRoutes(r *gin.Engine, d Deps) {
	validation.RegisterGin()

	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(d.JWTSecret, d.Users))

	// Auth routes
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", SignupHandler(d.Auth))
	authGroup.POST("/token", TokenHandler(d.Auth))

	// Catalog routes
	catalogPolicy := middleware.Authorize(permissions.AdminOrReadOnly{}, d.Metrics)
	categories := v1.Group("/categories", catalogPolicy)
	categories.GET("", ListCategoriesHandler(d.Catalog, d.Cache, d.PageSize))
	categories.POST("", CreateCategoryHandler(d.Catalog, d.Cache))
	categories.DELETE("/:slug", DeleteCategoryHandler(d.Catalog, d.Cache))

	genres := v1.Group("/genres", catalogPolicy)
	genres.GET("", ListGenresHandler(d.Catalog, d.Cache, d.PageSize))
	genres.POST("", CreateGenreHandler(d.Catalog, d.Cache))
	genres.DELETE("/:slug", DeleteGenreHandler(d.Catalog, d.Cache))

	titles := v1.Group("/titles")
	titles.GET("", catalogPolicy, ListTitlesHandler(d.Catalog, d.PageSize))
	titles.POST("", catalogPolicy, CreateTitleHandler(d.Catalog))
	titles.GET("/:title_id", catalogPolicy, GetTitleHandler(d.Catalog))
	titles.PATCH("/:title_id", catalogPolicy, UpdateTitleHandler(d.Catalog))
	titles.DELETE("/:title_id", catalogPolicy, DeleteTitleHandler(d.Catalog))

	// Review and comment routes
	reviews := titles.Group("/:title_id/reviews", middleware.Authorize(permissions.AuthorModeratorAdminReadOnly{}, d.Metrics))
	reviews.GET("", ListReviewsHandler(d.Reviews, d.PageSize))
	reviews.POST("", CreateReviewHandler(d.Reviews))
	reviews.GET("/:review_id", GetReviewHandler(d.Reviews))
	reviews.PATCH("/:review_id", UpdateReviewHandler(d.Reviews))
	reviews.DELETE("/:review_id", DeleteReviewHandler(d.Reviews))
	reviews.GET("/:review_id/comments", ListCommentsHandler(d.Reviews, d.PageSize))
	reviews.POST("/:review_id/comments", CreateCommentHandler(d.Reviews))
	reviews.GET("/:review_id/comments/:comment_id", GetCommentHandler(d.Reviews))
	reviews.PATCH("/:review_id/comments/:comment_id", UpdateCommentHandler(d.Reviews))
	reviews.DELETE("/:review_id/comments/:comment_id", DeleteCommentHandler(d.Reviews))

	// User routes
	me := v1.Group("/users/me", middleware.Authorize(permissions.Authenticated{}, d.Metrics))
	me.GET("", MeHandler(d.Users))
	me.PATCH("", UpdateMeHandler(d.Users))

	users := v1.Group("/users", middleware.Authorize(permissions.AdminOnly{}, d.Metrics))
	users.GET("", ListUsersHandler(d.Users, d.PageSize))
	users.POST("", CreateUserHandler(d.Users))
	users.GET("/:username", GetUserHandler(d.Users))
	users.PATCH("/:username", UpdateUserHandler(d.Users))
	users.DELETE("/:username", DeleteUserHandler(d.Users))
}
