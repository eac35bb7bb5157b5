package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamps

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"yamdb/internal/domain"     // Domain models
	"yamdb/internal/middleware" // Request principal
	"yamdb/internal/store"      // Persistence
)

// ReviewResponse is a review as returned by the API
type ReviewResponse struct {
	ID      uint      `json:"id"`       // Review ID
	Title   uint      `json:"title"`    // Reviewed title ID
	Author  string    `json:"author"`   // Author username
	Text    string    `json:"text"`     // Review body
	Score   int       `json:"score"`    // Score between 1 and 10
	PubDate time.Time `json:"pub_date"` // Creation timestamp
}

func toReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Title:   r.TitleID,
		Author:  r.Author.Username,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

// CommentResponse is a comment as returned by the API
type CommentResponse struct {
	ID      uint      `json:"id"`       // Comment ID
	Review  uint      `json:"review"`   // Commented review ID
	Author  string    `json:"author"`   // Author username
	Text    string    `json:"text"`     // Comment body
	PubDate time.Time `json:"pub_date"` // Creation timestamp
}

func toCommentResponse(cm domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      cm.ID,
		Review:  cm.ReviewID,
		Author:  cm.Author.Username,
		Text:    cm.Text,
		PubDate: cm.PubDate,
	}
}

// ReviewRequest is the payload for creating a review
type ReviewRequest struct {
	Text  string `json:"text" binding:"required"` // Review body
	Score int    `json:"score"`                   // Score, range checked by the store
}

// ReviewPatchRequest is the payload for a partial review update
type ReviewPatchRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// CommentRequest is the payload for creating or editing a comment
type CommentRequest struct {
	Text string `json:"text" binding:"required"` // Comment body
}

// ListReviewsHandler lists the reviews of a title, newest first
func ListReviewsHandler(reviews *store.ReviewStore, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, ok := idParam(c, "title_id", "title")
		if !ok {
			return
		}
		page := pageFromQuery(c, pageSize)
		items, total, err := reviews.ListReviews(c.Request.Context(), titleID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]ReviewResponse, 0, len(items))
		for _, r := range items {
			out = append(out, toReviewResponse(r))
		}
		c.JSON(http.StatusOK, newPage(out, total, page))
	}
}

// CreateReviewHandler adds the caller's review of a title
func CreateReviewHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, ok := idParam(c, "title_id", "title")
		if !ok {
			return
		}
		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		p := middleware.PrincipalFrom(c)
		r, err := reviews.CreateReview(c.Request.Context(), p, titleID, store.ReviewInput{Text: req.Text, Score: req.Score})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"review_id": r.ID, "title_id": titleID, "user_id": p.UserID}).Info("Review created")
		c.JSON(http.StatusCreated, toReviewResponse(*r))
	}
}

// GetReviewHandler returns one review of a title
func GetReviewHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, ok := reviewParams(c)
		if !ok {
			return
		}
		r, err := reviews.GetReview(c.Request.Context(), titleID, reviewID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toReviewResponse(*r))
	}
}

// UpdateReviewHandler partially updates a review
func UpdateReviewHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, ok := reviewParams(c)
		if !ok {
			return
		}
		var req ReviewPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		r, err := reviews.UpdateReview(c.Request.Context(), middleware.PrincipalFrom(c), titleID, reviewID,
			store.ReviewPatch{Text: req.Text, Score: req.Score})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toReviewResponse(*r))
	}
}

// DeleteReviewHandler removes a review and its comments
func DeleteReviewHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, ok := reviewParams(c)
		if !ok {
			return
		}
		p := middleware.PrincipalFrom(c)
		if err := reviews.DeleteReview(c.Request.Context(), p, titleID, reviewID); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"review_id": reviewID, "user_id": p.UserID}).Info("Review deleted")
		c.Status(http.StatusNoContent)
	}
}

// ListCommentsHandler lists the comments of a review, newest first
func ListCommentsHandler(reviews *store.ReviewStore, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, ok := reviewParams(c)
		if !ok {
			return
		}
		page := pageFromQuery(c, pageSize)
		items, total, err := reviews.ListComments(c.Request.Context(), titleID, reviewID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]CommentResponse, 0, len(items))
		for _, cm := range items {
			out = append(out, toCommentResponse(cm))
		}
		c.JSON(http.StatusOK, newPage(out, total, page))
	}
}

// CreateCommentHandler adds the caller's comment to a review
func CreateCommentHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, ok := reviewParams(c)
		if !ok {
			return
		}
		var req CommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		p := middleware.PrincipalFrom(c)
		cm, err := reviews.CreateComment(c.Request.Context(), p, titleID, reviewID, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"comment_id": cm.ID, "review_id": reviewID, "user_id": p.UserID}).Info("Comment created")
		c.JSON(http.StatusCreated, toCommentResponse(*cm))
	}
}

// GetCommentHandler returns one comment
func GetCommentHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, commentID, ok := commentParams(c)
		if !ok {
			return
		}
		cm, err := reviews.GetComment(c.Request.Context(), titleID, reviewID, commentID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCommentResponse(*cm))
	}
}

// UpdateCommentHandler edits a comment
func UpdateCommentHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, commentID, ok := commentParams(c)
		if !ok {
			return
		}
		var req struct {
			Text *string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		cm, err := reviews.UpdateComment(c.Request.Context(), middleware.PrincipalFrom(c), titleID, reviewID, commentID, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCommentResponse(*cm))
	}
}

// DeleteCommentHandler removes a comment
func DeleteCommentHandler(reviews *store.ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID, reviewID, commentID, ok := commentParams(c)
		if !ok {
			return
		}
		if err := reviews.DeleteComment(c.Request.Context(), middleware.PrincipalFrom(c), titleID, reviewID, commentID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func reviewParams(c *gin.Context) (titleID, reviewID uint, ok bool) {
	if titleID, ok = idParam(c, "title_id", "title"); !ok {
		return
	}
	reviewID, ok = idParam(c, "review_id", "review")
	return
}

func commentParams(c *gin.Context) (titleID, reviewID, commentID uint, ok bool) {
	if titleID, reviewID, ok = reviewParams(c); !ok {
		return
	}
	commentID, ok = idParam(c, "comment_id", "comment")
	return
}
