package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/apperror"
	"yamdb/internal/domain"
	"yamdb/internal/permissions"
)

// errReviewTwice is returned for a second review of the same title by the same author
var errReviewTwice = apperror.Validation("title", "cannot review the same title twice")

// ReviewStore manages reviews and their comments.
type ReviewStore struct {
	db     *gorm.DB
	policy permissions.Policy
}

// NewReviewStore returns a ReviewStore gated by the author/moderator/admin policy
func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db, policy: permissions.AuthorModeratorAdminReadOnly{}}
}

// ReviewInput is the payload of a review creation
type ReviewInput struct {
	Text  string
	Score int
}

// ReviewPatch is a partial review update
type ReviewPatch struct {
	Text  *string
	Score *int
}

// CreateReview adds the principal's review of a title. The (author, title)
// unique index is the enforcement; the lookup before the insert only gives
// the common case a clean error without a failed write.
func (s *ReviewStore) CreateReview(ctx context.Context, p permissions.Principal, titleID uint, in ReviewInput) (*domain.Review, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := validateText(in.Text); err != nil {
		return nil, err
	}
	if err := validateScore(in.Score); err != nil {
		return nil, err
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&domain.Review{}).
		Where("author_id = ? AND title_id = ?", p.UserID, titleID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing > 0 {
		return nil, errReviewTwice
	}

	r := domain.Review{TitleID: titleID, AuthorID: p.UserID, Text: in.Text, Score: in.Score}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&r).Error; err != nil {
		if isDuplicate(err) {
			return nil, errReviewTwice
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	r.Author = domain.User{ID: p.UserID, Username: p.Username}
	return &r, nil
}

// ListReviews returns the reviews of a title, newest first
func (s *ReviewStore) ListReviews(ctx context.Context, titleID uint, page Page) ([]domain.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&domain.Review{}).Where("title_id = ?", titleID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	var reviews []domain.Review
	if err := page.apply(q.Preload("Author").Order("pub_date DESC").Order("id DESC")).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// GetReview returns a review of the given title
func (s *ReviewStore) GetReview(ctx context.Context, titleID, reviewID uint) (*domain.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.findReview(ctx, titleID, reviewID)
}

// UpdateReview edits a review; only its author, moderators and admins may do so
func (s *ReviewStore) UpdateReview(ctx context.Context, p permissions.Principal, titleID, reviewID uint, patch ReviewPatch) (*domain.Review, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPatch, p); err != nil {
		return nil, err
	}
	r, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(s.policy, http.MethodPatch, p, r.AuthorID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Text != nil {
		if err := validateText(*patch.Text); err != nil {
			return nil, err
		}
		updates["text"] = *patch.Text
		r.Text = *patch.Text
	}
	if patch.Score != nil {
		if err := validateScore(*patch.Score); err != nil {
			return nil, err
		}
		updates["score"] = *patch.Score
		r.Score = *patch.Score
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", r.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
	}
	return r, nil
}

// DeleteReview removes a review and its comments
func (s *ReviewStore) DeleteReview(ctx context.Context, p permissions.Principal, titleID, reviewID uint) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	r, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := permissions.CheckObject(s.policy, http.MethodDelete, p, r.AuthorID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", r.ID).Delete(&domain.Comment{}).Error; err != nil {
			return fmt.Errorf("delete review comments: %w", err)
		}
		if err := tx.Delete(&domain.Review{}, r.ID).Error; err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return nil
	})
}

// CreateComment adds the principal's comment to a review of the given title
func (s *ReviewStore) CreateComment(ctx context.Context, p permissions.Principal, titleID, reviewID uint, text string) (*domain.Comment, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	r, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}
	c := domain.Comment{ReviewID: r.ID, AuthorID: p.UserID, Text: text}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c.Author = domain.User{ID: p.UserID, Username: p.Username}
	return &c, nil
}

// ListComments returns the comments of a review, newest first
func (s *ReviewStore) ListComments(ctx context.Context, titleID, reviewID uint, page Page) ([]domain.Comment, int64, error) {
	r, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("review_id = ?", r.ID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	var comments []domain.Comment
	if err := page.apply(q.Preload("Author").Order("pub_date DESC").Order("id DESC")).Find(&comments).Error; err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

// GetComment returns a comment of a review of the given title
func (s *ReviewStore) GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*domain.Comment, error) {
	r, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	var c domain.Comment
	err = s.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND review_id = ?", commentID, r.ID).
		First(&c).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("comment")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// UpdateComment edits a comment; only its author, moderators and admins may do so
func (s *ReviewStore) UpdateComment(ctx context.Context, p permissions.Principal, titleID, reviewID, commentID uint, text *string) (*domain.Comment, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPatch, p); err != nil {
		return nil, err
	}
	c, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(s.policy, http.MethodPatch, p, c.AuthorID); err != nil {
		return nil, err
	}
	if text == nil {
		return c, nil
	}
	if err := validateText(*text); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("id = ?", c.ID).Update("text", *text).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	c.Text = *text
	return c, nil
}

// DeleteComment removes a comment
func (s *ReviewStore) DeleteComment(ctx context.Context, p permissions.Principal, titleID, reviewID, commentID uint) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	c, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := permissions.CheckObject(s.policy, http.MethodDelete, p, c.AuthorID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Comment{}, c.ID).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *ReviewStore) requireTitle(ctx context.Context, titleID uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Title{}).Where("id = ?", titleID).Count(&n).Error; err != nil {
		return fmt.Errorf("find title: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("title")
	}
	return nil
}

// findReview loads a review only if it belongs to titleID
func (s *ReviewStore) findReview(ctx context.Context, titleID, reviewID uint) (*domain.Review, error) {
	var r domain.Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&r).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("review")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &r, nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.Validation("text", "this field is required")
	}
	return nil
}

func validateScore(score int) error {
	if score < domain.MinScore || score > domain.MaxScore {
		return apperror.Validation("score", fmt.Sprintf("score must be between %d and %d", domain.MinScore, domain.MaxScore))
	}
	return nil
}
