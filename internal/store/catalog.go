package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/apperror"
	"yamdb/internal/domain"
	"yamdb/internal/permissions"
	"yamdb/internal/validation"
)

const (
	maxNameLen        = 256
	maxDescriptionLen = 200
)

// ratingSelect computes the average review score of each title at read time
const ratingSelect = "titles.*, (SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// CatalogStore manages categories, genres and titles.
type CatalogStore struct {
	db     *gorm.DB
	policy permissions.Policy
	now    func() time.Time
}

// NewCatalogStore returns a CatalogStore gated by the admin-or-read-only policy
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db, policy: permissions.AdminOrReadOnly{}, now: time.Now}
}

// TitleFilter narrows a title listing. Empty fields do not filter.
type TitleFilter struct {
	Name     string // Case-insensitive substring of the title name
	Category string // Category slug
	Genre    string // Genre slug
	Year     int    // Exact release year
}

// TitleInput is the payload of a title creation. Category and Genres are slugs.
type TitleInput struct {
	Name        string
	Year        int
	Description *string
	Category    string
	Genres      []string
}

// TitlePatch is a partial title update, nil fields are left untouched.
// An empty Category clears the title's category.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// ListCategories returns categories ordered by name, optionally filtered by name
func (s *CatalogStore) ListCategories(ctx context.Context, search string, page Page) ([]domain.Category, int64, error) {
	var items []domain.Category
	total, err := s.listNamed(ctx, &domain.Category{}, &items, search, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return items, total, nil
}

// ListGenres returns genres ordered by name, optionally filtered by name
func (s *CatalogStore) ListGenres(ctx context.Context, search string, page Page) ([]domain.Genre, int64, error) {
	var items []domain.Genre
	total, err := s.listNamed(ctx, &domain.Genre{}, &items, search, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	return items, total, nil
}

func (s *CatalogStore) listNamed(ctx context.Context, model, dest any, search string, page Page) (int64, error) {
	q := s.db.WithContext(ctx).Model(model)
	if search != "" {
		q = q.Where(likeClause("name"), like(search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := page.apply(q.Order("name").Order("id")).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CreateCategory adds a category
func (s *CatalogStore) CreateCategory(ctx context.Context, p permissions.Principal, name, slug string) (*domain.Category, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	if err := validateNamed(name, slug); err != nil {
		return nil, err
	}
	c := domain.Category{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperror.Validation("slug", "category with this slug already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// CreateGenre adds a genre
func (s *CatalogStore) CreateGenre(ctx context.Context, p permissions.Principal, name, slug string) (*domain.Genre, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	if err := validateNamed(name, slug); err != nil {
		return nil, err
	}
	g := domain.Genre{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperror.Validation("slug", "genre with this slug already exists")
		}
		return nil, fmt.Errorf("create genre: %w", err)
	}
	return &g, nil
}

// DeleteCategory removes a category; titles referencing it lose their category
func (s *CatalogStore) DeleteCategory(ctx context.Context, p permissions.Principal, slug string) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	var c domain.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if isNotFound(err) {
			return apperror.NotFound("category")
		}
		return fmt.Errorf("find category: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Title{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// DeleteGenre removes a genre and its links to titles
func (s *CatalogStore) DeleteGenre(ctx context.Context, p permissions.Principal, slug string) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	var g domain.Genre
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		if isNotFound(err) {
			return apperror.NotFound("genre")
		}
		return fmt.Errorf("find genre: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", g.ID).Error; err != nil {
			return fmt.Errorf("unlink genre: %w", err)
		}
		if err := tx.Delete(&g).Error; err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
}

// ListTitles returns titles ordered by name with embedded category, genres and rating
func (s *CatalogStore) ListTitles(ctx context.Context, f TitleFilter, page Page) ([]domain.Title, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Title{})
	if f.Name != "" {
		q = q.Where(likeClause("titles.name"), like(f.Name))
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			s.db.Model(&domain.Category{}).Select("id").Where("slug = ?", f.Category))
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (?)",
			s.db.Table("title_genres").
				Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", f.Genre))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}
	var titles []domain.Title
	err := page.apply(q.Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Order("titles.name").Order("titles.id")).
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return titles, total, nil
}

// GetTitle returns one title with embedded category, genres and a fresh rating
func (s *CatalogStore) GetTitle(ctx context.Context, id uint) (*domain.Title, error) {
	var t domain.Title
	err := s.db.WithContext(ctx).Model(&domain.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Where("titles.id = ?", id).
		Take(&t).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("title")
		}
		return nil, fmt.Errorf("get title: %w", err)
	}
	return &t, nil
}

// CreateTitle adds a title, resolving its category and genres by slug
func (s *CatalogStore) CreateTitle(ctx context.Context, p permissions.Principal, in TitleInput) (*domain.Title, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	if err := s.validateName(in.Name); err != nil {
		return nil, err
	}
	if err := s.validateYear(in.Year); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}

	t := domain.Title{
		Name:        strings.TrimSpace(in.Name),
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  categoryID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		if len(genres) > 0 {
			if err := tx.Model(&t).Association("Genres").Append(genres); err != nil {
				return fmt.Errorf("link genres: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, t.ID)
}

// UpdateTitle applies a partial update to a title
func (s *CatalogStore) UpdateTitle(ctx context.Context, p permissions.Principal, id uint, patch TitlePatch) (*domain.Title, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPatch, p); err != nil {
		return nil, err
	}
	var t domain.Title
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("title")
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	if err := permissions.CheckObject(s.policy, http.MethodPatch, p, 0); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		if err := s.validateName(*patch.Name); err != nil {
			return nil, err
		}
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Year != nil {
		if err := s.validateYear(*patch.Year); err != nil {
			return nil, err
		}
		updates["year"] = *patch.Year
	}
	if patch.Description != nil {
		if err := validateDescription(patch.Description); err != nil {
			return nil, err
		}
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}
	var genres []domain.Genre
	if patch.Genres != nil {
		var err error
		if genres, err = s.resolveGenres(ctx, *patch.Genres); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&domain.Title{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update title: %w", err)
			}
		}
		switch {
		case patch.Genres == nil:
		case len(genres) == 0:
			if err := tx.Model(&t).Association("Genres").Clear(); err != nil {
				return fmt.Errorf("clear genres: %w", err)
			}
		default:
			if err := tx.Model(&t).Association("Genres").Replace(genres); err != nil {
				return fmt.Errorf("replace genres: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, t.ID)
}

// DeleteTitle removes a title together with its reviews and their comments
func (s *CatalogStore) DeleteTitle(ctx context.Context, p permissions.Principal, id uint) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	var t domain.Title
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if isNotFound(err) {
			return apperror.NotFound("title")
		}
		return fmt.Errorf("find title: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&domain.Review{}).Select("id").Where("title_id = ?", t.ID)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&domain.Comment{}).Error; err != nil {
			return fmt.Errorf("delete title comments: %w", err)
		}
		if err := tx.Where("title_id = ?", t.ID).Delete(&domain.Review{}).Error; err != nil {
			return fmt.Errorf("delete title reviews: %w", err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", t.ID).Error; err != nil {
			return fmt.Errorf("unlink title genres: %w", err)
		}
		if err := tx.Delete(&domain.Title{}, t.ID).Error; err != nil {
			return fmt.Errorf("delete title: %w", err)
		}
		return nil
	})
}

func (s *CatalogStore) validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("name", "this field is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return apperror.Validation("name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLen))
	}
	return nil
}

func (s *CatalogStore) validateYear(year int) error {
	current := s.now().Year()
	if year < 1 {
		return apperror.Validation("year", "year must be greater than zero")
	}
	if year > current {
		return apperror.Validation("year", fmt.Sprintf("year cannot be later than %d", current))
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return apperror.Validation("description", fmt.Sprintf("ensure this field has no more than %d characters", maxDescriptionLen))
	}
	return nil
}

func validateNamed(name, slug string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("name", "this field is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return apperror.Validation("name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLen))
	}
	if err := validation.Var(slug, "required,max=50,slug"); err != nil {
		return apperror.Validation("slug", "enter a valid slug of letters, numbers, underscores or hyphens (max 50)")
	}
	return nil
}

// resolveCategory maps a slug to a category id, an empty slug means no category
func (s *CatalogStore) resolveCategory(ctx context.Context, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	var c domain.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.Validation("category", fmt.Sprintf("object with slug=%s does not exist", slug))
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return &c.ID, nil
}

// resolveGenres maps slugs to genres, failing on the first unknown slug
func (s *CatalogStore) resolveGenres(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var found []domain.Genre
	if err := s.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	bySlug := make(map[string]domain.Genre, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g
	}
	genres := make([]domain.Genre, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		g, ok := bySlug[slug]
		if !ok {
			return nil, apperror.Validation("genre", fmt.Sprintf("object with slug=%s does not exist", slug))
		}
		if !seen[slug] {
			seen[slug] = true
			genres = append(genres, g)
		}
	}
	return genres, nil
}
