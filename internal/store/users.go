package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"yamdb/internal/apperror"
	"yamdb/internal/domain"
	"yamdb/internal/permissions"
	"yamdb/internal/validation"
)

// UserStore manages user accounts.
type UserStore struct {
	db     *gorm.DB
	policy permissions.Policy
}

// NewUserStore returns a UserStore gated by the admin-only policy
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db, policy: permissions.AdminOnly{}}
}

// UserInput is the payload of an admin user creation
type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      domain.Role
}

// UserPatch is a partial user update
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *domain.Role
}

// List returns users ordered by id, optionally filtered by username
func (s *UserStore) List(ctx context.Context, p permissions.Principal, search string, page Page) ([]domain.User, int64, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodGet, p); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&domain.User{})
	if search != "" {
		q = q.Where(likeClause("username"), like(search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []domain.User
	if err := page.apply(q.Order("id")).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Get returns a user by username
func (s *UserStore) Get(ctx context.Context, p permissions.Principal, username string) (*domain.User, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodGet, p); err != nil {
		return nil, err
	}
	u, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(s.policy, http.MethodGet, p, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Create adds a user with an explicit role
func (s *UserStore) Create(ctx context.Context, p permissions.Principal, in UserInput) (*domain.User, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPost, p); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateAccount(in.Username, in.Email); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, apperror.Validation("role", fmt.Sprintf("%q is not a valid role", in.Role))
	}
	u := domain.User{
		Username:  in.Username,
		Email:     strings.ToLower(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.insert(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies a partial update to the user named username
func (s *UserStore) Update(ctx context.Context, p permissions.Principal, username string, patch UserPatch) (*domain.User, error) {
	if err := permissions.CheckCollection(s.policy, http.MethodPatch, p); err != nil {
		return nil, err
	}
	u, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(s.policy, http.MethodPatch, p, u.ID); err != nil {
		return nil, err
	}
	return s.apply(ctx, u, patch)
}

// UpdateMe applies a partial update to the principal's own account. The role
// cannot be changed this way.
func (s *UserStore) UpdateMe(ctx context.Context, p permissions.Principal, patch UserPatch) (*domain.User, error) {
	if err := permissions.CheckCollection(permissions.Authenticated{}, http.MethodPatch, p); err != nil {
		return nil, err
	}
	u, err := s.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.apply(ctx, u, patch)
}

// Delete removes a user with their reviews and comments
func (s *UserStore) Delete(ctx context.Context, p permissions.Principal, username string) error {
	if err := permissions.CheckCollection(s.policy, http.MethodDelete, p); err != nil {
		return err
	}
	u, err := s.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := permissions.CheckObject(s.policy, http.MethodDelete, p, u.ID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownReviews := tx.Model(&domain.Review{}).Select("id").Where("author_id = ?", u.ID)
		if err := tx.Where("author_id = ? OR review_id IN (?)", u.ID, ownReviews).Delete(&domain.Comment{}).Error; err != nil {
			return fmt.Errorf("delete user comments: %w", err)
		}
		if err := tx.Where("author_id = ?", u.ID).Delete(&domain.Review{}).Error; err != nil {
			return fmt.Errorf("delete user reviews: %w", err)
		}
		if err := tx.Delete(&domain.User{}, u.ID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// FindByID loads a user without authorization, used to resolve token principals
func (s *UserStore) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// FindByUsername loads a user without authorization
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// FindPair loads the user registered with exactly this username and email
func (s *UserStore) FindPair(ctx context.Context, username, email string) (*domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).
		Where("username = ? AND email = ?", username, strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Register creates a self-registered user with the default role. Username
// and email collisions are reported as Conflict errors.
func (s *UserStore) Register(ctx context.Context, username, email string) (*domain.User, error) {
	if err := validateAccount(username, email); err != nil {
		return nil, err
	}
	u := domain.User{Username: username, Email: strings.ToLower(email), Role: domain.RoleUser}
	if err := s.insert(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetConfirmationCode stores the hash of the user's pending confirmation code,
// an empty hash clears it
func (s *UserStore) SetConfirmationCode(ctx context.Context, userID uint, hash string) error {
	err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("confirmation_code", hash).Error
	if err != nil {
		return fmt.Errorf("set confirmation code: %w", err)
	}
	return nil
}

// insert creates u after checking for username and email collisions; the
// unique indexes catch concurrent registrations
func (s *UserStore) insert(ctx context.Context, u *domain.User) error {
	if err := s.checkCollision(ctx, 0, u.Username, u.Email); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("username", "a user with this username or email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) checkCollision(ctx context.Context, selfID uint, username, email string) error {
	var n int64
	if username != "" {
		err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ? AND id <> ?", username, selfID).Count(&n).Error
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if n > 0 {
			return apperror.Conflict("username", "a user with this username already exists")
		}
	}
	if email != "" {
		err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ? AND id <> ?", strings.ToLower(email), selfID).Count(&n).Error
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return apperror.Conflict("email", "a user with this email already exists")
		}
	}
	return nil
}

func (s *UserStore) apply(ctx context.Context, u *domain.User, patch UserPatch) (*domain.User, error) {
	updates := map[string]any{}
	if patch.Username != nil && *patch.Username != u.Username {
		if !validation.ValidUsername(*patch.Username) || len(*patch.Username) > 150 {
			return nil, apperror.Validation("username", "enter a valid username")
		}
		updates["username"] = *patch.Username
	}
	if patch.Email != nil && !strings.EqualFold(*patch.Email, u.Email) {
		if err := validation.Var(*patch.Email, "required,email,max=254"); err != nil {
			return nil, apperror.Validation("email", "enter a valid email address")
		}
		updates["email"] = strings.ToLower(*patch.Email)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperror.Validation("role", fmt.Sprintf("%q is not a valid role", *patch.Role))
		}
		updates["role"] = *patch.Role
	}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if len(updates) == 0 {
		return u, nil
	}

	username, _ := updates["username"].(string)
	email, _ := updates["email"].(string)
	if err := s.checkCollision(ctx, u.ID, username, email); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("username", "a user with this username or email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.FindByID(ctx, u.ID)
}

func validateAccount(username, email string) error {
	if err := validation.Var(username, "required,max=150,username"); err != nil {
		return apperror.Validation("username", "enter a valid username: letters, digits and @/./+/-/_ only, not \"me\"")
	}
	if err := validation.Var(email, "required,email,max=254"); err != nil {
		return apperror.Validation("email", "enter a valid email address")
	}
	return nil
}
