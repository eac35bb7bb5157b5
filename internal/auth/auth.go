// Package auth implements self-registration and the exchange of an emailed
// confirmation code for a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"yamdb/internal/apperror"
	"yamdb/internal/domain"
)

// Users is the account storage the service depends on
type Users interface {
	FindPair(ctx context.Context, username, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Register(ctx context.Context, username, email string) (*domain.User, error)
	SetConfirmationCode(ctx context.Context, userID uint, hash string) error
}

// Notifier delivers a confirmation code out of band
type Notifier interface {
	SendConfirmationCode(ctx context.Context, email, code string) error
}

// TokenIssuer mints access tokens bound to a user
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// Service runs signup and token exchange
type Service struct {
	users    Users
	notifier Notifier
	issuer   TokenIssuer
	cost     int           // bcrypt cost for stored codes
	newCode  func() string // Confirmation code generator
	log      logrus.FieldLogger
}

// Option customizes a Service
type Option func(*Service)

// WithBcryptCost overrides the cost used to hash confirmation codes
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithCodeGenerator overrides how confirmation codes are generated
func WithCodeGenerator(gen func() string) Option {
	return func(s *Service) { s.newCode = gen }
}

// NewService wires a Service
func NewService(users Users, notifier Notifier, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:    users,
		notifier: notifier,
		issuer:   issuer,
		cost:     bcrypt.DefaultCost,
		newCode:  uuid.NewString,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers username/email and sends a confirmation code. Repeating
// the signup of an existing exact pair creates nothing and re-sends a fresh
// code.
func (s *Service) Signup(ctx context.Context, username, email string) (*domain.User, error) {
	user, err := s.users.FindPair(ctx, username, email)
	switch {
	case err == nil:
		s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("Signup repeated, resending confirmation code")
	case apperror.Is(err, apperror.KindNotFound):
		user, err = s.users.Register(ctx, username, email)
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	default:
		return nil, err
	}

	if err := s.sendCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ExchangeToken trades a valid confirmation code for an access token. Codes
// are single use.
func (s *Service) ExchangeToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user.ConfirmationCode == "" || code == "" {
		return "", invalidCode()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.WithFields(logrus.Fields{"user_id": user.ID}).Warn("Confirmation code mismatch")
			return "", invalidCode()
		}
		return "", fmt.Errorf("compare confirmation code: %w", err)
	}
	if err := s.users.SetConfirmationCode(ctx, user.ID, ""); err != nil {
		return "", err
	}
	token, err := s.issuer.Issue(*user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("Token issued")
	return token, nil
}

func (s *Service) sendCode(ctx context.Context, user *domain.User) error {
	code := s.newCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return fmt.Errorf("hash confirmation code: %w", err)
	}
	if err := s.users.SetConfirmationCode(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.notifier.SendConfirmationCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("send confirmation code: %w", err)
	}
	return nil
}

func invalidCode() error {
	return apperror.Validation("confirmation_code", "invalid confirmation code")
}
