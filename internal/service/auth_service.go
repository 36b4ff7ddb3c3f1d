package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	users     repository.UserRepository
	cost      int
	dummyHash []byte
	obs       Observer
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// NewAuthService returns an AuthService hashing with the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepository, cost int, obs Observer) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown, so both failure paths
	// pay for one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte("warbler-unknown-user"), cost)
	if err != nil {
		obs.logger().Error("failed to prepare dummy hash", slog.String("error", err.Error()))
	}
	return &AuthService{users: users, cost: cost, dummyHash: dummy, obs: obs}
}

// Signup creates a user with a hashed password. A taken username or email
// yields a ConstraintError and nothing is written.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	var user *models.User
	err := s.obs.run(ctx, "signup", func(ctx context.Context) error {
		username := strings.TrimSpace(in.Username)
		email := strings.TrimSpace(in.Email)

		if err := validation.ValidateUsername(username); err != nil {
			return models.NewValidationError(err.Error())
		}
		if err := validation.ValidateEmail(email); err != nil {
			return models.NewValidationError(err.Error())
		}
		if err := validation.ValidatePassword(in.Password); err != nil {
			return models.NewValidationError(err.Error())
		}
		if err := validation.ValidateImageURL(in.ImageURL); err != nil {
			return models.NewValidationError(err.Error())
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return models.NewInternalError(err)
		}

		imageURL := in.ImageURL
		if imageURL == "" {
			imageURL = models.DefaultImageURL
		}
		candidate := &models.User{
			Username:       username,
			Email:          email,
			Password:       string(hash),
			ImageURL:       imageURL,
			HeaderImageURL: models.DefaultHeaderImageURL,
		}
		if err := s.users.Create(ctx, candidate); err != nil {
			return err
		}
		user = candidate

		s.obs.logger().InfoContext(ctx, "user signed up", slog.Uint64("user_id", uint64(user.ID)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when username and password match, and
// nil, nil when they do not. Errors are reserved for store faults.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.obs.run(ctx, "authenticate", func(ctx context.Context) error {
		found, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		if found == nil {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil
		}

		err = bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password))
		switch {
		case err == nil:
			user = found
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		default:
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obs.Metrics.RecordAuth(user != nil)
	if user == nil {
		s.obs.logger().InfoContext(ctx, "authentication failed")
	}
	return user, nil
}

// ChangePassword replaces the password of userID after re-checking the
// current one. A wrong current password is a ForbiddenError.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	return s.obs.run(ctx, "change_password", func(ctx context.Context) error {
		if err := validation.ValidatePassword(next); err != nil {
			return models.NewValidationError(err.Error())
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		authed, err := s.Authenticate(ctx, user.Username, current)
		if err != nil {
			return err
		}
		if authed == nil || authed.ID != userID {
			return models.NewForbiddenError("current password is incorrect")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
		if err != nil {
			return models.NewInternalError(err)
		}
		if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
			return err
		}

		s.obs.logger().InfoContext(ctx, "password changed", slog.Uint64("user_id", uint64(userID)))
		return nil
	})
}
