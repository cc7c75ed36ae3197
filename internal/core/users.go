package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"health-tracker/pkg"
)

// UserStore is the persistence contract for accounts and profiles.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (*pkg.User, error)
	GetUserByEmail(ctx context.Context, email string) (*pkg.User, error)
	TouchLastLogin(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (*pkg.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, p *pkg.Profile) error
}

// UserService covers registration, authentication and profile maintenance.
type UserService struct {
	store UserStore
	log   *zap.Logger
}

func NewUserService(store UserStore, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// Register creates an account with a bcrypt-hashed password. A duplicate
// email surfaces as pkg.ErrEmailTaken so the caller can present an
// actionable message; the store keeps exactly one row per email.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*pkg.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, email, string(hash), fullName)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Authenticate verifies the password and refreshes last_login. Both unknown
// email and wrong password map to pkg.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*pkg.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, pkg.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, pkg.ErrInvalidCredentials
	}
	if err := s.store.TouchLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to update last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*pkg.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, p *pkg.Profile) error {
	return s.store.UpdateProfile(ctx, userID, p)
}
