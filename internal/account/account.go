// Package account registers shoppers and issues their access tokens.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/hash"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/Skotchmaster/silkroad/pkg/tokens"
)

const (
	minPasswordLen = 8
	accessTTL      = 15 * time.Minute
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	User        *models.User
}

// Register stores a new shopper and opens their first cart in the same transaction.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		l.Warn("register_error", "status", 400, "reason", "bad email")
		return nil, fmt.Errorf("email %q: %w", req.Email, domain.ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		l.Warn("register_error", "status", 400, "reason", "short password")
		return nil, fmt.Errorf("password shorter than %d characters: %w", minPasswordLen, domain.ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Address:      strings.TrimSpace(req.Address),
		Role:         models.RoleUser,
		Active:       true,
	}
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		_, err := cart.Open(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			l.Warn("register_error", "status", 409, "reason", "email taken")
		} else {
			l.Error("register_error", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(accessTTL)
	token, err := tokens.NewAccessToken(s.JWTSecret, strconv.FormatUint(uint64(user.ID), 10), user.Role, exp)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{AccessToken: token, AccessExp: exp, User: user}, nil
}

func (s *Service) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.GetUser(ctx, userID)
}

// Deactivate retires the account and its carts. Orders are kept.
func (s *Service) Deactivate(ctx context.Context, userID uint) error {
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.SetUserActive(ctx, userID, false); err != nil {
			return err
		}
		_, err := tx.DeactivateCarts(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("user_deactivated", "svc", "account.deactivate", "user_id", userID)
	return nil
}

func (s *Service) GrantAdmin(ctx context.Context, userID uint) error {
	if err := s.Repo.SetUserRole(ctx, userID, models.RoleAdmin); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("admin_granted", "svc", "account.grant_admin", "user_id", userID)
	return nil
}
