package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/db"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/security"
	"gorm.io/gorm"
)

type userStore interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Service covers admin account management.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*UserDTO, error)
	List(ctx context.Context, actor auth.Actor) ([]UserDTO, error)
	Deactivate(ctx context.Context, actor auth.Actor, username string) error
}

// CreateInput describes a new account. HomeHub is required for the roles
// that hold stock and must be empty otherwise.
type CreateInput struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     enums.Role `json:"role"`
	HomeHub  string     `json:"home_hub"`
}

type service struct {
	repo        userStore
	passwordCfg config.PasswordConfig
}

// NewService wires the user management service.
func NewService(repo userStore, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*UserDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage accounts")
	}

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.HomeHub = strings.TrimSpace(input.HomeHub)

	if input.Username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if input.Role.HoldsStock() && input.HomeHub == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "home hub is required for hub accounts")
	}
	if !input.Role.HoldsStock() && input.HomeHub != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "home hub only applies to hub accounts")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
		HomeHub:      input.HomeHub,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken").
				WithDetails(map[string]any{"username": input.Username})
		}
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]UserDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage accounts")
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, 0, len(all))
	for i := range all {
		dtos = append(dtos, *FromModel(&all[i]))
	}
	return dtos, nil
}

// Deactivate disables an account instead of deleting it, keeping the
// username attached to its audit log history.
func (s *service) Deactivate(ctx context.Context, actor auth.Actor, username string) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage accounts")
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if username == actor.Username {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return err
	}
	return s.repo.SetActive(ctx, user.ID, false)
}
