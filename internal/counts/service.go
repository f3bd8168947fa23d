package counts

import (
	"context"
	"fmt"
	"time"

	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
)

// Service records and surfaces physical count confirmations.
type Service interface {
	Confirm(ctx context.Context, actor auth.Actor) (*models.CountConfirmation, error)
	List(ctx context.Context, actor auth.Actor, filter Filter) ([]models.CountConfirmation, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the counts service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("counts repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Confirm records that the actor finished a physical count at their home
// hub. Repeat confirmations are intentional: each one is a fresh attestation.
func (s *service) Confirm(ctx context.Context, actor auth.Actor) (*models.CountConfirmation, error) {
	if !actor.Role.HoldsStock() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only hub accounts confirm counts")
	}
	if actor.HomeHub == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account has no home hub")
	}

	confirmation := &models.CountConfirmation{
		Username:    actor.Username,
		Hub:         actor.HomeHub,
		ConfirmedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, confirmation); err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) ([]models.CountConfirmation, error) {
	switch {
	case actor.IsAdmin():
		// Admins see every hub.
	case actor.Role.HoldsStock():
		if filter.Hub != "" && filter.Hub != actor.HomeHub {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
		}
		filter.Hub = actor.HomeHub
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "count confirmations not accessible for this account")
	}
	return s.repo.List(ctx, filter)
}
