package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/triplethreads/hubstock-backend/internal/ledger"
	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers the supplier shipment lifecycle.
type Service interface {
	Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (*models.Shipment, error)
	List(ctx context.Context, actor auth.Actor, filter Filter) ([]models.Shipment, error)
	Receive(ctx context.Context, actor auth.Actor, id uint) (*Receipt, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
}

// SubmitInput captures a new shipment. Lines are structured on the way in
// and frozen into the legacy manifest encoding on write.
type SubmitInput struct {
	Tracking string         `json:"tracking"`
	Carrier  string         `json:"carrier"`
	Hub      string         `json:"hub"`
	Lines    []ManifestLine `json:"lines"`
	ShipDate time.Time      `json:"ship_date"`
}

// Receipt reports what a receive() applied.
type Receipt struct {
	Shipment *models.Shipment `json:"shipment"`
	Lines    []ManifestLine   `json:"lines"`
}

type service struct {
	tx         txRunner
	repo       Repository
	ledgerRepo ledger.Repository
	logg       *logger.Logger
}

// NewService wires the shipments service with the provided dependencies.
func NewService(tx txRunner, repo Repository, ledgerRepo ledger.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, ledgerRepo: ledgerRepo, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (*models.Shipment, error) {
	if actor.Role != enums.RoleSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only suppliers submit shipments")
	}

	input.Tracking = strings.TrimSpace(input.Tracking)
	input.Carrier = strings.TrimSpace(input.Carrier)
	input.Hub = strings.TrimSpace(input.Hub)

	if input.Tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}
	if input.Carrier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier is required")
	}
	if input.Hub == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination hub is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one manifest line is required")
	}
	for i := range input.Lines {
		input.Lines[i].SKU = strings.TrimSpace(input.Lines[i].SKU)
		if input.Lines[i].SKU == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "manifest line sku is required")
		}
		if input.Lines[i].Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "manifest line qty must be positive")
		}
	}
	if input.ShipDate.IsZero() {
		input.ShipDate = time.Now().UTC()
	}

	shipment := &models.Shipment{
		Supplier: actor.Username,
		Tracking: input.Tracking,
		Carrier:  input.Carrier,
		Hub:      input.Hub,
		Manifest: EncodeManifest(input.Lines),
		ShipDate: input.ShipDate,
		Status:   enums.ShipmentStatusPending,
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"shipment_id": shipment.ID,
		"hub":         shipment.Hub,
		"lines":       len(input.Lines),
	}), "shipment submitted")
	return shipment, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) ([]models.Shipment, error) {
	switch {
	case actor.IsAdmin():
		// Admins see everything the filter asks for.
	case actor.Role == enums.RoleSupplier:
		filter.Supplier = actor.Username
	case actor.Role.HoldsStock():
		if filter.Hub != "" && filter.Hub != actor.HomeHub {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
		}
		filter.Hub = actor.HomeHub
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shipments not accessible for this account")
	}
	return s.repo.List(ctx, filter)
}

// Receive transitions a pending shipment to Received and applies an IN
// movement per manifest line at the destination hub. The status flip and
// the ledger writes share one transaction.
func (s *service) Receive(ctx context.Context, actor auth.Actor, id uint) (*Receipt, error) {
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerRepo := s.ledgerRepo.WithTx(tx)

		shipment, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return err
		}

		if err := canReceive(actor, shipment); err != nil {
			return err
		}

		flipped, err := repo.TransitionFromPending(ctx, id, enums.ShipmentStatusReceived)
		if err != nil {
			return err
		}
		if !flipped {
			return notPendingError(ctx, repo, id, shipment.Status)
		}

		lines := ParseManifest(shipment.Manifest)
		if len(lines) == 0 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"shipment_id": shipment.ID,
			}), "received shipment with empty manifest, no inventory effect")
		}

		comment := fmt.Sprintf("Shipment %d", shipment.ID)
		for _, line := range lines {
			if _, err := ledger.Apply(ctx, ledgerRepo, actor.Username, ledger.MovementInput{
				SKU:     line.SKU,
				Hub:     shipment.Hub,
				Action:  enums.MovementIn,
				Qty:     line.Qty,
				Comment: comment,
			}); err != nil {
				return err
			}
		}

		shipment.Status = enums.ShipmentStatusReceived
		receipt = &Receipt{Shipment: shipment, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shipment, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return err
		}

		if !actor.IsAdmin() && !(actor.Role == enums.RoleSupplier && actor.Username == shipment.Supplier) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "shipment not deletable by this account")
		}

		flipped, err := repo.TransitionFromPending(ctx, id, enums.ShipmentStatusDeleted)
		if err != nil {
			return err
		}
		if !flipped {
			return notPendingError(ctx, repo, id, shipment.Status)
		}
		return nil
	})
}

// notPendingError reports a failed Pending guard. The row is re-read so the
// status detail reflects what actually blocked the transition, not the
// snapshot taken before a racing update landed.
func notPendingError(ctx context.Context, repo Repository, id uint, fallback enums.ShipmentStatus) error {
	status := fallback
	if current, err := repo.FindByID(ctx, id); err == nil {
		status = current.Status
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is not pending").
		WithDetails(map[string]any{"status": status})
}

func canReceive(actor auth.Actor, shipment *models.Shipment) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == enums.RoleHubManager && actor.HomeHub == shipment.Hub {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "shipment not receivable by this account")
}
