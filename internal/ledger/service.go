package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records inventory movements and exposes the audit log.
type Service interface {
	ApplyMovement(ctx context.Context, actor auth.Actor, input MovementInput) (*models.LogEntry, error)
	ApplySignedAdjustment(ctx context.Context, actor auth.Actor, input AdjustmentInput) (*models.LogEntry, error)
	ApplyBatch(ctx context.Context, actor auth.Actor, lines []MovementInput) ([]BatchResult, error)
	ListLogs(ctx context.Context, actor auth.Actor, filter LogFilter) ([]models.LogEntry, error)
	ExportLogsCSV(ctx context.Context, actor auth.Actor, filter LogFilter) ([]byte, error)
}

// MovementInput is one stock movement against a single inventory line.
// Qty is always positive; Action carries the direction.
type MovementInput struct {
	SKU     string               `json:"sku"`
	Hub     string               `json:"hub"`
	Action  enums.MovementAction `json:"action"`
	Qty     int                  `json:"qty"`
	Comment string               `json:"comment"`
}

// AdjustmentInput is a signed stock correction; negative deltas remove stock.
type AdjustmentInput struct {
	SKU     string `json:"sku"`
	Hub     string `json:"hub"`
	Delta   int    `json:"delta"`
	Comment string `json:"comment"`
}

// BatchResult reports the outcome for one line of a bulk movement.
type BatchResult struct {
	SKU     string `json:"sku"`
	Hub     string `json:"hub"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires a ledger service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) ApplyMovement(ctx context.Context, actor auth.Actor, input MovementInput) (*models.LogEntry, error) {
	if err := normalizeMovement(&input); err != nil {
		return nil, err
	}
	if !actor.CanAccessHub(input.Hub) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
	}

	var entry *models.LogEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = Apply(ctx, s.repo.WithTx(tx), actor.Username, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ApplySignedAdjustment(ctx context.Context, actor auth.Actor, input AdjustmentInput) (*models.LogEntry, error) {
	// A zero delta is skipped outright: no quantity change, no log entry.
	if input.Delta == 0 {
		return nil, nil
	}

	movement := MovementInput{
		SKU:     input.SKU,
		Hub:     input.Hub,
		Action:  enums.MovementIn,
		Qty:     input.Delta,
		Comment: input.Comment,
	}
	if input.Delta < 0 {
		movement.Action = enums.MovementOut
		movement.Qty = -input.Delta
	}
	return s.ApplyMovement(ctx, actor, movement)
}

// ApplyBatch applies each line independently inside one transaction.
// Rejected lines (bad input, insufficient stock) are reported per line and
// do not abort the rest; only infrastructure failures roll everything back.
func (s *service) ApplyBatch(ctx context.Context, actor auth.Actor, lines []MovementInput) ([]BatchResult, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one movement line is required")
	}

	results := make([]BatchResult, 0, len(lines))
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, line := range lines {
			result := BatchResult{SKU: strings.TrimSpace(line.SKU), Hub: strings.TrimSpace(line.Hub)}

			if err := normalizeMovement(&line); err != nil {
				result.Reason = reasonFor(err)
				results = append(results, result)
				continue
			}
			if !actor.CanAccessHub(line.Hub) {
				result.Reason = "hub not accessible for this account"
				results = append(results, result)
				continue
			}

			if _, err := Apply(ctx, repo, actor.Username, line); err != nil {
				if typed := pkgerrors.As(err); typed != nil {
					result.Reason = reasonFor(err)
					results = append(results, result)
					continue
				}
				return err
			}

			result.Applied = true
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) ListLogs(ctx context.Context, actor auth.Actor, filter LogFilter) ([]models.LogEntry, error) {
	scoped, err := scopeLogFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLogs(ctx, scoped)
}

func (s *service) ExportLogsCSV(ctx context.Context, actor auth.Actor, filter LogFilter) ([]byte, error) {
	entries, err := s.ListLogs(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"timestamp", "actor", "sku", "hub", "action", "qty", "comment"}); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		record := []string{
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.Actor,
			entry.SKU,
			entry.Hub,
			string(entry.Action),
			strconv.Itoa(entry.Qty),
			entry.Comment,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Apply performs the guarded quantity update and pairs it with the audit
// entry against the given repository. Callers orchestrating multi-step
// flows (shipment receipt) pass a tx-bound repository so the movement
// commits or rolls back with the rest of their work.
func Apply(ctx context.Context, repo Repository, actor string, input MovementInput) (*models.LogEntry, error) {
	if err := normalizeMovement(&input); err != nil {
		return nil, err
	}
	delta := input.Qty * input.Action.Sign()

	updated, err := repo.ApplyDelta(ctx, input.SKU, input.Hub, delta)
	if err != nil {
		return nil, err
	}

	if !updated {
		_, lookupErr := repo.GetLine(ctx, input.SKU, input.Hub)
		switch {
		case lookupErr == nil:
			// Line exists, so the negative-stock guard rejected the update.
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock on hand").
				WithDetails(map[string]any{"sku": input.SKU, "hub": input.Hub, "requested": input.Qty})
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			if delta < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock on hand").
					WithDetails(map[string]any{"sku": input.SKU, "hub": input.Hub, "requested": input.Qty})
			}
			if err := repo.CreateLine(ctx, &models.InventoryLine{
				SKU:      input.SKU,
				Hub:      input.Hub,
				Quantity: delta,
			}); err != nil {
				return nil, err
			}
		default:
			return nil, lookupErr
		}
	}

	entry := &models.LogEntry{
		Actor:   actor,
		SKU:     input.SKU,
		Hub:     input.Hub,
		Action:  input.Action,
		Qty:     input.Qty,
		Comment: input.Comment,
	}
	if err := repo.InsertLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func normalizeMovement(input *MovementInput) error {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Hub = strings.TrimSpace(input.Hub)
	input.Comment = strings.TrimSpace(input.Comment)

	if input.SKU == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Hub == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "hub is required")
	}
	if !input.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid action %q", input.Action))
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}
	return nil
}

func scopeLogFilter(actor auth.Actor, filter LogFilter) (LogFilter, error) {
	if actor.IsAdmin() {
		return filter, nil
	}
	if !actor.Role.HoldsStock() {
		return LogFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "audit log not accessible for this account")
	}
	if filter.Hub != "" && filter.Hub != actor.HomeHub {
		return LogFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
	}
	filter.Hub = actor.HomeHub
	return filter, nil
}

func reasonFor(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
