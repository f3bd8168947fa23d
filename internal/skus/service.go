package skus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the SKU catalog.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*models.SkuInfo, error)
	AssignHubs(ctx context.Context, actor auth.Actor, sku string, hubs []string) (*models.SkuInfo, error)
	ImportCSV(ctx context.Context, actor auth.Actor, reader io.Reader) (*ImportResult, error)
	List(ctx context.Context, actor auth.Actor) ([]models.SkuInfo, error)
	ListForHub(ctx context.Context, actor auth.Actor, hub string) ([]models.SkuInfo, error)
}

// CreateInput describes a new catalog entry.
type CreateInput struct {
	SKU          string   `json:"sku"`
	ProductName  string   `json:"product_name"`
	AssignedHubs []string `json:"assigned_hubs"`
}

// ImportResult summarizes a CSV catalog import. Rows that fail validation
// are reported and skipped; valid rows still land.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires the SKU service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sku repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*models.SkuInfo, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage the catalog")
	}

	input.SKU = strings.TrimSpace(input.SKU)
	input.ProductName = strings.TrimSpace(input.ProductName)
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.ProductName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	info := &models.SkuInfo{SKU: input.SKU, ProductName: input.ProductName}
	info.SetHubList(input.AssignedHubs)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, info); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists").
					WithDetails(map[string]any{"sku": info.SKU})
			}
			return err
		}
		return ensureLines(ctx, repo, info)
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *service) AssignHubs(ctx context.Context, actor auth.Actor, sku string, hubs []string) (*models.SkuInfo, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage the catalog")
	}

	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	var info *models.SkuInfo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
			}
			return err
		}

		found.SetHubList(hubs)
		if err := repo.Save(ctx, found); err != nil {
			return err
		}
		if err := ensureLines(ctx, repo, found); err != nil {
			return err
		}
		info = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ImportCSV loads catalog rows from "sku,product_name,assigned_hubs" data.
// The assigned_hubs cell is semicolon-separated since the record itself is
// comma-delimited. Existing SKUs are updated in place.
func (s *service) ImportCSV(ctx context.Context, actor auth.Actor, reader io.Reader) (*ImportResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage the catalog")
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv is empty")
	}

	start := 0
	if strings.EqualFold(strings.TrimSpace(records[0][0]), "sku") {
		start = 1
	}

	result := &ImportResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := start; i < len(records); i++ {
			record := records[i]
			if len(record) < 2 {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: expected at least sku and product_name", i+1))
				continue
			}

			sku := strings.TrimSpace(record[0])
			productName := strings.TrimSpace(record[1])
			if sku == "" || productName == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: sku and product_name are required", i+1))
				continue
			}

			var hubs []string
			if len(record) > 2 {
				hubs = strings.Split(record[2], ";")
			}

			existing, err := repo.FindBySKU(ctx, sku)
			switch {
			case err == nil:
				existing.ProductName = productName
				if len(hubs) > 0 {
					existing.SetHubList(hubs)
				}
				if err := repo.Save(ctx, existing); err != nil {
					return err
				}
				if err := ensureLines(ctx, repo, existing); err != nil {
					return err
				}
				result.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				info := &models.SkuInfo{SKU: sku, ProductName: productName}
				info.SetHubList(hubs)
				if err := repo.Create(ctx, info); err != nil {
					return err
				}
				if err := ensureLines(ctx, repo, info); err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]models.SkuInfo, error) {
	return s.repo.List(ctx)
}

// ListForHub returns the catalog entries assigned to one hub. Hub-bound
// roles only see their own hub's slice of the catalog.
func (s *service) ListForHub(ctx context.Context, actor auth.Actor, hub string) ([]models.SkuInfo, error) {
	hub = strings.TrimSpace(hub)
	if hub == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hub is required")
	}
	if !actor.CanAccessHub(hub) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	assigned := make([]models.SkuInfo, 0)
	for _, info := range all {
		for _, candidate := range info.HubList() {
			if candidate == hub {
				assigned = append(assigned, info)
				break
			}
		}
	}
	return assigned, nil
}

func ensureLines(ctx context.Context, repo Repository, info *models.SkuInfo) error {
	for _, hub := range info.HubList() {
		if err := repo.EnsureLine(ctx, info.SKU, hub); err != nil {
			return err
		}
	}
	return nil
}
