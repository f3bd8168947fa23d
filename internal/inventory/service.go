package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/triplethreads/hubstock-backend/pkg/auth"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
)

// StockStatus labels a line against the low-stock threshold.
type StockStatus string

const (
	StockStatusOK  StockStatus = "OK"
	StockStatusLow StockStatus = "Low"
)

// Line is one inventory view row with its stock status attached.
type Line struct {
	ViewRow
	Status StockStatus `json:"status"`
}

// Service exposes role-scoped inventory views.
type Service interface {
	List(ctx context.Context, actor auth.Actor, filter LineFilter) ([]Line, error)
	LowStock(ctx context.Context, actor auth.Actor, filter LineFilter) ([]Line, error)
	ExportCSV(ctx context.Context, actor auth.Actor, filter LineFilter) ([]byte, error)
}

type service struct {
	repo      Repository
	threshold int
}

// NewService wires the inventory view service. Lines strictly below the
// threshold are flagged Low.
func NewService(repo Repository, lowStockThreshold int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if lowStockThreshold <= 0 {
		return nil, fmt.Errorf("low stock threshold must be positive")
	}
	return &service{repo: repo, threshold: lowStockThreshold}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter LineFilter) ([]Line, error) {
	scoped, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListView(ctx, scoped)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, Line{ViewRow: row, Status: s.statusFor(row.Quantity)})
	}
	return lines, nil
}

func (s *service) LowStock(ctx context.Context, actor auth.Actor, filter LineFilter) ([]Line, error) {
	lines, err := s.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	low := make([]Line, 0)
	for _, line := range lines {
		if line.Status == StockStatusLow {
			low = append(low, line)
		}
	}
	return low, nil
}

func (s *service) ExportCSV(ctx context.Context, actor auth.Actor, filter LineFilter) ([]byte, error) {
	lines, err := s.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"sku", "product_name", "hub", "quantity", "status"}); err != nil {
		return nil, err
	}
	for _, line := range lines {
		record := []string{
			line.SKU,
			line.ProductName,
			line.Hub,
			strconv.Itoa(line.Quantity),
			string(line.Status),
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

func (s *service) statusFor(quantity int) StockStatus {
	if quantity < s.threshold {
		return StockStatusLow
	}
	return StockStatusOK
}

func scopeFilter(actor auth.Actor, filter LineFilter) (LineFilter, error) {
	if actor.IsAdmin() {
		return filter, nil
	}
	if !actor.Role.HoldsStock() {
		return LineFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "inventory not accessible for this account")
	}
	if filter.Hub != "" && filter.Hub != actor.HomeHub {
		return LineFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "hub not accessible for this account")
	}
	filter.Hub = actor.HomeHub
	return filter, nil
}
