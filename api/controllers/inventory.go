package controllers

import (
	"net/http"
	"strings"

	"github.com/triplethreads/hubstock-backend/api/responses"
	"github.com/triplethreads/hubstock-backend/internal/inventory"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
)

func inventoryFilterFromQuery(r *http.Request) inventory.LineFilter {
	return inventory.LineFilter{
		Hub: strings.TrimSpace(r.URL.Query().Get("hub")),
		SKU: strings.TrimSpace(r.URL.Query().Get("sku")),
	}
}

// ListInventory returns the stock view scoped to the caller's hub access.
func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		lines, err := svc.List(r.Context(), actor, inventoryFilterFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// ListLowStock returns only the lines below the low-stock threshold.
func ListLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		lines, err := svc.LowStock(r.Context(), actor, inventoryFilterFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// ExportInventory streams the stock view as a CSV download.
func ExportInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		content, err := svc.ExportCSV(r.Context(), actor, inventoryFilterFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCSV(w, "inventory.csv", content)
	}
}
