package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/triplethreads/hubstock-backend/api/responses"
	"github.com/triplethreads/hubstock-backend/internal/counts"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
)

// ConfirmCount records that the caller's hub finished a physical count.
func ConfirmCount(svc counts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "counts service unavailable"))
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		confirmation, err := svc.Confirm(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

// ListCounts returns count confirmations scoped to the caller's hub access.
func ListCounts(svc counts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "counts service unavailable"))
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		filter := counts.Filter{
			Hub:      strings.TrimSpace(r.URL.Query().Get("hub")),
			Username: strings.TrimSpace(r.URL.Query().Get("username")),
		}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			filter.Limit = value
		}

		result, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
