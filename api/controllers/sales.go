package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/sales"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type logSaleRequest struct {
	SalesCount  int       `json:"sales_count" validate:"required,gt=0"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
}

type adminLogSaleRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	SalesCount  int       `json:"sales_count" validate:"required,gt=0"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
}

type updateSaleRequest struct {
	SalesCount  *int       `json:"sales_count" validate:"omitempty,gt=0"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Type        *string    `json:"type"`
}

// SaleLog records the caller's own sale and runs bonus detection. The
// response includes the new total and any bonus alert deliveries.
func SaleLog(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body logSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Log(r.Context(), middleware.ActorFromContext(r.Context()), sales.LogInput{
			SalesCount:  body.SalesCount,
			Description: body.Description,
			Date:        body.Date,
			Type:        enums.SaleType(body.Type),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SaleAdminLog records a sale on behalf of any user without bonus
// detection. Admin only.
func SaleAdminLog(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminLogSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AdminLog(r.Context(), middleware.ActorFromContext(r.Context()), sales.AdminLogInput{
			UserID:      body.UserID,
			SalesCount:  body.SalesCount,
			Description: body.Description,
			Date:        body.Date,
			Type:        enums.SaleType(body.Type),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func SaleUpdate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := sales.UpdateInput{
			SalesCount:  body.SalesCount,
			Description: body.Description,
			Date:        body.Date,
		}
		if body.Type != nil {
			saleType := enums.SaleType(*body.Type)
			input.Type = &saleType
		}

		record, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func SaleDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SalesByUser returns a user's records and aggregate stats. The user
// defaults to the caller.
func SalesByUser(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		userID := actor.ID
		if raw := chi.URLParam(r, "userId"); raw != "" {
			parsed, err := validators.ParsePathUUID(raw, "userId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			userID = parsed
		}

		result, err := svc.ByUser(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SalesAll lists every record across the portal. Admin only.
func SalesAll(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.All(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// SalesByDateRange lists records between the start and end dates,
// inclusive. Management roles only.
func SalesByDateRange(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.ParseQueryDate(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ByDateRange(r.Context(), middleware.ActorFromContext(r.Context()), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// SalesLeaderboard ranks sales staff by lifetime totals.
func SalesLeaderboard(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Leaderboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
