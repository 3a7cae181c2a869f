package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/stars"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type earnStarsRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Amount int       `json:"amount" validate:"required,gt=0"`
	Reason string    `json:"reason" validate:"required"`
}

type spendStarsRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int       `json:"amount" validate:"required,gt=0"`
	Reason string    `json:"reason" validate:"required"`
}

// StarEarn awards stars to a user.
func StarEarn(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body earnStarsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Earn(r.Context(), middleware.ActorFromContext(r.Context()), stars.EarnInput{
			UserID: body.UserID,
			Amount: body.Amount,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// StarSpend redeems stars. Without a user id the caller spends their own.
func StarSpend(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body spendStarsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Spend(r.Context(), middleware.ActorFromContext(r.Context()), stars.SpendInput{
			UserID: body.UserID,
			Amount: body.Amount,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// StarReset zeroes every account portal-wide. Admin only.
func StarReset(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ResetAll(r.Context(), middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reset"})
	}
}

// StarAccount returns one user's balance. The user defaults to the caller.
func StarAccount(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
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

		account, err := svc.Account(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// StarTeamAccounts lists balances for a team, decorated with directory
// details. Management roles only.
func StarTeamAccounts(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.TeamAccounts(r.Context(), middleware.ActorFromContext(r.Context()), r.URL.Query().Get("team_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accounts)
	}
}

// StarHistory returns one user's ledger entries, newest first.
func StarHistory(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
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

		history, err := svc.History(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// StarTeamHistory returns a team's ledger including reset markers.
// Management roles only.
func StarTeamHistory(svc stars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := svc.TeamHistory(r.Context(), middleware.ActorFromContext(r.Context()), r.URL.Query().Get("team_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
