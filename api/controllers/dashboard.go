package controllers

import (
	"net/http"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/dashboard"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

// DashboardRecentActivities returns the caller's activity feed.
func DashboardRecentActivities(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		days, err := validators.ParseQueryInt(r, "days", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feed, err := svc.RecentActivities(r.Context(), middleware.ActorFromContext(r.Context()), dashboard.ActivityQuery{
			Limit: limit,
			Days:  days,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

// DashboardSummary returns today/this-week/this-month activity counts.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.ActivitySummary(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// DashboardClear hides the caller's feed until reset.
func DashboardClear(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearActivities(r.Context(), middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// DashboardReset restores the caller's feed.
func DashboardReset(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ResetActivities(r.Context(), middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reset"})
	}
}
