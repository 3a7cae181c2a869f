package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tenants"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type createTenantRequest struct {
	Name         string          `json:"name" validate:"required"`
	Domain       string          `json:"domain" validate:"required"`
	Subdomain    string          `json:"subdomain"`
	CustomDomain *string         `json:"custom_domain"`
	Theme        json.RawMessage `json:"theme"`
	Features     json.RawMessage `json:"features"`
	Settings     json.RawMessage `json:"settings"`
}

type updateTenantRequest struct {
	Name         *string         `json:"name" validate:"omitempty,min=1"`
	CustomDomain *string         `json:"custom_domain"`
	Theme        json.RawMessage `json:"theme"`
	Features     json.RawMessage `json:"features"`
	Settings     json.RawMessage `json:"settings"`
	Status       *string         `json:"status"`
}

// TenantCurrent returns the tenant resolved from the request host. This is
// the branding endpoint the frontend loads before login.
func TenantCurrent(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.TenantFromContext(r.Context())
		if tenant == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no tenant for host"))
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

// TenantCheckDomain reports whether a domain is free to claim.
func TenantCheckDomain(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available, err := svc.DomainAvailable(r.Context(), r.URL.Query().Get("domain"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"available": available})
	}
}

func TenantList(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func TenantGet(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

func TenantCreate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTenantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), tenants.CreateInput{
			Name:         body.Name,
			Domain:       body.Domain,
			Subdomain:    body.Subdomain,
			CustomDomain: body.CustomDomain,
			Theme:        body.Theme,
			Features:     body.Features,
			Settings:     body.Settings,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tenant)
	}
}

func TenantUpdate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTenantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tenants.UpdateInput{
			Name:         body.Name,
			CustomDomain: body.CustomDomain,
			Theme:        body.Theme,
			Features:     body.Features,
			Settings:     body.Settings,
		}
		if body.Status != nil {
			status := enums.TenantStatus(*body.Status)
			input.Status = &status
		}

		tenant, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

func TenantDelete(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
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
