package middleware

import (
	"net/http"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tenants"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

// TenantContext resolves the request host to a tenant and seeds the
// context with it. Requests for suspended tenants are rejected.
func TenantContext(svc tenants.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if svc == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant, err := svc.ResolveHost(r.Context(), r.Host)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if tenant.Status == enums.TenantStatusSuspended {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant is suspended"))
				return
			}

			ctx := WithTenant(r.Context(), tenant)
			if logg != nil {
				ctx = logg.WithField(ctx, "tenant", tenant.Slug)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
