package middleware

import (
	"context"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

type contextKey string

const (
	ctxActor  contextKey = "actor"
	ctxTenant contextKey = "tenant"
)

// ActorFromContext returns the authenticated caller seeded by Auth. The
// zero Actor means the request was not authenticated.
func ActorFromContext(ctx context.Context) types.Actor {
	if ctx == nil {
		return types.Actor{}
	}
	if actor, ok := ctx.Value(ctxActor).(types.Actor); ok {
		return actor
	}
	return types.Actor{}
}

// WithActor injects the caller into the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// TenantFromContext returns the tenant resolved from the request host.
func TenantFromContext(ctx context.Context) *models.Tenant {
	if ctx == nil {
		return nil
	}
	if tenant, ok := ctx.Value(ctxTenant).(*models.Tenant); ok {
		return tenant
	}
	return nil
}

// WithTenant injects the resolved tenant into the context.
func WithTenant(ctx context.Context, tenant *models.Tenant) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, tenant)
}
