package utils

import (
	"context"
)

type contextKey string

const (
	ContextKeyOrganizationId contextKey = "organization_id"
	ContextKeyCorrelationId  contextKey = "correlation_id"
)

func GetOrganizationIdFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyOrganizationId).(string)
	return v, ok && v != ""
}

func SetOrganizationIdInContext(ctx context.Context, organizationId string) context.Context {
	return context.WithValue(ctx, ContextKeyOrganizationId, organizationId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyCorrelationId).(string)
	return v, ok && v != ""
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationId, correlationId)
}
