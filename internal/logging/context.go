package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "site.logging.fields"

// Well-known context field names.
const (
	FieldRequestID = "request_id"
	FieldActor     = "actor"
)

// ContextWithFields returns a context carrying logging fields merged over any
// fields already present.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithRequestID stores the request id used to correlate entries.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{FieldRequestID: id})
}

// ContextWithActor stores the admin or submitter acting on a request.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{FieldActor: actor})
}
