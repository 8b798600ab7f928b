package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
	ctxDomain
)

func WithIdentity(ctx context.Context, userID, role string, domain TokenDomain) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	ctx = context.WithValue(ctx, ctxDomain, domain)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}

func Domain(ctx context.Context) (TokenDomain, error) {
	v := ctx.Value(ctxDomain)
	if d, ok := v.(TokenDomain); ok && d != "" {
		return d, nil
	}
	return "", errors.New("domain not in context")
}
