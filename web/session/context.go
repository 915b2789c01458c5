package session

import "context"

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	val, ok := ctx.Value(identityCtxKey{}).(Identity)
	return val, ok
}
