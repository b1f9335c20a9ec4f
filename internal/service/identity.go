package service

import "context"

// IdentityResolver maps the caller of a request to a user id.
type IdentityResolver interface {
	CurrentUserID(ctx context.Context) (uint, error)
}

type userIDKey struct{}

// WithUserID records the authenticated user on ctx.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user recorded by WithUserID.
func UserIDFromContext(ctx context.Context) (uint, error) {
	id, ok := ctx.Value(userIDKey{}).(uint)
	if !ok || id == 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// ContextIdentity resolves the user previously attached with WithUserID.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (uint, error) {
	return UserIDFromContext(ctx)
}
