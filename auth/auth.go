package auth

import (
	"context"

	"github.com/germplasm-hub/data-api/types"
)

type contextKey struct {
	name string
}

var userKey = &contextKey{"user"}

// WithContextUser attaches the resolved caller to the request context.
func WithContextUser(ctx context.Context, user *types.UserAuth) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userKey, user)
}

// ContextUser returns the caller attached to the context, or nil for an
// unresolved caller.
func ContextUser(ctx context.Context) *types.UserAuth {
	if ctx != nil {
		if user, ok := ctx.Value(userKey).(*types.UserAuth); ok {
			return user
		}
	}
	return nil
}
