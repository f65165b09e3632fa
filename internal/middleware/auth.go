package middleware

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// callerKey is the context key for the *Caller of the current RPC.
const callerKey contextKey = "caller"

// Caller is the authenticated identity behind an RPC.
type Caller struct {
	UserID string
	Email  string
}

func callerFrom(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey).(*Caller)
	return c
}

// withCaller returns ctx with an empty Caller slot, or ctx itself if one
// is already present. Outer interceptors reserve the slot so they can see
// the identity RequireAuth fills in further down the chain.
func withCaller(ctx context.Context) (context.Context, *Caller) {
	if c := callerFrom(ctx); c != nil {
		return ctx, c
	}
	c := &Caller{}
	return context.WithValue(ctx, callerKey, c), c
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if c := callerFrom(ctx); c != nil {
		return c.UserID
	}
	return ""
}

// RequireAuth validates the bearer token on every RPC and records the
// caller's identity in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := auth.BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx, caller := withCaller(ctx)
			caller.UserID = claims.UserID
			caller.Email = claims.Email
			return next(ctx, req)
		}
	}
}
