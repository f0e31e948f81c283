package web

import "context"

type claimsKey struct{}

// Principal is the authenticated caller of an admin request.
type Principal struct {
	Subject string
	Email   string
}

// WithPrincipal adds the authenticated principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, claimsKey{}, p)
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns the principal and a boolean indicating whether it was found.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(claimsKey{}).(Principal)
	return p, ok
}
