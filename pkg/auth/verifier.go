// Package auth verifies bearer tokens issued by the identity provider and guards the admin API.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

type fetchFunc func(ctx context.Context, url string) (jwk.Set, error)

func fetchJWKS(ctx context.Context, url string) (jwk.Set, error) {
	return jwk.Fetch(ctx, url)
}

// JWTVerifier checks token signatures against the identity provider's JWKS.
// The key set is refetched at most once per minInterval, whether or not the fetch succeeds.
// A failed refetch keeps serving the last good set.
type JWTVerifier struct {
	jwksURL     string
	issuer      string
	clientID    string
	minInterval time.Duration
	fetch       fetchFunc
	now         func() time.Time

	mu        sync.RWMutex
	keys      jwk.Set
	fetchedAt time.Time
}

// NewJWTVerifier fetches the key set once so that a wrong JWKS URL fails at start-up.
func NewJWTVerifier(ctx context.Context, cfg config.IdP) (*JWTVerifier, error) {
	return newJWTVerifier(ctx, cfg, fetchJWKS, time.Now)
}

func newJWTVerifier(ctx context.Context, cfg config.IdP, fetch fetchFunc, now func() time.Time) (*JWTVerifier, error) {
	v := &JWTVerifier{
		jwksURL:     cfg.JwksURL,
		issuer:      cfg.Issuer,
		clientID:    cfg.ClientID,
		minInterval: cfg.MinInterval,
		fetch:       fetch,
		now:         now,
	}
	if _, err := v.keySet(ctx); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch failed: %w", err)
	}
	return v, nil
}

func (v *JWTVerifier) fresh() (jwk.Set, bool) {
	if v.keys == nil || v.now().Sub(v.fetchedAt) >= v.minInterval {
		return nil, false
	}
	return v.keys, true
}

func (v *JWTVerifier) keySet(ctx context.Context) (jwk.Set, error) {
	v.mu.RLock()
	set, ok := v.fresh()
	v.mu.RUnlock()
	if ok {
		return set, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// another caller may have refreshed while we waited
	if set, ok := v.fresh(); ok {
		return set, nil
	}
	set, err := v.fetch(ctx, v.jwksURL)
	if err != nil {
		if v.keys != nil {
			// retry after the next interval, not on every request
			v.fetchedAt = v.now()
			return v.keys, nil
		}
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", v.jwksURL, err)
	}
	v.keys = set
	v.fetchedAt = v.now()
	return set, nil
}

// Verify parses tokenString and checks its signature, lifetime, issuer and authorized party.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	set, err := v.keySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyset for verification: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithClaimValue("azp", v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return token, nil
}
