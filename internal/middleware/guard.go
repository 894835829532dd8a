package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gobwas/glob"

	"github.com/stz7750/next-chat-app/internal/logger"
	"github.com/stz7750/next-chat-app/internal/session"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Verifier is the slice of the session issuer the guard needs.
type Verifier interface {
	Verify(token string) (*session.Claims, error)
}

// RevocationChecker reports whether a token has been signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// RouteGuard gates every request whose path matches a configured
// pattern. Matching requests either carry a valid session and pass
// through, or get a soft redirect to the sign-in surface. Paths
// outside the pattern set bypass the guard entirely.
type RouteGuard struct {
	patterns   []compiledPattern
	signInPath string
	verifier   Verifier
	revoker    RevocationChecker // may be nil
}

// NewRouteGuard compiles the protected-path patterns. revoker may be
// nil, in which case sign-out revocation is not checked.
func NewRouteGuard(
	patterns []string,
	signInPath string,
	verifier Verifier,
	revoker RevocationChecker,
) (*RouteGuard, error) {

	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("middleware: invalid protected path pattern %q: %w", p, err)
		}
		compiled = append(compiled, compiledPattern{pattern: p, glob: g})
	}

	return &RouteGuard{
		patterns:   compiled,
		signInPath: signInPath,
		verifier:   verifier,
		revoker:    revoker,
	}, nil
}

// Protected reports whether the path falls under the guard at all.
func (g *RouteGuard) Protected(path string) bool {
	for _, p := range g.patterns {
		if p.glob.Match(path) {
			return true
		}
	}
	return false
}

// Handler wraps next with the guard. The guard never mutates the
// session token; its only externally visible failure behavior is the
// redirect.
func (g *RouteGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Protected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := g.check(r)
		if !ok {
			http.Redirect(w, r, g.signInPath, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *RouteGuard) check(r *http.Request) (*session.Claims, bool) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := g.verifier.Verify(cookie.Value)
	if err != nil {
		// Expired vs invalid matters for diagnostics only; the
		// caller sees the same redirect either way.
		logger.Info("session rejected", map[string]any{
			"path":   r.URL.Path,
			"reason": err.Error(),
		})
		return nil, false
	}

	if g.revoker != nil {
		revoked, err := g.revoker.IsRevoked(r.Context(), claims.TokenID)
		if err != nil || revoked {
			return nil, false
		}
	}

	return claims, true
}
