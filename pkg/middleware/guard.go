package middleware

import (
	"context"
	"net/http"
	"strings"

	"tenantgate/pkg/metrics"
	"tenantgate/pkg/problems"
	"tenantgate/pkg/token"
)

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(raw string) (token.Identity, error)
}

// Guard admits requests that carry a valid bearer token. The tenant's disabled
// flag is not re-checked: a token stays valid until it expires.
type Guard struct {
	verifier Verifier
	render   *problems.Renderer
}

// NewGuard builds a guard; rejections are logged by render.
func NewGuard(v Verifier, render *problems.Renderer) *Guard {
	return &Guard{verifier: v, render: render}
}

// Authorize extracts and verifies the token in an Authorization header value.
// Every failure is problems.ErrUnauthorized.
func (g *Guard) Authorize(header string) (token.Identity, error) {
	raw, ok := bearer(header)
	if !ok {
		return token.Identity{}, problems.ErrUnauthorized
	}
	return g.verifier.Verify(raw)
}

func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authorize(r.Header.Get("Authorization"))
		if err != nil {
			metrics.AuthorizationsTotal.WithLabelValues("rejected").Inc()
			g.render.Write(w, r, err)
			return
		}
		metrics.AuthorizationsTotal.WithLabelValues("accepted").Inc()
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id token.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom returns the identity stored by Guard.Handler.
func IdentityFrom(ctx context.Context) (token.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(token.Identity)
	return id, ok
}
