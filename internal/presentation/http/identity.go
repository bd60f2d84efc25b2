package httppresentation

import (
	"context"
	"net/http"

	"github.com/storeprime/backend/internal/domain/account"
)

// The authentication layer in front of this service resolves credentials
// into an account identity and forwards it in these headers. The core
// trusts the resolved identity without re-verifying anything.
const (
	headerAccountID   = "X-Account-ID"
	headerAccountRole = "X-Account-Role"
)

type Identity struct {
	AccountID string
	Role      account.Kind
}

type identityKey struct{}

func identityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(Identity)
	return ident, ok
}

// IdentityMiddleware extracts the authenticated identity from headers.
// Requests without a usable identity are rejected before reaching any
// handler.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerAccountID)
		role := account.Kind(r.Header.Get(headerAccountRole))
		if id == "" || !role.Valid() {
			http.Error(w, `{"error":"missing or invalid account identity"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, Identity{AccountID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
