package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"dammi/pkg/accounts"
)

type ctxKeyAccountID struct{}

// AccountIDFrom returns the authenticated account id for this request.
func AccountIDFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyAccountID{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// mustJWKS fetches JWKS and panics on failure.
func mustJWKS(url string) jwk.Set {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		panic(err)
	}
	return set
}

// cors returns a middleware that sets CORS headers and handles preflight
// requests. allowed may contain exact origins or "*" to allow all.
func cors(allowed []string) func(http.Handler) http.Handler {
	match := func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		for _, a := range allowed {
			a = strings.TrimSpace(a)
			if a == "*" || a == origin {
				return a, true
			}
		}
		return "", false
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if ao, ok := match(origin); ok {
				w.Header().Set("Access-Control-Allow-Origin", ao)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Account-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// adminAuth validates an admin bearer token, or allows a dev header
// override when JWKS is not configured.
func (a *App) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.adminJWKS == nil {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			aid := strings.TrimSpace(r.Header.Get("X-Account-ID"))
			if aid == "" {
				http.Error(w, "missing account id", http.StatusBadRequest)
				return
			}
			if !a.accountExists(r.Context(), aid) {
				http.Error(w, "invalid account id", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAccountID{}, aid)))
			return
		}

		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])
		jt, err := jwt.Parse([]byte(raw),
			jwt.WithKeySet(a.adminJWKS),
			jwt.WithIssuer(a.adminIssuer),
			jwt.WithAudience(a.adminAud),
			jwt.WithValidate(true),
		)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		role, _ := jt.Get("role")
		rs, _ := role.(string)
		if rs != "account_admin" && rs != "dammi_admin" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		aid, _ := jt.Get("aid")
		if aid == nil {
			if h := r.Header.Get("X-Account-ID"); h != "" {
				aid = h
			}
		}
		if aid == nil {
			http.Error(w, "missing account id", http.StatusBadRequest)
			return
		}
		v := fmt.Sprint(aid)
		if !a.accountExists(r.Context(), v) {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAccountID{}, v)))
	})
}

func (a *App) accountExists(ctx context.Context, id string) bool {
	_, err := a.provider.ResolveAccountByID(ctx, id)
	if err == nil {
		return true
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		a.log.Warnw("account lookup failed", "account_id", id, "err", err)
	}
	return false
}
