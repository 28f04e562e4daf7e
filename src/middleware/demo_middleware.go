package middleware

import (
	"net/http"
)

// DemoMode rejects every write except sign-in and sign-up when isDemo is set.
func DemoMode(isDemo bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/login":    true,
		"/api/register": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isDemo && r.Method != http.MethodGet && r.Method != http.MethodOptions {
				if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusForbidden, "Demo mode: only GET requests are allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
