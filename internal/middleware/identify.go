package middleware

import (
	"net/http"

	"github.com/dukerupert/pawlog/internal/auth"
)

const (
	UserHeader = "X-Pawlog-User"
	UserCookie = "pawlog_user"
)

// Identify records who is logging. The name is taken at face value from
// the X-Pawlog-User header or, failing that, the pawlog_user cookie.
// Requests without a name pass through anonymously.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get(UserHeader)
		if name == "" {
			if c, err := r.Cookie(UserCookie); err == nil {
				name = c.Value
			}
		}
		if name != "" {
			r = r.WithContext(auth.WithUser(r.Context(), name))
		}
		next.ServeHTTP(w, r)
	})
}
