package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"studioload/internal/logging"
)

const bearerPrefix = "Bearer "

// requireToken wraps next with bearer-token validation. An empty token
// leaves the API open.
func (s *apiServer) requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	expected := []byte(token)
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		presented, ok := strings.CutPrefix(auth, bearerPrefix)
		if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			s.logger.Warn("api request rejected",
				logging.String("path", r.URL.Path),
				logging.String("remote_addr", r.RemoteAddr),
				logging.Bool("bearer_present", ok),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="studioload"`)
			s.writeError(r.Context(), w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
