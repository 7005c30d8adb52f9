package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// TokenParser verifies a bearer token and returns the identity it asserts.
type TokenParser interface {
	Parse(token string) (domain.Actor, error)
}

// JWTAuth rejects requests without a valid "Authorization: Bearer <token>" header
// and stores the verified actor in the request context.
func JWTAuth(parser TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthenticated(w, "missing bearer token")
				return
			}
			actor, err := parser.Parse(token)
			if err != nil {
				log.Debug("Rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))
				writeUnauthenticated(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="estate"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated", "message": message})
}
