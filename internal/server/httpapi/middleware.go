package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// callerUID returns the authenticated account id stored by requireAuth.
func callerUID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// requireAuth validates the bearer token and stashes the account id in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			s.writeError(r.Context(), w, common.ErrorUnauthorized)
			return
		}

		uid, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next(w, r.WithContext(ctx))
	})
}
