package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/germplasm-hub/data-api/auth"
	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/types"
)

const sessionHeader = "X-Session-Id"

// NewAuthHandler resolves the caller before the request reaches a handler.
//
// With authentication enabled, a bearer token is verified and the resolved
// user is attached to the context; a missing token leaves the caller
// anonymous and a bad token is rejected. With authentication disabled, the
// caller is tracked by a session id instead, carrying the licenses accepted
// during that session.
func NewAuthHandler(cfg config.Config, licenses *auth.SessionLicenses, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.UseAuthentication() {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				RespondWithError(w, errors.New("authorization header is not a bearer token"), http.StatusUnauthorized)
				return
			}

			user, err := auth.ParseToken(token, cfg.JWTSecret())
			if err != nil {
				RespondWithError(w, errors.New("invalid bearer token"), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContextUser(r.Context(), user)))
			return
		}

		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			sessionID = auth.NewSessionID()
		}
		w.Header().Set(sessionHeader, sessionID)

		user := anonymousUser(sessionID, licenses)
		next.ServeHTTP(w, r.WithContext(auth.WithContextUser(r.Context(), user)))
	})
}

func anonymousUser(sessionID string, licenses *auth.SessionLicenses) *types.UserAuth {
	return &types.UserAuth{
		SessionID:        sessionID,
		AcceptedLicenses: licenses.Accepted(sessionID),
	}
}
