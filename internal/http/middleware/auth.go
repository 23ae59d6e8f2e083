package middleware

import (
	"net/http"
	"strings"

	"github.com/tanvirio/contactbook/internal/api/respond"
	"github.com/tanvirio/contactbook/internal/auth"
	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Authenticate validates the Bearer access token and loads the account
// behind it. Deleted accounts and tokens issued before the last password
// change are rejected; blocked accounts get 403.
func Authenticate(tokens *auth.TokenManager, repo users.Repository, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			claims, err := tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, auth.ErrTokenInvalid.Error())
				return
			}

			user, err := repo.GetByID(r.Context(), claims.UserID())
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, auth.ErrTokenInvalid.Error())
				return
			}
			if user.IsDeleted {
				respond.Error(w, http.StatusUnauthorized, auth.ErrAccountDeleted.Error())
				return
			}
			if user.Status == users.StatusBlocked {
				respond.Error(w, http.StatusForbidden, auth.ErrAccountBlocked.Error())
				return
			}
			if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
				claims.IssuedAt.Time.Before(*user.PasswordChangedAt) {
				respond.Error(w, http.StatusUnauthorized, auth.ErrTokenInvalid.Error())
				return
			}

			ctx := identity.WithUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
