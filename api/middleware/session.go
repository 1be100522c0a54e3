package middleware

import (
	"net/http"

	"github.com/angelmondragon/salon-retail/api/responses"
	"github.com/angelmondragon/salon-retail/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/logger"
)

type sessionResolver interface {
	Resolve(r *http.Request) (session.Session, error)
	Write(w http.ResponseWriter, s session.Session)
}

// Session binds every request to a cart session, minting one when the client
// presents no valid token.
func Session(resolver sessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			s, err := resolver.Resolve(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve session"))
				return
			}
			resolver.Write(w, s)

			ctx = WithSessionID(ctx, s.ID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, s.ID)
				if s.Fresh {
					logg.Debug(ctx, "session.minted")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
