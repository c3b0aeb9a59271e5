package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bachat/bachat/internal/config"
	"github.com/bachat/bachat/pkg/user"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate X-User-Id header into context for downstream services.
	// Without the header the request operates on the anonymous local scope.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			scope := user.AnonymousLocal()
			if userId := req.Header.Get("X-User-Id"); userId != "" {
				scope = user.Authenticated(userId)
			}
			ctx := user.WithScope(req.Context(), scope)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
