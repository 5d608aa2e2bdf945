package main

import (
	"net/http"

	"github.com/rikkicasupanan/portfolio/cmd/website/internal/authgate"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/httpjson"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

/*
newAdminGateMiddleware verifies the admin session on every admin path and
applies the gate's redirect policy. Verified sessions are carried on the
request context.
*/
func newAdminGateMiddleware(verifier authgate.SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err     error
				session *models.AdminSession
			)

			path := r.URL.Path

			if !authgate.IsAdminPath(path) {
				next.ServeHTTP(w, r)
				return
			}

			session, err = verifier.VerifySession(r)
			authenticated := err == nil && session != nil

			decision := authgate.Decide(path, authenticated)

			if !decision.PassThrough() {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}

			if authenticated {
				r = r.WithContext(authgate.WithSession(r.Context(), session))
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*
newAPISessionMiddleware guards JSON endpoints. API callers get a 401 body
instead of a redirect to the login page.
*/
func newAPISessionMiddleware(verifier authgate.SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := verifier.VerifySession(r)

			if err != nil || session == nil {
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(authgate.WithSession(r.Context(), session)))
		})
	}
}
