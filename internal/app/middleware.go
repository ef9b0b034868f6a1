package app

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestLogger attaches a request-scoped logger so everything downstream,
// the booking engine included, logs with the request id.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With("request_id", middleware.GetReqID(r.Context()))

		ctx := contextSetLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureGuestUserSession guarantees every request carries a session token.
// Anonymous visitors can hold and confirm seats; the token is what ties a
// reservation to its requester.
func (app *application) ensureGuestUserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.sessionManager.Token(r.Context()) == "" {
			// A fresh session has no token until it is committed, and the
			// handlers need the token during this same request.
			app.sessionManager.Put(r.Context(), "guest", true)

			_, _, err := app.sessionManager.Commit(r.Context())
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) requesterToken(r *http.Request) string {
	return app.sessionManager.Token(r.Context())
}
