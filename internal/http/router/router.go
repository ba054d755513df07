package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atifjaved999/mini-coaching/internal/http/handler"
	"github.com/atifjaved999/mini-coaching/internal/http/middleware"
	"github.com/atifjaved999/mini-coaching/internal/http/response"
)

// Dependencies carries everything the route tree needs. Handlers are
// constructed by the DI layer; the router only arranges them.
type Dependencies struct {
	Auth     *handler.AuthHandler
	Sessions *handler.SessionHandler
	Users    *handler.UserHandler

	Authenticator *middleware.Authenticator

	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
}

// New builds the full route tree. Signup, login and the password reset
// pair are public; everything else sits behind the bearer-token
// authenticator. Both groups carry their own fixed-window rate limiter.
func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(dep.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth")
	apiLimiter := middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api")

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/signup", dep.Auth.Signup)
			r.Post("/login", dep.Auth.Login)
			r.Post("/forgot_password", dep.Auth.ForgotPassword)
			r.Post("/reset_password", dep.Auth.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware)
			r.Use(dep.Authenticator.Middleware)

			r.Delete("/logout", dep.Auth.Logout)

			r.Get("/users", dep.Users.Index)
			r.Get("/users/me", dep.Users.Me)
			r.Post("/users/avatar", dep.Users.UploadAvatar)
			r.Get("/users/avatar", dep.Users.GetAvatar)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", dep.Sessions.Index)
				r.Post("/", dep.Sessions.Create)
				r.Get("/available", dep.Sessions.Available)
				r.Get("/client_sessions", dep.Sessions.ClientSessions)
				r.Get("/coach_sessions", dep.Sessions.CoachSessions)

				r.Route("/{session_id}", func(r chi.Router) {
					r.Get("/", dep.Sessions.Show)
					r.Put("/", dep.Sessions.Update)
					r.Patch("/", dep.Sessions.Patch)
					r.Delete("/", dep.Sessions.Destroy)
					r.Post("/book", dep.Sessions.Book)

					r.Route("/session_users", func(r chi.Router) {
						r.Get("/", dep.Sessions.RosterIndex)
						r.Post("/", dep.Sessions.RosterCreate)
						r.Delete("/{user_id}", dep.Sessions.RosterDestroy)
					})
				})
			})
		})
	})

	return r
}
