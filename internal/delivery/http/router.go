package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"clientdesk/internal/delivery/http/controllers"
	"clientdesk/internal/delivery/http/middleware"
	"clientdesk/internal/domain"
)

// RouterDeps holds everything the router needs to wire routes.
type RouterDeps struct {
	Logger        *slog.Logger
	TokenVerifier domain.TokenVerifier
	Auth          *controllers.AuthController
	Invites       *controllers.InviteController
	Profiles      *controllers.ProfileController
	Chat          *controllers.ChatController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(deps.TokenVerifier, deps.Logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole("admin")(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("GET /users/me", authed(deps.Auth.Me))
	mux.HandleFunc("PATCH /users/me", authed(deps.Auth.UpdateMe))

	// Invitations. verify-token and update-status are reached by invitees
	// who do not have an account yet, so they are unauthenticated.
	mux.HandleFunc("POST /invite", admin(deps.Invites.Invite))
	mux.HandleFunc("GET /invite", admin(deps.Invites.List))
	mux.HandleFunc("POST /invite/verify-token", deps.Invites.VerifyToken)
	mux.HandleFunc("POST /invite/update-status", deps.Invites.UpdateStatus)

	// Profiles
	mux.HandleFunc("POST /profiles", authed(deps.Profiles.Create))
	mux.HandleFunc("GET /profiles/me", authed(deps.Profiles.Me))
	mux.HandleFunc("PATCH /profiles/me", authed(deps.Profiles.Update))

	// Chat
	mux.HandleFunc("GET /chat/rooms/{roomID}/messages", authed(deps.Chat.History))
	mux.HandleFunc("GET /chat/rooms/{roomID}/ws", authed(deps.Chat.Connect))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
