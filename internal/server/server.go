// Package server exposes the REST API over chi.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fritter-app/fritter/internal/auth"
	"github.com/fritter-app/fritter/internal/middleware"
	"github.com/fritter-app/fritter/internal/service"
	"github.com/fritter-app/fritter/internal/storage"
)

// Server wires the services to HTTP routes.
type Server struct {
	store    storage.Store
	tokens   *auth.JWTManager
	accounts *service.AccountService
	freets   *service.FreetService
	groups   *service.GroupService
}

// New creates a Server over the given store and services.
func New(
	store storage.Store,
	tokens *auth.JWTManager,
	accounts *service.AccountService,
	freets *service.FreetService,
	groups *service.GroupService,
) *Server {
	return &Server{
		store:    store,
		tokens:   tokens,
		accounts: accounts,
		freets:   freets,
		groups:   groups,
	}
}

// Routes builds the router.
//
// The group routes use OptionalAuth rather than RequireAuth: their validation
// chains check authentication in a documented position (after "group
// exists"), so rejecting at the middleware would reorder the error contract.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Post("/users/session", s.handleLogin)

		r.Route("/freets", func(r chi.Router) {
			r.With(middleware.RequireAuth(s.tokens)).Post("/", s.handleCreateFreet)
			r.Get("/{freetID}", s.handleGetFreet)
			r.With(middleware.RequireAuth(s.tokens)).Delete("/{freetID}", s.handleDeleteFreet)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(s.tokens))
			r.Get("/member", s.handleListMemberGroups)
			r.Get("/admin", s.handleListAdminGroups)
			r.Post("/", s.handleCreateGroup)
			r.Get("/{groupID}", s.handleGetGroup)
			r.Delete("/{groupID}", s.handleDeleteGroup)
			r.Patch("/{groupID}", s.handleSetGroupPrivacy)
			r.Patch("/{groupID}/member", s.handleAddGroupMember)
			r.Patch("/{groupID}/admin", s.handlePromoteGroupAdmin)
			r.Patch("/{groupID}/post", s.handleAttachGroupPost)
			r.Patch("/{groupID}/post/remove", s.handleDetachGroupPost)
		})
	})

	return r
}

// callerFrom builds the request-scoped caller identity from context values
// set by the auth middleware.
func callerFrom(r *http.Request) service.Caller {
	userID := middleware.GetUserID(r.Context())
	return service.Caller{
		UserID:        userID,
		Authenticated: userID != "",
	}
}
