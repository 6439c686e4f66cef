package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taba-id/taba/internal/auth"
	"github.com/taba-id/taba/internal/rbac"
)

// mountAdminRoutes wires account administration under /admin.
func mountAdminRoutes(api chi.Router, profiles *auth.ProfileStore) {
	api.Route("/admin", func(r chi.Router) {
		r.With(rbac.Require("admin:users")).Put("/users/{userID}/role",
			auth.SetRoleHandler(profiles, func(r *http.Request) string { return chi.URLParam(r, "userID") }))
	})
}
