package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/taba-id/taba/internal/api/http"
	"github.com/taba-id/taba/internal/auth"
	"github.com/taba-id/taba/internal/rbac"
)

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if a.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/signup", auth.SignupHandler(a.authSvc, a.profiles, a.cfg.EnableSignup))
	r.Post("/auth/login", auth.LoginHandler(a.authSvc, a.profiles))

	// Catalog is public.
	r.Get("/courses", api.ListCoursesHandler())
	r.Get("/courses/{course}", api.GetCourseHandler())

	// Protected API (JWT → role from profile → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(a.authSvc))
		pr.Use(auth.AttachRole(a.profiles, false))

		pr.With(rbac.Require("profile:view")).Get("/profile", auth.ProfileHandler(a.profiles))
		pr.With(rbac.Require("profile:edit")).Patch("/profile", auth.UpdateProfileHandler(a.profiles))

		pr.With(rbac.Require("course:view")).
			Get("/courses/{course}/material", api.GetMaterialHandler(a.materials))
		pr.With(rbac.Require("material:edit")).
			Put("/courses/{course}/material", api.PutMaterialHandler(a.materials))

		// Quiz sessions
		pr.Route("/sessions", func(sr chi.Router) {
			sr.Use(rbac.Require("quiz:take"))
			sr.Post("/", api.StartSessionHandler(a.engine, a.sessions))
			sr.Get("/{sessionID}", api.GetSessionHandler(a.engine, a.sessions))
			sr.Post("/{sessionID}/answers", api.SubmitAnswerHandler(a.engine, a.sessions))
			sr.Post("/{sessionID}/advance", api.AdvanceHandler(a.engine, a.sessions))
			sr.Post("/{sessionID}/save", api.SaveSessionHandler(a.engine, a.sessions))
			sr.Delete("/{sessionID}", api.AbandonSessionHandler(a.sessions))
		})

		// History and report card
		pr.With(rbac.Require("history:view-own")).Get("/history", api.ListHistoryHandler(a.store))
		pr.With(rbac.Require("history:view-own")).Get("/history/stats", api.TopicStatsHandler(a.store))
		pr.With(rbac.Require("history:view-own")).Get("/history/{historyID}", api.GetHistoryHandler(a.store))
		pr.With(rbac.Require("history:clear-own")).Delete("/history", api.ClearHistoryHandler(a.store, a.events))
		pr.With(rbac.Require("history:view-own")).Get("/report", api.ReportHandler(a.store))

		// Reading progress and event polling
		pr.With(rbac.Require("progress:view")).Get("/progress", api.GetProgressHandler(a.progress))
		pr.With(rbac.Require("progress:update")).
			Put("/progress/{course}", api.PutProgressHandler(a.progress, a.events))
		pr.With(rbac.Require("events:view-own")).Get("/events", api.ListEventsHandler(a.events))

		// Question bank
		pr.With(rbac.Require("question:view")).Get("/questions", api.ListQuestionsHandler(a.store))
		pr.With(rbac.Require("question:view")).Get("/questions/{questionID}", api.GetQuestionHandler(a.store))
		pr.With(rbac.Require("question:create")).Post("/questions", api.CreateQuestionHandler(a.store))
		pr.With(rbac.Require("question:import")).Post("/questions/import", api.ImportQuestionsHandler(a.store))
		pr.With(rbac.Require("question:delete")).Delete("/questions/{questionID}", api.DeleteQuestionHandler(a.store))

		mountAdminRoutes(pr, a.profiles)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
