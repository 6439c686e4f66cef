package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/taba-id/taba/internal/auth"
	"github.com/taba-id/taba/internal/config"
	"github.com/taba-id/taba/internal/course"
	"github.com/taba-id/taba/internal/db"
	"github.com/taba-id/taba/internal/grading"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/scheduler"
	"github.com/taba-id/taba/internal/storage"
	syncx "github.com/taba-id/taba/internal/sync"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("env file: %v", err)
	}
	cfg := config.FromEnv()
	if cfg.InsecureSecret() {
		log.Printf("WARNING: AUTH_HMAC_SECRET is not set; tokens are signed with the public development secret")
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	profiles := auth.NewProfileStore(dbh)
	if created, err := profiles.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassHash); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	} else if created {
		log.Printf("created admin account %s", cfg.AdminEmail)
	}

	a := newApp(cfg, dbh, bs, profiles)

	sched := scheduler.New(a.sessions, cfg.SessionSweepInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("stopped")
}

// app holds the wired dependencies of the server.
type app struct {
	cfg       config.Config
	db        *sql.DB
	authSvc   *auth.AuthService
	profiles  *auth.ProfileStore
	store     *quiz.SQLStore
	engine    *quiz.Engine
	sessions  *quiz.Registry
	progress  *course.ProgressStore
	materials *course.Materials
	events    *syncx.EventRepo
}

func newApp(cfg config.Config, dbh *sql.DB, bs storage.BlobStore, profiles *auth.ProfileStore) *app {
	store := quiz.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	engine := quiz.NewEngine(store, store, grading.NewDefaultGrader(),
		quiz.WithSavedHook(func(ctx context.Context, rec quiz.HistoryRecord) {
			rec.Answers = nil
			if _, err := events.Emit(ctx, rec.UserID, syncx.TypeQuizCompleted, rec.ID, rec); err != nil {
				log.Printf("events: quiz completed %s: %v", rec.ID, err)
			}
		}))
	return &app{
		cfg:       cfg,
		db:        dbh,
		authSvc:   auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
		profiles:  profiles,
		store:     store,
		engine:    engine,
		sessions:  quiz.NewRegistry(cfg.SessionIdleTimeout),
		progress:  course.NewProgressStore(dbh),
		materials: course.NewMaterials(bs),
		events:    events,
	}
}
