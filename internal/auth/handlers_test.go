package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/taba-id/taba/internal/db"
	"github.com/taba-id/taba/internal/rbac"
)

func init() { BcryptCost = bcrypt.MinCost }

func newProfiles(t *testing.T) *ProfileStore {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, db.MemoryDSN("auth_"+t.Name()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewProfileStore(conn)
}

type testServer struct {
	a        *AuthService
	profiles *ProfileStore
	h        http.Handler
}

func newTestServer(t *testing.T, signup bool) *testServer {
	ts := &testServer{a: NewAuthService("test", time.Hour), profiles: newProfiles(t)}
	r := chi.NewRouter()
	r.Post("/auth/signup", SignupHandler(ts.a, ts.profiles, signup))
	r.Post("/auth/login", LoginHandler(ts.a, ts.profiles))
	r.Group(func(pr chi.Router) {
		pr.Use(JWTMiddleware(ts.a), AttachRole(ts.profiles, false))
		pr.Get("/profile", ProfileHandler(ts.profiles))
		pr.Patch("/profile", UpdateProfileHandler(ts.profiles))
		pr.With(rbac.Require("admin:users")).Put("/admin/users/{userID}/role",
			SetRoleHandler(ts.profiles, func(r *http.Request) string { return chi.URLParam(r, "userID") }))
	})
	ts.h = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.h.ServeHTTP(rr, req)
	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestSignupLoginProfile(t *testing.T) {
	ts := newTestServer(t, true)

	rr, body := ts.do(t, http.MethodPost, "/auth/signup", "", `{"email":"Siti@Example.com","password":"rahasia","full_name":"Siti"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup %d %s", rr.Code, rr.Body)
	}
	if p := body["profile"].(map[string]any); p["email"] != "siti@example.com" || p["role"] != rbac.RoleLearner {
		t.Fatalf("profile %v", p)
	}

	if rr, _ := ts.do(t, http.MethodPost, "/auth/signup", "", `{"email":"siti@example.com","password":"rahasia"}`); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup %d", rr.Code)
	}
	if rr, _ := ts.do(t, http.MethodPost, "/auth/signup", "", `{"email":"x@example.com","password":"123"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("short password %d", rr.Code)
	}

	if rr, _ := ts.do(t, http.MethodPost, "/auth/login", "", `{"email":"siti@example.com","password":"salah"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password %d", rr.Code)
	}
	if rr, _ := ts.do(t, http.MethodPost, "/auth/login", "", `{"email":"nobody@example.com","password":"rahasia"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email %d", rr.Code)
	}
	rr, body = ts.do(t, http.MethodPost, "/auth/login", "", `{"email":"SITI@example.com","password":"rahasia"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %d %s", rr.Code, rr.Body)
	}
	tok := body["access_token"].(string)

	rr, body = ts.do(t, http.MethodPatch, "/profile", tok, `{"avatar_url":"https://img.example/siti.png"}`)
	if rr.Code != http.StatusOK || body["full_name"] != "Siti" || body["avatar_url"] != "https://img.example/siti.png" {
		t.Fatalf("patch %d %v", rr.Code, body)
	}
	if rr, _ := ts.do(t, http.MethodGet, "/profile", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token %d", rr.Code)
	}
}

func TestSignupDisabled(t *testing.T) {
	ts := newTestServer(t, false)
	if rr, _ := ts.do(t, http.MethodPost, "/auth/signup", "", `{"email":"a@b.c","password":"rahasia"}`); rr.Code != http.StatusForbidden {
		t.Fatalf("got %d", rr.Code)
	}
}

func TestRoleChangeAppliesToExistingTokens(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, true)
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-pass"), BcryptCost)
	created, err := ts.profiles.EnsureAdmin(ctx, "admin@taba.id", string(hash))
	if err != nil || !created {
		t.Fatalf("ensure admin: %v %v", created, err)
	}
	if again, _ := ts.profiles.EnsureAdmin(ctx, "admin@taba.id", string(hash)); again {
		t.Fatal("admin created twice")
	}

	_, body := ts.do(t, http.MethodPost, "/auth/signup", "", `{"email":"guru@taba.id","password":"rahasia"}`)
	learnerTok := body["access_token"].(string)
	learnerID := body["profile"].(map[string]any)["id"].(string)
	_, body = ts.do(t, http.MethodPost, "/auth/login", "", `{"email":"admin@taba.id","password":"admin-pass"}`)
	adminTok := body["access_token"].(string)

	path := "/admin/users/" + learnerID + "/role"
	if rr, _ := ts.do(t, http.MethodPut, path, learnerTok, `{"role":"admin"}`); rr.Code != http.StatusForbidden {
		t.Fatalf("learner promoting self: %d", rr.Code)
	}
	if rr, _ := ts.do(t, http.MethodPut, path, adminTok, `{"role":"wizard"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: %d", rr.Code)
	}
	if rr, _ := ts.do(t, http.MethodPut, "/admin/users/missing/role", adminTok, `{"role":"author"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("missing user: %d", rr.Code)
	}
	rr, body := ts.do(t, http.MethodPut, path, adminTok, `{"role":"admin"}`)
	if rr.Code != http.StatusOK || body["role"] != rbac.RoleAdmin {
		t.Fatalf("promote: %d %v", rr.Code, body)
	}
	// The old learner token now carries admin rights through AttachRole.
	if rr, _ := ts.do(t, http.MethodPut, path, learnerTok, `{"role":"author"}`); rr.Code != http.StatusOK {
		t.Fatalf("promoted token: %d", rr.Code)
	}
}

type brokenRoles struct{}

func (brokenRoles) Role(context.Context, string) (string, error) { return "", errors.New("db down") }

type noProfiles struct{}

func (noProfiles) Role(context.Context, string) (string, error) { return "", ErrProfileNotFound }

func TestAttachRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Role", rbac.RoleFromContext(r.Context()))
	})
	cases := []struct {
		name     string
		src      RoleSource
		fallback bool
		want     int
	}{
		{"lookup failure", brokenRoles{}, true, http.StatusServiceUnavailable},
		{"no profile", noProfiles{}, false, http.StatusForbidden},
		{"no profile dev fallback", noProfiles{}, true, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := rbac.WithRole(rbac.WithSubject(req.Context(), "u1"), rbac.RoleLearner)
			rr := httptest.NewRecorder()
			AttachRole(tc.src, tc.fallback)(ok).ServeHTTP(rr, req.WithContext(ctx))
			if rr.Code != tc.want {
				t.Fatalf("got %d", rr.Code)
			}
			if tc.want == http.StatusOK && rr.Header().Get("X-Role") != rbac.RoleLearner {
				t.Fatal("claim role should be kept")
			}
		})
	}
}
