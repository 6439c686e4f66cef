package rbac

import (
	"encoding/json"
	"log"
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require lets the request through only when the role in the context holds
// every listed permission. Denials get a JSON 403 in the API error shape.
func Require(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !defaultChecker.All(role, perms...) {
				log.Printf("rbac: deny %s %s sub=%q role=%q need=%v",
					r.Method, r.URL.Path, SubjectFromContext(r.Context()), role, perms)
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden", "code": "forbidden"})
}
