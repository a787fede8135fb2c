package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"portal/internal/domain"
)

func TestActorExtractsIdentityHeaders(t *testing.T) {
	var got ActorInfo
	var ok bool
	handler := Actor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest("POST", "/v1/tasks/t1/session", nil)
	req.Header.Set("X-Actor-Id", "user-9")
	req.Header.Set("X-Actor-Role", "qc")
	req.Header.Set("X-Actor-Name", "Pat")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("actor not found in context")
	}
	if got.ID != "user-9" || got.Role != domain.RoleQC || got.DisplayName != "Pat" {
		t.Fatalf("actor mismatch: %+v", got)
	}
}

func TestActorRejectsUnknownRole(t *testing.T) {
	var ok bool
	handler := Actor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/v1/tasks/t1", nil)
	req.Header.Set("X-Actor-Id", "user-9")
	req.Header.Set("X-Actor-Role", "superadmin")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Fatal("unknown role should not yield a usable actor")
	}
}
