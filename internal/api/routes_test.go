package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plantcopilot/plantcopilot/internal/domain/assistant"
	pkgauth "github.com/plantcopilot/plantcopilot/pkg/auth"
)

type stubAssistant struct{ calls int }

func (s *stubAssistant) Handle(ctx context.Context, req assistant.Request) (any, error) {
	s.calls++
	return assistant.ReplyResponse{Reply: "ok"}, nil
}

// Route tests set JWT_SECRET via t.Setenv, so they do not run in parallel.

func TestNewRouter_HealthIsPublic(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	r := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected public health endpoint, got %d", rec.Code)
	}
}

func TestNewRouter_ChatRequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	svc := &stubAssistant{}
	r := NewRouter(Deps{Assistant: svc})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", strings.NewReader(`{}`))
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Error("handler must not run without auth")
	}
}

func TestNewRouter_ChatWithValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := pkgauth.GenerateJWT("op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := &stubAssistant{}
	r := NewRouter(Deps{Assistant: svc})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Errorf("expected one handler call, got %d", svc.calls)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header on responses")
	}
}

func TestNewRouter_KnowledgeRequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	r := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/documents", strings.NewReader(`{}`))
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	r := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}
