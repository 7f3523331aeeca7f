package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticAPIKeyValidatorParsing(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("k1:acme:chat_user|chat_admin, k2:globex:chat_user")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	identity, ok := validator.Validate(context.Background(), "k1")
	if !ok {
		t.Fatal("expected key to be valid")
	}
	if identity.TenantID != "acme" {
		t.Fatalf("TenantID = %q", identity.TenantID)
	}
	if !identity.HasRole(RoleChatUser) || !identity.HasRole("chat_admin") {
		t.Fatalf("Roles = %v", identity.Roles)
	}
	if _, ok := validator.Validate(context.Background(), "k3"); ok {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestStaticAPIKeyValidatorRejectsMalformedEntries(t *testing.T) {
	for _, raw := range []string{"invalid", "k1::chat_user", "k1:acme:", "k1:acme: | ", "k1:a:chat_user,k1:b:chat_user", "a:b:c:d"} {
		if _, err := NewStaticAPIKeyValidator(raw); err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
	}
}

func TestStaticAPIKeyValidatorDefaultsToChatUser(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator(" k1:acme , ")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	if validator.Len() != 1 {
		t.Fatalf("Len() = %d", validator.Len())
	}
	identity, ok := validator.Validate(context.Background(), "k1")
	if !ok || !identity.HasRole(RoleChatUser) || len(identity.Roles) != 1 {
		t.Fatalf("identity = %#v", identity)
	}
	if identity.KeyID == "" || identity.KeyID == "k1" {
		t.Fatalf("KeyID = %q", identity.KeyID)
	}

	empty, err := NewStaticAPIKeyValidator("")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("empty validator = %v, %v", empty, err)
	}
}

func TestMiddlewareRequiresKey(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("k1:acme:chat_user")
	if err != nil {
		t.Fatalf("validator setup: %v", err)
	}

	mw := Middleware(slog.New(slog.NewJSONHandler(io.Discard, nil)), validator)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("expected WWW-Authenticate header")
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	req.Header.Set("X-API-Key", "wrong")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareInjectsIdentityFromBearerToken(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("k1:acme:chat_user")
	if err != nil {
		t.Fatalf("validator setup: %v", err)
	}

	handler := Middleware(nil, validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("expected identity in context")
		}
		if identity.TenantID != "acme" {
			t.Fatalf("TenantID = %q", identity.TenantID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	req.Header.Set("Authorization", "bearer k1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
}
