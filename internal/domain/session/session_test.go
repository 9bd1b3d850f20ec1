package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
)

func authedContext(t *testing.T, method string, ident *auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ident != nil {
		ctx := auth.WithIdentity(c.Request().Context(), ident)
		c.SetRequest(c.Request().WithContext(ctx))
	}
	return c, rec
}

func testIdentity() *auth.Identity {
	return &auth.Identity{
		ID:          "user-1",
		Email:       "doc@example.com",
		Role:        "ONCOLOGIST",
		Department:  "oncology",
		Permissions: []string{"patient_read"},
		SessionID:   "sess-1",
	}
}

func TestIntrospect_ReflectsIdentity(t *testing.T) {
	h := NewHandler(auth.NewMemoryRevocationStore(), time.Hour)
	c, rec := authedContext(t, http.MethodGet, testIdentity())

	if err := h.Introspect(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Data Info `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.UserID != "user-1" || body.Data.SessionID != "sess-1" {
		t.Errorf("data = %+v", body.Data)
	}
	if len(body.Data.Permissions) != 1 {
		t.Errorf("permissions = %v", body.Data.Permissions)
	}
}

func TestIntrospect_IsIdempotent(t *testing.T) {
	h := NewHandler(auth.NewMemoryRevocationStore(), time.Hour)

	for i := 0; i < 2; i++ {
		c, rec := authedContext(t, http.MethodGet, testIdentity())
		if err := h.Introspect(c); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d status = %d", i, rec.Code)
		}
	}
}

func TestIntrospect_NoIdentity(t *testing.T) {
	h := NewHandler(auth.NewMemoryRevocationStore(), time.Hour)
	c, _ := authedContext(t, http.MethodGet, nil)

	err := h.Introspect(c)
	if apperrors.KindOf(err) != apperrors.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	h := NewHandler(revocations, time.Hour)
	c, rec := authedContext(t, http.MethodDelete, testIdentity())

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	revoked, err := revocations.IsRevoked(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("session should be revoked after logout")
	}

	var clearedCookie bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName && cookie.MaxAge < 0 {
			clearedCookie = true
		}
	}
	if !clearedCookie {
		t.Error("session cookie should be cleared")
	}
}

func TestLogout_TwiceSucceeds(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	h := NewHandler(revocations, time.Hour)

	for i := 0; i < 2; i++ {
		c, _ := authedContext(t, http.MethodDelete, testIdentity())
		if err := h.Logout(c); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
}

func TestLogout_NoSessionIDStillSucceeds(t *testing.T) {
	h := NewHandler(auth.NewMemoryRevocationStore(), time.Hour)
	ident := testIdentity()
	ident.SessionID = ""
	c, rec := authedContext(t, http.MethodDelete, ident)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
