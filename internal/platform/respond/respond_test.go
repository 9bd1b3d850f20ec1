package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

func TestOK_Envelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := OK(c, map[string]string{"id": "123"}, "loaded"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["message"] != "loaded" {
		t.Errorf("message = %v", body["message"])
	}
	data, _ := body["data"].(map[string]interface{})
	if data["id"] != "123" {
		t.Errorf("data = %v", body["data"])
	}
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		kind   apperrors.Kind
		status int
	}{
		{apperrors.Unauthenticated, http.StatusUnauthorized},
		{apperrors.Forbidden, http.StatusForbidden},
		{apperrors.Validation, http.StatusBadRequest},
		{apperrors.RateLimited, http.StatusTooManyRequests},
		{apperrors.NotFound, http.StatusNotFound},
		{apperrors.Conflict, http.StatusConflict},
		{apperrors.Storage, http.StatusInternalServerError},
	}

	handler := ErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(apperrors.New(tt.kind, "boom"), c)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeEnvelope(t, rec)
			if body["success"] != false {
				t.Errorf("success = %v", body["success"])
			}
		})
	}
}

func TestErrorHandler_ValidationCarriesViolations(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop())(apperrors.NewValidation([]apperrors.Violation{
		{Field: "gender", Message: "must be one of MALE, FEMALE, OTHER, UNKNOWN"},
		{Field: "dateOfBirth", Message: "is required"},
	}), c)

	body := decodeEnvelope(t, rec)
	details, _ := body["details"].([]interface{})
	if len(details) != 2 {
		t.Fatalf("details = %v", body["details"])
	}
	first, _ := details[0].(map[string]interface{})
	if first["field"] != "gender" {
		t.Errorf("first violation = %v", first)
	}
}

func TestErrorHandler_InternalErrorsAreGeneric(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cause := errors.New("pq: connection refused at 10.0.0.5:5432")
	ErrorHandler(zerolog.Nop())(apperrors.Wrap(apperrors.Storage, "failed to load patient", cause), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["error"] != "internal server error" {
		t.Errorf("internal detail leaked: %v", body["error"])
	}
}

func TestErrorHandler_ForeignErrorsClassifiedUnknown(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop())(errors.New("something unexpected"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["error"] != "internal server error" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop())(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
