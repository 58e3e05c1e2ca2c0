package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestJSONSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]any{"total": 10})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("Expected Content-Type application/json")
	}

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Success || body.Data["key"] != "value" {
		t.Errorf("Unexpected body %+v", body)
	}
	if body.Meta["request_id"] != "req-1" || body.Meta["total"] != float64(10) {
		t.Errorf("Expected request_id and total in meta, got %v", body.Meta)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", []ErrorDetail{
		{Field: "title", Message: "Title is required"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Success {
		t.Error("Expected success false")
	}
	if response.Error.Code != "VALIDATION_ERROR" || len(response.Error.Details) != 1 {
		t.Errorf("Unexpected error body %+v", response.Error)
	}
	if response.Meta != nil {
		t.Errorf("Expected no meta without request id, got %v", response.Meta)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := Chain(panicking, AccessLogMiddleware(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", w.Code)
	}
}
