package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"go.uber.org/zap"
)

func TestRender(t *testing.T) {
	var fields inputval.Errors
	fields.Add("title", inputval.MsgBlank)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"forbidden", apperr.Forbidden("Only the project owner can delete"), http.StatusForbidden, `{"error":"Only the project owner can delete"}`},
		{"not found", apperr.NotFound("Task not found"), http.StatusNotFound, `{"error":"Task not found"}`},
		{"conflict", apperr.Conflict("User is already a member of this project"), http.StatusConflict, `{"error":"User is already a member of this project"}`},
		{"validation", apperr.Validation(fields), http.StatusUnprocessableEntity, `{"errors":["Title can't be blank"]}`},
		{"internal", stderrors.New("connection reset"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	el := errorsfeature.NewErrorLogger(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			el.Render(rec, httptest.NewRequest(http.MethodGet, "/x", nil), "op", tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var got, want any
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			_ = json.Unmarshal([]byte(tt.body), &want)
			gb, _ := json.Marshal(got)
			wb, _ := json.Marshal(want)
			if string(gb) != string(wb) {
				t.Errorf("body = %s, want %s", gb, wb)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestFallbacks(t *testing.T) {
	h := errorsfeature.NewHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/profile", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status = %d", rec.Code)
	}
}
