package login_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/features/login"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func newHandler(t *testing.T, limit int) (*login.Handler, *auth.Issuer, *mongo.Database) {
	t.Helper()
	db := testutil.SetupIndexedDB(t)
	logger := zap.NewNop()
	iss, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)
	h := login.NewHandler(accountsvc.New(db, iss, nil, logger), limiter, nil, uierrors.NewErrorLogger(logger), logger)
	return h, iss, db
}

func TestHandleRegister(t *testing.T) {
	h, iss, _ := newHandler(t, 5)

	body := map[string]any{"user": map[string]any{
		"name":                  "Olive",
		"email":                 "Olive@Example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	}}
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got session
	testutil.DecodeJSON(t, rec, &got)
	if got.User.Email != "olive@example.com" {
		t.Errorf("email = %q", got.User.Email)
	}
	claims, err := iss.Verify(got.Token)
	if err != nil || claims.Subject != got.User.ID {
		t.Errorf("token claims = %+v, err = %v", claims, err)
	}

	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	var verr struct {
		Errors []string `json:"errors"`
	}
	testutil.DecodeJSON(t, rec, &verr)
	if len(verr.Errors) != 1 || verr.Errors[0] != "Email has already been taken" {
		t.Errorf("errors = %v", verr.Errors)
	}
}

func TestHandleRegister_Invalid(t *testing.T) {
	h, _, _ := newHandler(t, 5)

	body := map[string]any{"user": map[string]any{
		"name":                  "Olive",
		"email":                 "olive@example.com",
		"password":              "secret123",
		"password_confirmation": "different",
	}}
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	h, _, db := newHandler(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Max", "max@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"valid", "max@example.com", testutil.FixturePassword, http.StatusOK},
		{"mixed case email", " MAX@example.com ", testutil.FixturePassword, http.StatusOK},
		{"wrong password", "max@example.com", "nope", http.StatusUnauthorized},
		{"unknown email", "ghost@example.com", "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login",
				map[string]string{"email": tt.email, "password": tt.password}))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				if msg := testutil.ErrorBody(t, rec); msg != accountsvc.MsgInvalidCredentials {
					t.Errorf("error = %q", msg)
				}
				return
			}
			var got session
			testutil.DecodeJSON(t, rec, &got)
			if got.Token == "" || got.User.ID != u.ID.Hex() {
				t.Errorf("session = %+v", got)
			}
		})
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h, _, _ := newHandler(t, 2)

	var rec *httptest.ResponseRecorder
	for i, want := range []string{"1", "0", "0"} {
		rec = httptest.NewRecorder()
		h.HandleLogin(rec, testutil.JSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"email": "ghost@example.com", "password": "nope"}))
		if got := rec.Header().Get(login.RemainingHeader); got != want {
			t.Errorf("attempt %d: %s = %q, want %q", i+1, login.RemainingHeader, got, want)
		}
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := testutil.ErrorBody(t, rec); msg != ratelimit.LoginMessage {
		t.Errorf("error = %q", msg)
	}
}
