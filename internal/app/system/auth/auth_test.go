package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSecret = "test-secret-must-be-long-enough-32b"

type fakeUsers map[primitive.ObjectID]models.User

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

type fakeRevoked map[string]bool

func (f fakeRevoked) IsRevoked(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestNewIssuer_Rejects(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewIssuer(testSecret, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss := newIssuer(t)
	id := primitive.NewObjectID().Hex()

	tok, claims, err := iss.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}

	got, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Subject != id || got.ID != claims.ID {
		t.Errorf("claims = %+v, want user %s jti %s", got, id, claims.ID)
	}
}

func TestIssue_SubjectClaim(t *testing.T) {
	iss := newIssuer(t)
	id := primitive.NewObjectID().Hex()
	tok, _, err := iss.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	raw := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, raw); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if raw["sub"] != id {
		t.Errorf("sub = %v, want %s", raw["sub"], id)
	}
	if _, ok := raw["user_id"]; ok {
		t.Error("unexpected user_id claim")
	}
}

func TestVerify_RequiresSubject(t *testing.T) {
	iss := newIssuer(t)
	now := time.Now()
	legacy := jwt.MapClaims{
		"user_id": primitive.NewObjectID().Hex(),
		"jti":     "legacy-token",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, legacy).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify without sub: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := newIssuer(t)
	past := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return past }
	tok, _, err := iss.Issue(primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	iss.now = time.Now
	if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify expired = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _, err := newIssuer(t).Issue(primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other, _ := NewIssuer("a-completely-different-secret-value", time.Hour)
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := newIssuer(t).Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify = %v, want ErrInvalidToken", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("expected match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatch")
	}
	if CheckPassword("", "secret1") {
		t.Error("empty hash must not match")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"Bearer abc":   "abc",
		"abc":          "abc",
		"Bearer  abc ": "abc",
	}
	for header, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := BearerToken(r); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestRequireUser(t *testing.T) {
	iss := newIssuer(t)
	alice := models.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	users := fakeUsers{alice.ID: alice}

	validTok, _, _ := iss.Issue(alice.ID.Hex())
	revokedTok, revokedClaims, _ := iss.Issue(alice.ID.Hex())
	ghostTok, _, _ := iss.Issue(primitive.NewObjectID().Hex())
	revoked := fakeRevoked{revokedClaims.ID: true}

	a := NewAuthenticator(iss, users, revoked, zap.NewNop())

	var seen *CurrentUserInfo
	h := a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + validTok, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"revoked", "Bearer " + revokedTok, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghostTok, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if seen != nil {
					t.Error("handler ran for rejected request")
				}
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["error"] != "Unauthorized" {
					t.Errorf("error = %q, want Unauthorized", body["error"])
				}
				return
			}
			if seen == nil || seen.ID != alice.ID || seen.Name != "Alice" {
				t.Errorf("current user = %+v", seen)
			}
		})
	}
}
