// Package auth resolves the bearer token on a request into the current user.
//
// The token is verified first, then its jti is checked against the
// revocation list, then the user it names is loaded. Any failure ends the
// request with 401 {"error":"Unauthorized"} before a handler runs.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UnauthorizedMessage is the body text for every rejected request.
const UnauthorizedMessage = "Unauthorized"

// CurrentUserInfo is what the middleware injects into the request context.
type CurrentUserInfo struct {
	ID        primitive.ObjectID
	Name      string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// UserFinder loads users by id. It returns mongo.ErrNoDocuments when the
// user does not exist.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated user and a found flag.
func CurrentUser(r *http.Request) (*CurrentUserInfo, bool) {
	u, ok := r.Context().Value(currentUserKey).(*CurrentUserInfo)
	return u, ok && u != nil
}

// WithUser returns a copy of r carrying u as the current user.
func WithUser(r *http.Request, u *CurrentUserInfo) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
// Like the header parsing clients expect, only the last space-separated
// field is used.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	fields := strings.Fields(h)
	return fields[len(fields)-1]
}

// Authenticator verifies bearer tokens and loads the user they name.
type Authenticator struct {
	Issuer  *Issuer
	Users   UserFinder
	Revoked RevocationChecker
	Log     *zap.Logger
}

// NewAuthenticator wires an Authenticator.
func NewAuthenticator(iss *Issuer, users UserFinder, revoked RevocationChecker, logger *zap.Logger) *Authenticator {
	return &Authenticator{Issuer: iss, Users: users, Revoked: revoked, Log: logger}
}

// Resolve turns a raw token into the current user. It returns
// ErrInvalidToken for anything a client could have caused, and a wrapped
// error for store failures.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*CurrentUserInfo, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := a.Issuer.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if a.Revoked != nil {
		revoked, err := a.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	u, err := a.Users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	info := &CurrentUserInfo{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// RequireUser rejects requests without a valid bearer token and injects the
// resolved user into the context for the rest.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Resolve(r.Context(), BearerToken(r))
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && a.Log != nil {
				a.Log.Error("token resolution failed", zap.Error(err), zap.String("path", r.URL.Path))
			}
			writeUnauthorized(w, UnauthorizedMessage)
			return
		}
		next.ServeHTTP(w, WithUser(r, u))
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
