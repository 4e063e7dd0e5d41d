package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/features/logout"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	tokenstore "github.com/dalemusser/taskhub/internal/app/store/tokens"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleLogout(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	logger := zap.NewNop()
	iss, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	authn := auth.NewAuthenticator(iss, userstore.New(db), tokenstore.New(db), logger)
	h := logout.NewHandler(accountsvc.New(db, iss, nil, logger), authn, uierrors.NewErrorLogger(logger), logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Max", "max@example.com")
	token, _, err := iss.Issue(u.ID.Hex())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.HandleLogout(rec, req)
		return rec
	}

	rec := send("Bearer " + token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Message string `json:"message"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Message != logout.MsgLoggedOut {
		t.Errorf("message = %q", body.Message)
	}

	if _, err := authn.Resolve(ctx, token); err != auth.ErrInvalidToken {
		t.Errorf("revoked token still resolves: %v", err)
	}

	for _, header := range []string{"Bearer " + token, "", "Bearer garbage"} {
		rec := send(header)
		if rec.Code != http.StatusUnauthorized || testutil.ErrorBody(t, rec) != logout.MsgInvalidToken {
			t.Errorf("header %q: %d %s", header, rec.Code, rec.Body.String())
		}
	}
}
