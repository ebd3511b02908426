package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
	"cryptofolio/pkg/helpers"
)

type stubUserRepo struct {
	users map[string]*entity.User
}

func (r *stubUserRepo) Create(*entity.User) error { return nil }
func (r *stubUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (r *stubUserRepo) GetByEmail(string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubUserRepo) GetByResetTokenHash(string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubUserRepo) Update(*entity.User) error { return nil }

func authTestRouter(users *stubUserRepo, jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	r.GET("/me", Auth(users, jwt, logger), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidBearerToken(t *testing.T) {
	users := &stubUserRepo{users: map[string]*entity.User{
		"user-1": {ID: "user-1", Email: "a@example.com"},
	}}
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := authTestRouter(users, jwt)

	token, _, err := jwt.GenerateSessionToken("user-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	w := get(r, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "user-1" {
		t.Errorf("resolved user = %q, want user-1", w.Body.String())
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	users := &stubUserRepo{users: map[string]*entity.User{
		"user-1": {ID: "user-1"},
	}}
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := authTestRouter(users, jwt)

	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want 401", w.Code)
	}
	if w := get(r, "Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}

	// Signed with a different secret.
	forged, _, err := helpers.NewJWTManager("other-secret", time.Hour).GenerateSessionToken("user-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if w := get(r, "Bearer "+forged); w.Code != http.StatusUnauthorized {
		t.Errorf("forged token: status = %d, want 401", w.Code)
	}

	// Already expired.
	expired, _, err := helpers.NewJWTManager("secret", -time.Minute).GenerateSessionToken("user-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if w := get(r, "Bearer "+expired); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	users := &stubUserRepo{users: map[string]*entity.User{}}
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := authTestRouter(users, jwt)

	token, _, err := jwt.GenerateSessionToken("gone-user")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if w := get(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted user's token: status = %d, want 401", w.Code)
	}
}
