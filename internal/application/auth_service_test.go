package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"cryptofolio/pkg/helpers"
	"cryptofolio/pkg/mailer"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthService(repo *memUserRepo, pub *fakePublisher) *AuthService {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(repo, jwt, pub, nil, "", testLogger(), 10*time.Minute, "https://app.example.com/reset-password", true)
}

func TestRegisterIssuesSession(t *testing.T) {
	repo := newMemUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(repo, pub)

	u, sess, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Password == "hunter2secret" {
		t.Error("password stored in plaintext")
	}
	if sess.Token == "" || !sess.ExpiresAt.After(time.Now()) {
		t.Errorf("bad session: %+v", sess)
	}
	claims, err := svc.JWT.ParseSessionToken(sess.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != u.ID {
		t.Errorf("token identifies %q, want %q", claims.UserID, u.ID)
	}
	if len(pub.jobs) != 1 {
		t.Fatalf("welcome jobs = %d, want 1", len(pub.jobs))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemUserRepo()
	svc := newAuthService(repo, &fakePublisher{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, err := svc.Register(ctx, "Mallory", "ALICE@example.com", "otherpassword")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	repo := newMemUserRepo()
	svc := newAuthService(repo, &fakePublisher{})
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, errWrongPwd := svc.Login(ctx, "alice@example.com", "wrong")
	_, _, errNoUser := svc.Login(ctx, "nobody@example.com", "hunter2secret")
	if !errors.Is(errWrongPwd, ErrInvalidCredentials) || !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v, unknown email: %v; both must be ErrInvalidCredentials", errWrongPwd, errNoUser)
	}

	u, sess, err := svc.Login(ctx, "Alice@Example.com ", "hunter2secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u == nil || sess.Token == "" {
		t.Fatal("successful login returned empty session")
	}
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	repo := newMemUserRepo()
	svc := newAuthService(repo, &fakePublisher{})
	ctx := context.Background()
	u, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{NewPassword: "newlongpassword"}); !isValidation(err) {
		t.Fatalf("missing current password: err = %v, want validation error", err)
	}
	if _, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{CurrentPassword: "wrong", NewPassword: "newlongpassword"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current password: err = %v, want ErrInvalidCredentials", err)
	}

	if _, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: "Alice B", CurrentPassword: "hunter2secret", NewPassword: "newlongpassword"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "newlongpassword"); err != nil {
		t.Fatalf("login with rotated password: %v", err)
	}
	got, _ := svc.GetProfile(u.ID)
	if got.Name != "Alice B" {
		t.Errorf("name = %q, want %q", got.Name, "Alice B")
	}
}

// resetTokenFromJob digs the plaintext token out of the queued email.
func resetTokenFromJob(t *testing.T, job any) string {
	t.Helper()
	ej, ok := job.(mailer.EmailJob)
	if !ok {
		t.Fatalf("job type %T, want mailer.EmailJob", job)
	}
	if ej.Template != mailer.TemplateResetPassword {
		t.Fatalf("job template %q", ej.Template)
	}
	url, _ := ej.Data["ResetURL"].(string)
	i := strings.LastIndex(url, "/")
	if i < 0 || i == len(url)-1 {
		t.Fatalf("no token in reset URL %q", url)
	}
	return url[i+1:]
}

func TestPasswordResetRoundTrip(t *testing.T) {
	repo := newMemUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(repo, pub)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pub.jobs = nil

	if err := svc.RequestPasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if len(pub.jobs) != 1 {
		t.Fatalf("reset jobs = %d, want 1", len(pub.jobs))
	}
	token := resetTokenFromJob(t, pub.jobs[0])

	if err := svc.ResetPassword(ctx, token, "brandnewpassword"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "brandnewpassword"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}

	// One-time use: the same token must not work twice.
	if err := svc.ResetPassword(ctx, token, "yetanotherpassword"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("second use: err = %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestPasswordResetExpiry(t *testing.T) {
	repo := newMemUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(repo, pub)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pub.jobs = nil

	issued := time.Now()
	svc.now = func() time.Time { return issued }
	if err := svc.RequestPasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := resetTokenFromJob(t, pub.jobs[0])

	svc.now = func() time.Time { return issued.Add(svc.ResetTokenTTL + time.Second) }
	if err := svc.ResetPassword(ctx, token, "brandnewpassword"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expired token: err = %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	repo := newMemUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(repo, pub)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must not error, got %v", err)
	}
	if len(pub.jobs) != 0 {
		t.Fatalf("jobs = %d, want 0", len(pub.jobs))
	}
}

func TestPasswordResetPublishFailureClearsToken(t *testing.T) {
	repo := newMemUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(repo, pub)
	ctx := context.Background()
	u, _, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	pub.fail = true
	if err := svc.RequestPasswordReset(ctx, "alice@example.com"); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	got, _ := repo.GetByID(u.ID)
	if got.ResetTokenHash != "" {
		t.Error("orphaned reset token left behind after enqueue failure")
	}
}
