package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
	"cryptofolio/pkg/helpers"
	"cryptofolio/pkg/mailer"
)

// EmailPublisher is the notification-sender collaborator: the reset
// and welcome flows hand it JSON jobs and never talk to SMTP directly.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService owns the credential and token lifecycle: registration,
// login, profile changes, and the password-reset round trip.
type AuthService struct {
	Repo          repository.UserRepository
	JWT           *helpers.JWTManager
	Pub           EmailPublisher
	GCS           *storage.Client
	GCSBucket     string
	Logger        *logrus.Logger
	ResetTokenTTL time.Duration
	ResetURL      string
	MailEnabled   bool

	now func() time.Time
}

func NewAuthService(repo repository.UserRepository, jwt *helpers.JWTManager, pub EmailPublisher,
	gcs *storage.Client, gcsBucket string, logger *logrus.Logger,
	resetTokenTTL time.Duration, resetURL string, mailEnabled bool) *AuthService {
	return &AuthService{
		Repo:          repo,
		JWT:           jwt,
		Pub:           pub,
		GCS:           gcs,
		GCSBucket:     gcsBucket,
		Logger:        logger,
		ResetTokenTTL: resetTokenTTL,
		ResetURL:      resetURL,
		MailEnabled:   mailEnabled,
		now:           time.Now,
	}
}

// Session bundles an issued session token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates an account and issues a session token. The welcome
// email is fire-and-forget: a queue hiccup never fails registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.User, Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.Repo.GetByEmail(email); err == nil && existing != nil {
		return nil, Session{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, Session{}, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, Session{}, err
	}
	u := &entity.User{Name: name, Email: email, Password: hash}
	if err := s.Repo.Create(u); err != nil {
		return nil, Session{}, err
	}

	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}

	if s.MailEnabled && s.Pub != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateWelcome,
			Data:     map[string]any{"Name": u.Name},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
		}
	}

	return u, sess, nil
}

// Login validates credentials and issues a session token. Unknown
// email and wrong password are the same failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.GetByEmail(email)
	if err != nil || u == nil {
		return nil, Session{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, Session{}, ErrInvalidCredentials
	}
	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

func (s *AuthService) issueSession(userID string) (Session, error) {
	token, exp, err := s.JWT.GenerateSessionToken(userID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("session token generation failed")
		}
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) GetProfile(userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name            string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile changes the display name and, when a new password is
// supplied, rotates the password after checking the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, Validation("currentPassword", "is required to change password")
		}
		if !helpers.CompareHashAndPassword(u.Password, in.CurrentPassword) {
			return nil, ErrInvalidCredentials
		}
		hash, err := helpers.HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if in.Name != "" {
		u.Name = in.Name
	}

	if err := s.Repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the avatar in GCS and records the public URL.
func (s *AuthService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Repo.Update(u); err != nil {
		return "", err
	}
	return url, nil
}

// RequestPasswordReset issues a reset token for the account behind
// email. An unknown email is not an error: the caller sees the same
// generic success either way so addresses cannot be enumerated. Only
// the sha256 of the token is persisted; the plaintext leaves the
// process exactly once, inside the queued email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.GetByEmail(email)
	if err != nil || u == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("password reset requested for unknown email")
		}
		return nil
	}

	plaintext, err := helpers.GenResetToken()
	if err != nil {
		return err
	}
	u.ResetTokenHash = helpers.HashResetToken(plaintext)
	u.ResetTokenExpires = s.now().Add(s.ResetTokenTTL)
	if err := s.Repo.Update(u); err != nil {
		return err
	}

	if !s.MailEnabled || s.Pub == nil {
		return nil
	}

	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":      u.Name,
			"ResetURL":  s.ResetURL + "/" + plaintext,
			"ExpiresIn": s.ResetTokenTTL.String(),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		// The token was persisted but can never reach the user. Clear
		// it for this user only, then report the transient failure.
		u.ClearResetToken()
		if cerr := s.Repo.Update(u); cerr != nil && s.Logger != nil {
			s.Logger.WithError(cerr).WithField("user_id", u.ID).Error("reset token cleanup failed")
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("reset email enqueue failed")
		}
		return ErrUpstreamUnavailable
	}
	return nil
}

// ResetPassword consumes a reset token: the stored hash must match and
// must not be expired, and both checks fail identically. The password
// write and the token clear are one repository update, so a token is
// consumable at most once.
func (s *AuthService) ResetPassword(ctx context.Context, plaintextToken, newPassword string) error {
	u, err := s.Repo.GetByResetTokenHash(helpers.HashResetToken(plaintextToken))
	if err != nil || u == nil {
		return ErrInvalidOrExpiredToken
	}
	if !u.HasActiveResetToken(s.now()) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	u.ClearResetToken()
	return s.Repo.Update(u)
}
