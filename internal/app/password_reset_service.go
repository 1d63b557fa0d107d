package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// PasswordResetTemplateKey is the email template used for reset links when present
const PasswordResetTemplateKey = "password_reset"

// passwordResetService implements the rbac.PasswordResetService interface
type passwordResetService struct {
	users     rbac.UserRepository
	tokens    rbac.PasswordResetTokenRepository
	hasher    rbac.PasswordHasher
	templates mail.EmailTemplateService
	settings  mail.SettingsService
	mailer    mail.Mailer
	resetURL  string
	expiry    time.Duration
	now       func() time.Time
	logger    logger.Logger
}

// PasswordResetOptions configure the reset link and token lifetime
type PasswordResetOptions struct {
	// ResetURL receives the token and email as query parameters
	ResetURL string
	Expiry   time.Duration
}

// NewPasswordResetService creates a new instance of PasswordResetService
func NewPasswordResetService(
	users rbac.UserRepository,
	tokens rbac.PasswordResetTokenRepository,
	hasher rbac.PasswordHasher,
	templates mail.EmailTemplateService,
	settings mail.SettingsService,
	mailer mail.Mailer,
	opts PasswordResetOptions,
	logger logger.Logger,
) (rbac.PasswordResetService, error) {
	if opts.Expiry <= 0 {
		opts.Expiry = time.Hour
	}
	if _, err := url.Parse(opts.ResetURL); err != nil {
		return nil, fmt.Errorf("invalid reset url: %w", err)
	}
	return &passwordResetService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		templates: templates,
		settings:  settings,
		mailer:    mailer,
		resetURL:  opts.ResetURL,
		expiry:    opts.Expiry,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}, nil
}

// CreateToken replaces any previous token of email and returns the plain value
func (s *passwordResetService) CreateToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}

	plain := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return "", err
	}

	token := &rbac.PasswordResetToken{
		Email:     user.Email,
		TokenHash: hash,
		CreatedAt: s.now(),
	}
	if err := s.tokens.Put(ctx, token); err != nil {
		return "", err
	}
	return plain, nil
}

// SendResetLink mails a reset link. Unknown emails succeed silently.
func (s *passwordResetService) SendResetLink(ctx context.Context, email string) error {
	plain, err := s.CreateToken(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		s.logger.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	link := s.link(user.Email, plain)

	if s.templates != nil {
		_, err := s.templates.Send(ctx, &mail.SendRequest{
			TemplateKey: PasswordResetTemplateKey,
			Locale:      user.Locale,
			To:          []string{user.Email},
			Entities: map[string]interface{}{
				"user":  map[string]interface{}{"name": user.Name, "email": user.Email},
				"reset": map[string]interface{}{"url": link, "expires_in": int(s.expiry.Minutes())},
			},
			UserID: user.ID,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return err
		}
	}

	creds, err := s.settings.Resolve(ctx, user.ID, "")
	if err != nil {
		return err
	}
	msg := &mail.Message{
		To:      []string{user.Email},
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Open %s to choose a new password. The link expires in %d minutes.", link, int(s.expiry.Minutes())),
		HTML: fmt.Sprintf(`<p>Open <a href="%s">this link</a> to choose a new password. The link expires in %d minutes.</p>`,
			html.EscapeString(link), int(s.expiry.Minutes())),
	}
	if err := s.mailer.Send(ctx, creds, msg); err != nil {
		return fmt.Errorf("failed to send reset link: %w", err)
	}
	s.logger.Info("Sent password reset link to user ", user.ID)
	return nil
}

// Reset sets a new password when token matches the stored one. Tokens are single
// use and expire after the configured window.
func (s *passwordResetService) Reset(ctx context.Context, email, token, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 72 {
		return errs.Validation("password must be between 8 and 72 characters", map[string]string{"Password": "min"})
	}

	stored, err := s.tokens.Get(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.Invalid("invalid reset token")
		}
		return err
	}
	if stored.Expired(s.now(), s.expiry) {
		if err := s.tokens.Delete(ctx, stored.Email); err != nil {
			s.logger.Warn("Failed to delete expired reset token: ", err)
		}
		return errs.Invalid("reset token expired")
	}
	if !s.hasher.Compare(stored.TokenHash, token) {
		return errs.Invalid("invalid reset token")
	}

	user, err := s.users.GetByEmail(ctx, stored.Email)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, stored.Email); err != nil {
		return err
	}

	s.logger.Info("Reset password of user ", user.ID)
	return nil
}

// PruneExpired deletes tokens older than the expiry window
func (s *passwordResetService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteCreatedBefore(ctx, s.now().Add(-s.expiry))
	if err != nil {
		return 0, err
	}
	s.logger.Info("Pruned ", n, " expired password reset tokens")
	return n, nil
}

func (s *passwordResetService) link(email, token string) string {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return s.resetURL
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String()
}
