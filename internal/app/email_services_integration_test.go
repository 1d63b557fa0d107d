//go:build integration
// +build integration

package app

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

func createWelcomeTemplate(t *testing.T, services *TestServices, locale, subject string) *mail.EmailTemplate {
	t.Helper()

	tpl, err := services.Templates.Create(context.Background(), &mail.TemplateInput{
		Key:      "welcome",
		Name:     "Welcome",
		Subject:  subject,
		Body:     "<p>Hello {{ user.name }}, your email is {{user.email}}. {{ user.password_hash }} {{ team.name }}</p>",
		Locale:   locale,
		Entities: []string{"user"},
		IsActive: true,
	})
	require.NoError(t, err)
	return tpl
}

func TestEmailTemplateService_Send(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	user := services.CreateUser(t, "Ada <Admin>", "ada@example.com")
	createWelcomeTemplate(t, services, "en", "Welcome {{ user.name }}")

	rendered, err := services.Templates.Send(ctx, &mail.SendRequest{
		TemplateKey: "welcome",
		Locale:      "de",
		To:          []string{user.Email},
		Entities:    map[string]interface{}{"user": user.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome Ada <Admin>", rendered.Subject, "subjects are not escaped")
	assert.Contains(t, rendered.HTML, "Hello Ada &lt;Admin&gt;")
	assert.Contains(t, rendered.HTML, "{{ user.password_hash }}")
	assert.ElementsMatch(t, []string{"user.password_hash", "team.name"}, rendered.Unresolved)

	sent := services.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sent[0].Msg.To)
	assert.Equal(t, "config", sent[0].Creds.Source)
	assert.Contains(t, sent[0].Msg.Text, "Hello Ada <Admin>")
	assert.NotContains(t, sent[0].Msg.Text, "<p>")
}

func TestEmailTemplateService_SendPrefersLocale(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	createWelcomeTemplate(t, services, "en", "Welcome")
	createWelcomeTemplate(t, services, "de", "Willkommen")

	rendered, err := services.Templates.Send(context.Background(), &mail.SendRequest{
		TemplateKey: "welcome",
		Locale:      "de",
		To:          []string{"ada@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Willkommen", rendered.Subject)
}

func TestEmailTemplateService_SendUnknownTemplate(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	_, err := services.Templates.Send(context.Background(), &mail.SendRequest{TemplateKey: "missing", To: []string{"ada@example.com"}})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Empty(t, services.Mailer.Sent())
}

func TestEmailTemplateService_CreateRejectsUnknownEntity(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	_, err := services.Templates.Create(context.Background(), &mail.TemplateInput{
		Key:      "invoice",
		Name:     "Invoice",
		Subject:  "Invoice",
		Body:     "{{ invoice.total }}",
		Locale:   "en",
		Entities: []string{"invoice"},
	})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestEmailTemplateService_PreviewAndTags(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	user := services.CreateUser(t, "Ada", "ada@example.com")
	tpl := createWelcomeTemplate(t, services, "en", "Hi {{ user.name }}")

	rendered, err := services.Templates.Preview(context.Background(), tpl.ID, mail.EntityRef{"user": user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", rendered.Subject)
	assert.Empty(t, services.Mailer.Sent(), "previews are never mailed")

	tags, err := services.Templates.AvailableTags("user")
	require.NoError(t, err)
	assert.Contains(t, tags, "user.email")
	assert.NotContains(t, tags, "user.password_hash")
}

func TestMailSettingsService_Resolve(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	userID, teamID := uuid.NewString(), uuid.NewString()

	creds, err := services.MailSettings.Resolve(ctx, userID, teamID)
	require.NoError(t, err)
	assert.Equal(t, "config", creds.Source)
	assert.Equal(t, TestFromAddress, creds.FromAddress)

	save := func(scope, scopeID, from string) {
		saved, err := services.MailSettings.Save(ctx, &mail.Settings{
			Scope:       scope,
			ScopeID:     scopeID,
			Host:        "smtp.example.com",
			Port:        587,
			Username:    "mailer",
			Password:    "secret",
			Encryption:  "tls",
			FromAddress: from,
			IsActive:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "********", saved.Password)
	}

	save(mail.ScopeApp, "", "app@example.com")
	creds, err = services.MailSettings.Resolve(ctx, userID, teamID)
	require.NoError(t, err)
	assert.Equal(t, mail.ScopeApp, creds.Source)
	assert.Equal(t, "secret", creds.Password)

	save(mail.ScopeTeam, teamID, "team@example.com")
	creds, err = services.MailSettings.Resolve(ctx, userID, teamID)
	require.NoError(t, err)
	assert.Equal(t, "team@example.com", creds.FromAddress)

	save(mail.ScopeUser, userID, "user@example.com")
	creds, err = services.MailSettings.Resolve(ctx, userID, teamID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", creds.FromAddress)
	assert.Equal(t, config.MailDriverSMTP, creds.Driver)

	creds, err = services.MailSettings.Resolve(ctx, uuid.NewString(), "")
	require.NoError(t, err)
	assert.Equal(t, "app@example.com", creds.FromAddress)

	all, err := services.MailSettings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, s := range all {
		assert.Equal(t, "********", s.Password)
	}
}

func TestPasswordResetService_SendResetLinkAndReset(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	services.CreateUser(t, "Ada", "ada@example.com")

	require.NoError(t, services.PasswordReset.SendResetLink(ctx, "ada@example.com"))

	sent := services.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset your password", sent[0].Msg.Subject)

	link := resetLinkFrom(t, sent[0].Msg.Text)
	assert.True(t, strings.HasPrefix(link.String(), TestResetURL))
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", link.Query().Get("email"))

	err := services.PasswordReset.Reset(ctx, "ada@example.com", "not-the-token", "new-password-1")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	err = services.PasswordReset.Reset(ctx, "ada@example.com", token, "short")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	require.NoError(t, services.PasswordReset.Reset(ctx, "ada@example.com", token, "new-password-1"))

	_, _, err = services.Auth.Login(ctx, "ada@example.com", "new-password-1")
	require.NoError(t, err)

	err = services.PasswordReset.Reset(ctx, "ada@example.com", token, "new-password-2")
	assert.True(t, errors.Is(err, errs.ErrValidation), "tokens are single use")
}

func TestPasswordResetService_UsesTemplate(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	services.CreateUser(t, "Ada", "ada@example.com")

	_, err := services.Templates.Create(ctx, &mail.TemplateInput{
		Key:      PasswordResetTemplateKey,
		Name:     "Password reset",
		Subject:  "Reset for {{ user.name }}",
		Body:     `<a href="{{ reset.url }}">Reset</a> within {{ reset.expires_in }} minutes`,
		Locale:   "en",
		Entities: []string{"user"},
		IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, services.PasswordReset.SendResetLink(ctx, "ada@example.com"))

	sent := services.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset for Ada", sent[0].Msg.Subject)
	assert.Contains(t, sent[0].Msg.HTML, "within 60 minutes")
	assert.Contains(t, sent[0].Msg.HTML, "token=")
}

func TestPasswordResetService_UnknownEmailIsSilent(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	require.NoError(t, services.PasswordReset.SendResetLink(context.Background(), "nobody@example.com"))
	assert.Empty(t, services.Mailer.Sent())
}

func TestPasswordResetService_PruneExpired(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	services.CreateUser(t, "Ada", "ada@example.com")

	_, err := services.PasswordReset.CreateToken(ctx, "ada@example.com")
	require.NoError(t, err)

	n, err := services.PasswordReset.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh tokens are kept")

	n, err = services.DBContext.ResetTokenRepo.DeleteCreatedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func resetLinkFrom(t *testing.T, text string) *url.URL {
	t.Helper()

	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "http") {
			u, err := url.Parse(field)
			require.NoError(t, err)
			return u
		}
	}
	t.Fatalf("no link in %q", text)
	return nil
}
