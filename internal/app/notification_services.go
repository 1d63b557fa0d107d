package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// AllChannels are used when Send is called without channels
var AllChannels = []string{
	notifications.ChannelDatabase,
	notifications.ChannelBroadcast,
	notifications.ChannelToast,
	notifications.ChannelMail,
}

// notificationService implements the notifications.Service interface
type notificationService struct {
	repo        notifications.Repository
	toasts      notifications.ToastStore
	broadcaster notifications.Broadcaster
	templates   mail.EmailTemplateService
	settings    mail.SettingsService
	mailer      mail.Mailer
	now         func() time.Time
	logger      logger.Logger
}

// NewNotificationService creates a new instance of notifications.Service
func NewNotificationService(
	repo notifications.Repository,
	toasts notifications.ToastStore,
	broadcaster notifications.Broadcaster,
	templates mail.EmailTemplateService,
	settings mail.SettingsService,
	mailer mail.Mailer,
	logger logger.Logger,
) (notifications.Service, error) {
	return &notificationService{
		repo:        repo,
		toasts:      toasts,
		broadcaster: broadcaster,
		templates:   templates,
		settings:    settings,
		mailer:      mailer,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}, nil
}

// Send delivers msg to recipients over every requested channel concurrently and
// joins the errors of failed channels. When both the database and the broadcast
// channel are requested, the stored notification is broadcast once it is saved.
func (s *notificationService) Send(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient, channels ...string) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if len(channels) == 0 {
		channels = AllChannels
	}

	requested := make(map[string]bool, len(channels))
	for _, c := range channels {
		switch c {
		case notifications.ChannelDatabase, notifications.ChannelBroadcast, notifications.ChannelToast, notifications.ChannelMail:
			requested[c] = true
		default:
			return errs.Invalid("unknown notification channel %s", c)
		}
	}

	var jobs []func(context.Context) error
	if requested[notifications.ChannelDatabase] {
		broadcast := requested[notifications.ChannelBroadcast]
		jobs = append(jobs, func(ctx context.Context) error { return s.deliverDatabase(ctx, msg, recipients, broadcast) })
	} else if requested[notifications.ChannelBroadcast] {
		jobs = append(jobs, func(ctx context.Context) error { return s.deliverBroadcast(ctx, msg, recipients) })
	}
	if requested[notifications.ChannelToast] {
		jobs = append(jobs, func(ctx context.Context) error { return s.deliverToast(ctx, msg, recipients) })
	}
	if requested[notifications.ChannelMail] {
		jobs = append(jobs, func(ctx context.Context) error { return s.deliverMail(ctx, msg, recipients) })
	}

	results := make([]error, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = job(ctx)
			return results[i]
		})
	}
	_ = g.Wait()

	if err := errors.Join(results...); err != nil {
		s.logger.Error("Notification ", msg.Type, " failed on some channels: ", err)
		return err
	}
	s.logger.Info("Sent notification ", msg.Type, " to ", len(recipients), " recipients over ", len(requested), " channels")
	return nil
}

func (s *notificationService) newNotification(msg *notifications.Message, userID string) *notifications.Notification {
	return &notifications.Notification{
		ID:           uuid.NewString(),
		Type:         msg.Type,
		NotifiableID: userID,
		Title:        msg.Title,
		Message:      msg.Body,
		Level:        msg.Level,
		Data:         msg.Data,
		CreatedAt:    s.now(),
	}
}

func (s *notificationService) deliverDatabase(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient, broadcast bool) error {
	var failed []error
	for _, r := range recipients {
		if r.UserID == "" {
			continue
		}
		n := s.newNotification(msg, r.UserID)
		if err := s.repo.Create(ctx, n); err != nil {
			failed = append(failed, fmt.Errorf("database channel: %w", err))
			continue
		}
		if broadcast {
			if err := s.publishNotification(ctx, n); err != nil {
				failed = append(failed, err)
			}
		}
	}
	return errors.Join(failed...)
}

func (s *notificationService) deliverBroadcast(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient) error {
	var failed []error
	for _, r := range recipients {
		if r.UserID == "" {
			continue
		}
		event := &notifications.Event{
			Kind:         notifications.EventNotification,
			Notification: s.newNotification(msg, r.UserID),
		}
		if err := s.broadcaster.Publish(ctx, r.UserID, event); err != nil {
			failed = append(failed, fmt.Errorf("broadcast channel: %w", err))
		}
	}
	return errors.Join(failed...)
}

func (s *notificationService) publishNotification(ctx context.Context, n *notifications.Notification) error {
	unread, err := s.repo.CountUnread(ctx, n.NotifiableID)
	if err != nil {
		return fmt.Errorf("broadcast channel: %w", err)
	}
	event := &notifications.Event{
		Kind:         notifications.EventNotification,
		Notification: n,
		UnreadCount:  unread,
	}
	if err := s.broadcaster.Publish(ctx, n.NotifiableID, event); err != nil {
		return fmt.Errorf("broadcast channel: %w", err)
	}
	return nil
}

func (s *notificationService) deliverToast(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient) error {
	var failed []error
	for _, r := range recipients {
		if r.SessionID == "" && r.UserID == "" {
			continue
		}
		if err := s.Toast(ctx, r.SessionID, r.UserID, msg.Level, msg.Title, msg.Body); err != nil {
			failed = append(failed, fmt.Errorf("toast channel: %w", err))
		}
	}
	return errors.Join(failed...)
}

func (s *notificationService) deliverMail(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient) error {
	var failed []error
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		if err := s.mailOne(ctx, msg, r); err != nil {
			failed = append(failed, fmt.Errorf("mail channel: %w", err))
		}
	}
	return errors.Join(failed...)
}

func (s *notificationService) mailOne(ctx context.Context, msg *notifications.Message, r notifications.Recipient) error {
	if msg.MailTemplate != "" {
		entities := map[string]interface{}{
			"notification": map[string]interface{}{
				"type":  msg.Type,
				"title": msg.Title,
				"body":  msg.Body,
				"level": string(msg.Level),
			},
		}
		if r.UserID != "" {
			entities["user"] = r.UserID
		}
		_, err := s.templates.Send(ctx, &mail.SendRequest{
			TemplateKey: msg.MailTemplate,
			Locale:      r.Locale,
			To:          []string{r.Email},
			Entities:    entities,
			UserID:      r.UserID,
		})
		return err
	}

	creds, err := s.settings.Resolve(ctx, r.UserID, "")
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, creds, &mail.Message{
		To:      []string{r.Email},
		Subject: msg.Title,
		HTML:    "<p>" + html.EscapeString(msg.Body) + "</p>",
		Text:    msg.Body,
	})
}

// Toast queues a toast for the session and pushes it to live subscribers of userID.
// Either sessionID or userID may be empty.
func (s *notificationService) Toast(ctx context.Context, sessionID, userID string, level notifications.Level, title, message string) error {
	toast := &notifications.Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	if sessionID != "" {
		if err := s.toasts.Push(ctx, sessionID, toast); err != nil {
			return err
		}
	}
	if userID != "" {
		event := &notifications.Event{Kind: notifications.EventToast, Toast: toast}
		if err := s.broadcaster.Publish(ctx, userID, event); err != nil {
			return err
		}
	}
	return nil
}

// PullToasts returns and clears the queued toasts of a session
func (s *notificationService) PullToasts(ctx context.Context, sessionID string) ([]*notifications.Toast, error) {
	if sessionID == "" {
		return []*notifications.Toast{}, nil
	}
	return s.toasts.Pull(ctx, sessionID)
}

// List pages through the notifications of a user, newest first
func (s *notificationService) List(ctx context.Context, userID string, query *notifications.ListQuery) ([]*notifications.Notification, int64, error) {
	if query == nil {
		query = &notifications.ListQuery{}
	}
	return s.repo.List(ctx, userID, query)
}

// UnreadCount counts unread notifications
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one notification read and publishes the new unread count
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID, s.now()); err != nil {
		return err
	}
	s.publishRead(ctx, userID)
	return nil
}

// MarkAllRead marks every notification of the user read
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publishRead(ctx, userID)
	}
	return n, nil
}

func (s *notificationService) publishRead(ctx context.Context, userID string) {
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to count unread notifications of user ", userID, ": ", err)
		return
	}
	event := &notifications.Event{Kind: notifications.EventRead, UnreadCount: unread}
	if err := s.broadcaster.Publish(ctx, userID, event); err != nil {
		s.logger.Warn("Failed to publish read event for user ", userID, ": ", err)
	}
}

// Subscribe streams live events of userID until ctx is done
func (s *notificationService) Subscribe(ctx context.Context, userID string) (<-chan *notifications.Event, error) {
	return s.broadcaster.Subscribe(ctx, userID)
}

// PruneRead deletes read notifications older than olderThan
func (s *notificationService) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	s.logger.Info("Pruned ", n, " read notifications")
	return n, nil
}
