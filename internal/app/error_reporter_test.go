//go:build unit
// +build unit

package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"
)

type reporterFixture struct {
	reporter errorlog.Reporter
	toast    *MockErrorChannel
	log      *MockErrorChannel
	slack    *MockErrorChannel
	email    *MockErrorChannel
}

func newReporterFixture(t *testing.T, dontReport ...string) *reporterFixture {
	t.Helper()

	f := &reporterFixture{
		toast: NewMockErrorChannel(config.ErrorChannelToast, false),
		log:   NewMockErrorChannel(config.ErrorChannelLog, false),
		slack: NewMockErrorChannel(config.ErrorChannelSlack, true),
		email: NewMockErrorChannel(config.ErrorChannelEmail, true),
	}
	settings := &config.ErrorHandlingSettings{
		Channels:        []string{config.ErrorChannelToast, config.ErrorChannelLog, config.ErrorChannelSlack, config.ErrorChannelEmail},
		SlackWebhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
		EmailRecipients: []string{"ops@example.com"},
		DontReport:      dontReport,
	}

	var err error
	f.reporter, err = NewErrorReporter(settings, []errorlog.Channel{f.toast, f.log, f.slack, f.email}, testutil.SetupTestLogger(t))
	require.NoError(t, err)
	return f
}

func (f *reporterFixture) assertExpectations(t *testing.T) {
	f.toast.AssertExpectations(t)
	f.log.AssertExpectations(t)
	f.slack.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestErrorReporter_InternalErrorReachesEveryChannel(t *testing.T) {
	f := newReporterFixture(t, errs.KindValidation)

	for _, c := range []*MockErrorChannel{f.toast, f.log, f.slack, f.email} {
		c.On("Send", mock.Anything, mock.MatchedBy(func(e *errorlog.ErrorLog) bool {
			return e.Kind == errs.KindInternal && e.Level == errorlog.LevelError
		}), mock.Anything).Return(nil).Once()
	}

	ref := f.reporter.Report(context.Background(), &errorlog.Report{Err: errors.New("boom")})

	assert.NotEmpty(t, ref)
	f.assertExpectations(t)
}

func TestErrorReporter_DontReportKindsOnlyReachToast(t *testing.T) {
	f := newReporterFixture(t, errs.KindNotFound)

	f.toast.On("Send", mock.Anything, mock.MatchedBy(func(e *errorlog.ErrorLog) bool {
		return e.Kind == errs.KindNotFound && e.Level == errorlog.LevelWarning
	}), mock.Anything).Return(nil).Once()

	f.reporter.Report(context.Background(), &errorlog.Report{Err: errs.NotFound("user with ID %s", "x")})

	f.assertExpectations(t)
	f.log.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestErrorReporter_ValidationNeverLeavesTheApplication(t *testing.T) {
	// validation is not listed in dont_report, so internal channels still see it
	f := newReporterFixture(t)

	f.toast.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.log.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	f.reporter.Report(context.Background(), &errorlog.Report{Err: errs.Invalid("name is required")})

	f.assertExpectations(t)
	f.slack.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestErrorReporter_ChannelFailureDoesNotStopOthers(t *testing.T) {
	f := newReporterFixture(t)

	f.toast.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("redis down")).Once()
	f.log.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.slack.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("timeout")).Once()
	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	ref := f.reporter.Report(context.Background(), &errorlog.Report{Err: errors.New("boom")})

	assert.NotEmpty(t, ref)
	f.assertExpectations(t)
}

func TestErrorReporter_Entry(t *testing.T) {
	f := newReporterFixture(t, errs.KindValidation)

	userID := uuid.NewString()
	var got *errorlog.ErrorLog
	f.toast.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*errorlog.ErrorLog) }).
		Return(nil).Once()
	for _, c := range []*MockErrorChannel{f.log, f.slack, f.email} {
		c.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	}

	ref := f.reporter.Report(context.Background(), &errorlog.Report{
		Err:    errors.New("nil map write"),
		Panic:  true,
		URL:    "/api/v1/users",
		Method: "POST",
		UserID: userID,
	})

	require.NotNil(t, got)
	assert.Equal(t, ref, got.Reference)
	assert.Equal(t, errorlog.LevelCritical, got.Level)
	assert.Equal(t, "nil map write", got.Message)
	assert.Equal(t, "*errors.errorString", got.ErrorType)
	require.NotNil(t, got.UserID)
	assert.Equal(t, userID, *got.UserID)
}

func TestErrorReporter_IgnoresNonUUIDUser(t *testing.T) {
	f := newReporterFixture(t, errs.KindAuthentication)

	var got *errorlog.ErrorLog
	f.toast.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*errorlog.ErrorLog) }).
		Return(nil).Once()

	f.reporter.Report(context.Background(), &errorlog.Report{Err: errs.ErrUnauthenticated, UserID: "anonymous"})

	require.NotNil(t, got)
	assert.Nil(t, got.UserID)
	assert.Equal(t, errs.KindAuthentication, got.Kind)
}

func TestNewErrorReporter_SkipsDisabledChannels(t *testing.T) {
	toast := NewMockErrorChannel(config.ErrorChannelToast, false)
	slack := NewMockErrorChannel(config.ErrorChannelSlack, true)

	reporter, err := NewErrorReporter(&config.ErrorHandlingSettings{
		Channels: []string{config.ErrorChannelToast},
	}, []errorlog.Channel{toast, slack}, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	toast.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	reporter.Report(context.Background(), &errorlog.Report{Err: errors.New("boom")})

	toast.AssertExpectations(t)
	slack.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewErrorReporter_InvalidSettings(t *testing.T) {
	_, err := NewErrorReporter(&config.ErrorHandlingSettings{
		Channels: []string{config.ErrorChannelSlack},
	}, nil, testutil.SetupTestLogger(t))
	require.Error(t, err)
}

func TestToastMessage(t *testing.T) {
	tests := []struct {
		kind          string
		expectedTitle string
	}{
		{errs.KindValidation, "Please check your input"},
		{errs.KindAuthentication, "Authentication required"},
		{errs.KindAuthorization, "Not allowed"},
		{errs.KindNotFound, "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			title, message := ToastMessage(&errorlog.ErrorLog{Kind: tt.kind, Message: "details"})
			assert.Equal(t, tt.expectedTitle, title)
			assert.Equal(t, "details", message)
		})
	}

	title, message := ToastMessage(&errorlog.ErrorLog{Kind: errs.KindInternal, Message: "sql: connection refused", Reference: "ERR-ABC123"})
	assert.Equal(t, "Something went wrong", title)
	assert.Contains(t, message, "ERR-ABC123")
	assert.NotContains(t, message, "sql")
}

func TestLogErrorChannel_AttachesReferenceAttributes(t *testing.T) {
	log, buf := testutil.CaptureLogger(config.LogLevelDebug)
	channel := NewLogErrorChannel(log)
	userID := uuid.NewString()

	err := channel.Send(context.Background(), &errorlog.ErrorLog{
		Reference: "ERR-ABCD1234",
		Level:     errorlog.LevelCritical,
		Kind:      "internal",
		Message:   "boom",
		Method:    "POST",
		URL:       "/api/v1/users",
		UserID:    &userID,
		Stack:     "goroutine 1",
	}, &errorlog.Report{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"boom"`)
	assert.Contains(t, out, `"reference":"ERR-ABCD1234"`)
	assert.Contains(t, out, `"kind":"internal"`)
	assert.Contains(t, out, `"url":"/api/v1/users"`)
	assert.Contains(t, out, `"user_id":"`+userID+`"`)
	assert.Contains(t, out, "stack: goroutine 1")
}
