package app

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// neverExternal are error kinds no external channel receives, whatever dont_report says
var neverExternal = map[string]bool{
	errs.KindValidation:     true,
	errs.KindAuthentication: true,
}

// errorReporter implements the errorlog.Reporter interface
type errorReporter struct {
	channels   []errorlog.Channel
	dontReport map[string]bool
	now        func() time.Time
	logger     logger.Logger
}

// NewErrorReporter creates a Reporter over the channels enabled in settings. Channels
// whose name is not enabled are ignored.
func NewErrorReporter(settings *config.ErrorHandlingSettings, channels []errorlog.Channel, logger logger.Logger) (errorlog.Reporter, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var enabled []errorlog.Channel
	for _, c := range channels {
		if settings.Enabled(c.Name()) {
			enabled = append(enabled, c)
		}
	}
	dontReport := make(map[string]bool, len(settings.DontReport))
	for _, kind := range settings.DontReport {
		dontReport[kind] = true
	}

	return &errorReporter{
		channels:   enabled,
		dontReport: dontReport,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}, nil
}

// Report sends the error to the accepting channels and returns its reference.
// Errors of dont_report kinds only reach the toast channel. Channel failures are
// logged and never returned.
func (r *errorReporter) Report(ctx context.Context, report *errorlog.Report) string {
	entry := r.newEntry(report)

	for _, c := range r.channels {
		if !r.accepts(c, entry.Kind) {
			continue
		}
		if err := c.Send(ctx, entry, report); err != nil {
			r.logger.Error("Error channel ", c.Name(), " failed for reference ", entry.Reference, ": ", err)
		}
	}
	return entry.Reference
}

func (r *errorReporter) accepts(c errorlog.Channel, kind string) bool {
	if r.dontReport[kind] && c.Name() != config.ErrorChannelToast {
		return false
	}
	if c.External() && neverExternal[kind] {
		return false
	}
	return true
}

func (r *errorReporter) newEntry(report *errorlog.Report) *errorlog.ErrorLog {
	kind := errs.Kind(report.Err)
	if kind == "" {
		kind = errs.KindInternal
	}

	level := errorlog.LevelWarning
	switch {
	case report.Panic:
		level = errorlog.LevelCritical
	case kind == errs.KindInternal:
		level = errorlog.LevelError
	}

	message := report.Message
	errorType := ""
	if report.Err != nil {
		if message == "" {
			message = report.Err.Error()
		}
		errorType = reflect.TypeOf(report.Err).String()
	}
	if message == "" {
		message = "unknown error"
	}

	entry := &errorlog.ErrorLog{
		ID:        uuid.NewString(),
		Reference: errorlog.NewReference(),
		Level:     level,
		Kind:      kind,
		Message:   message,
		ErrorType: errorType,
		Stack:     report.Stack,
		URL:       report.URL,
		Method:    report.Method,
		IP:        report.IP,
		Context:   report.Context,
		CreatedAt: r.now(),
	}
	if _, err := uuid.Parse(report.UserID); err == nil {
		userID := report.UserID
		entry.UserID = &userID
	}
	return entry
}

// errorLogService implements the errorlog.Service interface
type errorLogService struct {
	repo   errorlog.Repository
	logger logger.Logger
}

// NewErrorLogService creates a new instance of errorlog.Service
func NewErrorLogService(repo errorlog.Repository, logger logger.Logger) (errorlog.Service, error) {
	return &errorLogService{repo: repo, logger: logger}, nil
}

// GetByID loads an error log by id or reference
func (s *errorLogService) GetByID(ctx context.Context, id string) (*errorlog.ErrorLog, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolve marks unresolved errors resolved by userID
func (s *errorLogService) Resolve(ctx context.Context, ids []string, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.Resolve(ctx, ids, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	s.logger.Info("User ", userID, " resolved ", n, " errors")
	return n, nil
}

// DeleteByIDs deletes error logs
func (s *errorLogService) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteByIDs(ctx, ids)
}

// PruneResolved deletes errors resolved more than olderThan ago
func (s *errorLogService) PruneResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.repo.DeleteResolvedBefore(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	s.logger.Info("Pruned ", n, " resolved errors")
	return n, nil
}
