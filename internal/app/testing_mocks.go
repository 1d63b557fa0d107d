//go:build unit
// +build unit

package app

import (
	"context"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"

	"github.com/stretchr/testify/mock"
)

// MockQueryBuilder is a mock implementation of datatable.QueryBuilder
type MockQueryBuilder struct {
	mock.Mock
}

func (m *MockQueryBuilder) Execute(ctx context.Context, def datatable.Definition, req datatable.Request) (*datatable.Page, error) {
	args := m.Called(ctx, def, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datatable.Page), args.Error(1)
}

func (m *MockQueryBuilder) CountAll(ctx context.Context, def datatable.Definition) (int64, error) {
	args := m.Called(ctx, def)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueryBuilder) FindByIDs(ctx context.Context, def datatable.Definition, ids []string) ([]datatable.Record, error) {
	args := m.Called(ctx, def, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datatable.Record), args.Error(1)
}

func (m *MockQueryBuilder) MatchingIDs(ctx context.Context, def datatable.Definition, req datatable.Request) ([]string, error) {
	args := m.Called(ctx, def, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockErrorChannel is a mock implementation of errorlog.Channel
type MockErrorChannel struct {
	mock.Mock
	name     string
	external bool
}

// NewMockErrorChannel creates a channel mock reporting name and external
func NewMockErrorChannel(name string, external bool) *MockErrorChannel {
	return &MockErrorChannel{name: name, external: external}
}

func (m *MockErrorChannel) Name() string   { return m.name }
func (m *MockErrorChannel) External() bool { return m.external }

func (m *MockErrorChannel) Send(ctx context.Context, entry *errorlog.ErrorLog, report *errorlog.Report) error {
	args := m.Called(ctx, entry, report)
	return args.Error(0)
}
