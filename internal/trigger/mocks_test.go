package trigger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/folio/internal/build"
	"github.com/thoreinstein/folio/internal/publish"
)

type mockBuilder struct {
	mock.Mock
}

func (m *mockBuilder) Build(ctx context.Context, generation uint64) (*build.Output, error) {
	args := m.Called(ctx, generation)
	out, _ := args.Get(0).(*build.Output)
	return out, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) NextGeneration() (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

// Stage passes the commit recorded by opts as the third argument.
func (m *mockStore) Stage(ctx context.Context, out *build.Output, opts ...publish.StageOption) (*publish.Staged, error) {
	var manifest publish.Manifest
	for _, opt := range opts {
		opt(&manifest)
	}
	args := m.Called(ctx, out, manifest.Commit)
	staged, _ := args.Get(0).(*publish.Staged)
	return staged, args.Error(1)
}

func (m *mockStore) Promote(staged *publish.Staged) error {
	return m.Called(staged).Error(0)
}

func (m *mockStore) Discard(staged *publish.Staged) error {
	return m.Called(staged).Error(0)
}

func (m *mockStore) Prune(keep int) ([]uint64, error) {
	args := m.Called(keep)
	removed, _ := args.Get(0).([]uint64)
	return removed, args.Error(1)
}

func (m *mockStore) RecordFailure(report publish.FailureReport) error {
	return m.Called(report).Error(0)
}

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) Sync(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Started(ev Event, generation uint64) {
	m.Called(ev, generation)
}

func (m *mockReporter) Finished(o Outcome) {
	m.Called(o)
}
