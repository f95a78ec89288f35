package mock

import (
	"context"

	"github.com/fwojciec/sitepdf"
)

var _ sitepdf.RunService = (*RunService)(nil)

// RunService is a mock implementation of sitepdf.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *sitepdf.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*sitepdf.Run, error)
	FindRunsFn    func(ctx context.Context, filter sitepdf.RunFilter) ([]*sitepdf.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *sitepdf.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*sitepdf.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter sitepdf.RunFilter) ([]*sitepdf.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

var _ sitepdf.StatusStore = (*StatusStore)(nil)

// StatusStore is a mock implementation of sitepdf.StatusStore.
type StatusStore struct {
	SetStatusFn func(ctx context.Context, status sitepdf.Status) error
	GetStatusFn func(ctx context.Context, runID string) (sitepdf.Status, bool, error)
}

func (s *StatusStore) SetStatus(ctx context.Context, status sitepdf.Status) error {
	return s.SetStatusFn(ctx, status)
}

func (s *StatusStore) GetStatus(ctx context.Context, runID string) (sitepdf.Status, bool, error) {
	return s.GetStatusFn(ctx, runID)
}
