// Package store persists fusion runs and their outputs.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadscope/prospect-cli/internal/model"
)

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the fusion pipeline.
type Store interface {
	CreateRun(ctx context.Context, run *model.Run) error
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// SaveOutput stores the result counts, accepted records, and rejection
	// entries of a completed run in one transaction.
	SaveOutput(ctx context.Context, runID string, result *model.RunResult, accepted []model.FusedRecord, rejected []model.Rejection) error

	// GetOutput returns the accepted records and rejections of a stored run.
	GetOutput(ctx context.Context, runID string) ([]model.FusedRecord, []model.Rejection, error)

	Migrate(ctx context.Context) error
	Close() error
}
