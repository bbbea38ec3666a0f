//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/orgmirror/internal/domain/commands"
	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

// StubMirrorCommand is a stub implementation of commands.Mirror.
type StubMirrorCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Summary          entities.RunSummary
	LastSettings     *entities.Settings
	LastOpts         commands.MirrorOptions
}

var _ commands.Mirror = (*StubMirrorCommand)(nil)

func (s *StubMirrorCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.MirrorOptions,
) (entities.RunSummary, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.Summary, s.ExecuteErr
}
