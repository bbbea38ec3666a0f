//go:build unit

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/orgmirror/internal/infrastructure/controllers"
	commanddoubles "github.com/rios0rios0/orgmirror/test/domain/commanddoubles"
)

func TestBuildRootCommand(t *testing.T) {
	t.Parallel()

	t.Run("should expose the controller flags", func(t *testing.T) {
		t.Parallel()

		// given
		controller := controllers.NewMirrorController(&commanddoubles.StubMirrorCommand{})

		// when
		cmd := buildRootCommand(controller)

		// then
		assert.Equal(t, "orgmirror", cmd.Use)
		for _, name := range []string{"config", "dry-run", "verbose", "max-passes", "metrics-file"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), name)
		}
	})

	t.Run("should reject positional arguments", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubMirrorCommand{}
		cmd := buildRootCommand(controllers.NewMirrorController(stub))
		cmd.SetArgs([]string{"unexpected"})

		// when
		err := cmd.Execute()

		// then
		require.Error(t, err)
		assert.Zero(t, stub.ExecuteCallCount)
	})
}
