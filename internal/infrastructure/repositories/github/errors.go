package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

type operation int

const (
	opRead operation = iota
	opRefWrite
	opFork
)

// emptyRepositoryMessage is how GitHub words a fork of a repository without commits.
// It exposes no dedicated status or error code for this case.
const emptyRepositoryMessage = "contains no git content"

// classifyError maps a go-github failure onto the sentinel errors of the domain.
// Everything the domain reacts to is decided here and nowhere else.
func classifyError(op operation, action string, err error) error {
	var respErr *gh.ErrorResponse
	if !errors.As(err, &respErr) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	switch {
	case op == opFork && isEmptyRepository(respErr):
		return fmt.Errorf("failed to %s: %w: %w", action, entities.ErrEmptyRepository, err)
	case op == opRefWrite && respErr.Response != nil &&
		respErr.Response.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("failed to %s: %w: %w", action, entities.ErrTransientRefConflict, err)
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

func isEmptyRepository(respErr *gh.ErrorResponse) bool {
	if strings.Contains(strings.ToLower(respErr.Message), emptyRepositoryMessage) {
		return true
	}
	for _, e := range respErr.Errors {
		if strings.Contains(strings.ToLower(e.Message), emptyRepositoryMessage) {
			return true
		}
	}
	return false
}
