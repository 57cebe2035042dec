package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/workflow"
)

// Text codes attached to command failures. Callers branch on the category;
// the code names the outcome for API clients and logs.
const (
	CodeInvalidCommand     = "SITE_COMMAND_INVALID"
	CodeRecordNotFound     = "SITE_RECORD_NOT_FOUND"
	CodeTransitionRejected = "SITE_TRANSITION_REJECTED"
	CodeSlugTaken          = "SITE_SLUG_TAKEN"
	CodeCancelled          = "SITE_COMMAND_CANCELLED"
	CodeTimedOut           = "SITE_COMMAND_TIMED_OUT"
	CodeFailed             = "SITE_COMMAND_FAILED"
)

// ErrorCode returns the text code carried by a command error, or "".
func ErrorCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}

func tag(err error, category goerrors.Category, code, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return tag(err, goerrors.CategoryValidation, CodeInvalidCommand, "command rejected")
}

func wrapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return tag(err, goerrors.CategoryCommand, CodeTimedOut, "command timed out")
	}
	return tag(err, goerrors.CategoryCommand, CodeCancelled, "command cancelled")
}

// wrapExecuteError tags failures reported by the content services so the
// HTTP layer and CLI can tell a missing record from a refused transition.
func wrapExecuteError(err error) error {
	var (
		eventMissing   *events.NotFoundError
		jobMissing     *jobs.NotFoundError
		articleMissing *articles.NotFoundError
	)
	switch {
	case errors.As(err, &eventMissing), errors.As(err, &jobMissing), errors.As(err, &articleMissing):
		return tag(err, goerrors.CategoryNotFound, CodeRecordNotFound, "record not found")
	case errors.Is(err, workflow.ErrInvalidTransition):
		return tag(err, goerrors.CategoryConflict, CodeTransitionRejected, "moderation transition rejected")
	case errors.Is(err, events.ErrSlugExists), errors.Is(err, jobs.ErrSlugExists), errors.Is(err, articles.ErrSlugExists):
		return tag(err, goerrors.CategoryConflict, CodeSlugTaken, "slug already taken")
	default:
		return tag(err, goerrors.CategoryCommand, CodeFailed, "command failed")
	}
}
