package workflow

import (
	"context"
	"errors"

	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/pkg/interfaces"
)

// ErrEngineRequired is returned when moderation runs without an engine.
var ErrEngineRequired = errors.New("workflow: engine required")

// Moderate resolves input against the workflow registered for kind and
// returns the applied transition. Callers persist result.ToState.
func Moderate(ctx context.Context, engine interfaces.WorkflowEngine, kind domain.Kind, current domain.Status, input domain.ModerationInput) (*interfaces.TransitionResult, domain.Status, error) {
	if engine == nil {
		return nil, "", ErrEngineRequired
	}
	result, err := engine.Transition(ctx, interfaces.TransitionInput{
		EntityID:     input.ID,
		EntityType:   string(kind),
		CurrentState: stateOf(current),
		Transition:   input.Action,
		ActorID:      input.ActorID,
		Note:         input.Note,
	})
	if err != nil {
		return nil, "", err
	}
	return result, domain.Status(result.ToState), nil
}
