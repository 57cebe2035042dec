package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkflowState is a lifecycle stage of a moderated record.
type WorkflowState string

// WorkflowEngine applies moderation transitions.
type WorkflowEngine interface {
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	AvailableTransitions(ctx context.Context, query TransitionQuery) ([]WorkflowTransition, error)
	RegisterWorkflow(ctx context.Context, definition WorkflowDefinition) error
}

// TransitionInput identifies the record and the transition to apply.
type TransitionInput struct {
	EntityID     uuid.UUID
	EntityType   string
	CurrentState WorkflowState
	Transition   string
	ActorID      string
	Note         string
}

// TransitionResult describes an applied transition.
type TransitionResult struct {
	EntityID    uuid.UUID
	EntityType  string
	Transition  string
	FromState   WorkflowState
	ToState     WorkflowState
	CompletedAt time.Time
	ActorID     string
	Note        string
}

// TransitionQuery asks which transitions leave a state.
type TransitionQuery struct {
	EntityType string
	State      WorkflowState
}

// WorkflowDefinition is the state machine for one entity type.
type WorkflowDefinition struct {
	EntityType   string
	InitialState WorkflowState
	States       []WorkflowStateDefinition
	Transitions  []WorkflowTransition
}

// WorkflowStateDefinition documents a state.
type WorkflowStateDefinition struct {
	Name        WorkflowState
	Description string
	Terminal    bool
}

// WorkflowTransition is an allowed move between two states.
type WorkflowTransition struct {
	Name        string
	Description string
	From        WorkflowState
	To          WorkflowState
}
