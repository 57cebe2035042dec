package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/pkg/interfaces"
)

var (
	// ErrUnknownEntityType indicates no workflow is registered for the entity.
	ErrUnknownEntityType = errors.New("workflow: entity type not registered")
	// ErrInvalidTransition indicates the transition is not allowed from the current state.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrMissingTransition indicates the input did not name a transition.
	ErrMissingTransition = errors.New("workflow: transition name required")
	// ErrNilEntityID signals input validation failure.
	ErrNilEntityID = errors.New("workflow: entity id required")
)

// Engine is an in-memory state machine that validates moderation transitions.
// It never persists anything; callers store the resulting state.
type Engine struct {
	mu          sync.RWMutex
	definitions map[string]*compiledDefinition
	now         func() time.Time
}

var _ interfaces.WorkflowEngine = (*Engine)(nil)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the clock used for transition timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// New constructs an engine with the listing and article workflows registered.
func New(opts ...Option) *Engine {
	engine := &Engine{
		definitions: make(map[string]*compiledDefinition),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}

	for _, definition := range DefaultDefinitions() {
		_ = engine.RegisterWorkflow(context.Background(), definition)
	}
	return engine
}

// Transition resolves the named transition from the current state.
func (e *Engine) Transition(_ context.Context, input interfaces.TransitionInput) (*interfaces.TransitionResult, error) {
	if input.EntityID == uuid.Nil {
		return nil, ErrNilEntityID
	}
	name := normalizeName(input.Transition)
	if name == "" {
		return nil, ErrMissingTransition
	}

	definition, err := e.definitionFor(input.EntityType)
	if err != nil {
		return nil, err
	}

	current := normalizeState(input.CurrentState, definition.definition.InitialState)
	transition, err := definition.lookup(name, current)
	if err != nil {
		return nil, err
	}

	return &interfaces.TransitionResult{
		EntityID:    input.EntityID,
		EntityType:  input.EntityType,
		Transition:  transition.Name,
		FromState:   current,
		ToState:     transition.To,
		CompletedAt: e.now(),
		ActorID:     input.ActorID,
		Note:        input.Note,
	}, nil
}

// AvailableTransitions returns the transitions leaving the supplied state.
func (e *Engine) AvailableTransitions(_ context.Context, query interfaces.TransitionQuery) ([]interfaces.WorkflowTransition, error) {
	definition, err := e.definitionFor(query.EntityType)
	if err != nil {
		return nil, err
	}
	state := normalizeState(query.State, definition.definition.InitialState)
	transitions := definition.byState[state]
	result := make([]interfaces.WorkflowTransition, len(transitions))
	copy(result, transitions)
	return result, nil
}

// RegisterWorkflow installs or replaces the definition for an entity type.
func (e *Engine) RegisterWorkflow(_ context.Context, definition interfaces.WorkflowDefinition) error {
	if err := ValidateDefinition(definition); err != nil {
		return err
	}
	compiled := compile(definition)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[normalizeName(definition.EntityType)] = compiled
	return nil
}

func (e *Engine) definitionFor(entityType string) (*compiledDefinition, error) {
	e.mu.RLock()
	definition, ok := e.definitions[normalizeName(entityType)]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return definition, nil
}

type compiledDefinition struct {
	definition  interfaces.WorkflowDefinition
	transitions map[string]interfaces.WorkflowTransition
	byState     map[interfaces.WorkflowState][]interfaces.WorkflowTransition
}

func compile(definition interfaces.WorkflowDefinition) *compiledDefinition {
	compiled := &compiledDefinition{
		definition:  definition,
		transitions: make(map[string]interfaces.WorkflowTransition, len(definition.Transitions)),
		byState:     make(map[interfaces.WorkflowState][]interfaces.WorkflowTransition),
	}
	for _, transition := range definition.Transitions {
		transition.Name = normalizeName(transition.Name)
		transition.From = normalizeState(transition.From, "")
		transition.To = normalizeState(transition.To, "")
		compiled.transitions[transitionKey(transition.Name, transition.From)] = transition
		compiled.byState[transition.From] = append(compiled.byState[transition.From], transition)
	}
	return compiled
}

func (d *compiledDefinition) lookup(name string, state interfaces.WorkflowState) (interfaces.WorkflowTransition, error) {
	transition, ok := d.transitions[transitionKey(name, state)]
	if !ok {
		return interfaces.WorkflowTransition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, state)
	}
	return transition, nil
}

func transitionKey(name string, from interfaces.WorkflowState) string {
	return name + "::" + string(from)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeState(state, fallback interfaces.WorkflowState) interfaces.WorkflowState {
	value := strings.ToLower(strings.TrimSpace(string(state)))
	if value == "" {
		return interfaces.WorkflowState(strings.ToLower(strings.TrimSpace(string(fallback))))
	}
	return interfaces.WorkflowState(value)
}
