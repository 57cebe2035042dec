package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/pkg/interfaces"
)

// Transition names accepted by the moderation endpoints.
const (
	TransitionApprove   = "approve"
	TransitionReject    = "reject"
	TransitionPublish   = "publish"
	TransitionUnpublish = "unpublish"
)

var (
	ErrDefinitionEntityRequired = errors.New("workflow: definition entity required")
	ErrDefinitionStatesRequired = errors.New("workflow: definition requires at least one state")
	ErrDuplicateState           = errors.New("workflow: duplicate state")
	ErrTransitionNameRequired   = errors.New("workflow: transition name required")
	ErrTransitionStateUnknown   = errors.New("workflow: transition references unknown state")
	ErrDuplicateTransition      = errors.New("workflow: duplicate transition for state")
	ErrInitialStateInvalid      = errors.New("workflow: invalid initial state")
)

func stateOf(s domain.Status) interfaces.WorkflowState {
	return interfaces.WorkflowState(s)
}

// DefaultDefinitions returns the moderation workflows for every content kind.
func DefaultDefinitions() []interfaces.WorkflowDefinition {
	return []interfaces.WorkflowDefinition{
		listingDefinition(domain.KindEvent),
		listingDefinition(domain.KindJob),
		articleDefinition(),
	}
}

func listingDefinition(kind domain.Kind) interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   string(kind),
		InitialState: stateOf(domain.StatusPending),
		States: []interfaces.WorkflowStateDefinition{
			{Name: stateOf(domain.StatusPending), Description: "Submitted and awaiting review"},
			{Name: stateOf(domain.StatusApproved), Description: "Visible on the public listing"},
			{Name: stateOf(domain.StatusRejected), Description: "Declined by an admin"},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: TransitionApprove, From: stateOf(domain.StatusPending), To: stateOf(domain.StatusApproved)},
			{Name: TransitionReject, From: stateOf(domain.StatusPending), To: stateOf(domain.StatusRejected)},
			{Name: TransitionReject, From: stateOf(domain.StatusApproved), To: stateOf(domain.StatusRejected)},
			{Name: TransitionApprove, From: stateOf(domain.StatusRejected), To: stateOf(domain.StatusApproved)},
		},
	}
}

func articleDefinition() interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   string(domain.KindArticle),
		InitialState: stateOf(domain.StatusDraft),
		States: []interfaces.WorkflowStateDefinition{
			{Name: stateOf(domain.StatusDraft), Description: "Written but not public"},
			{Name: stateOf(domain.StatusPending), Description: "Submitted by a guest author"},
			{Name: stateOf(domain.StatusPublished), Description: "Visible on the blog"},
			{Name: stateOf(domain.StatusRejected), Description: "Declined by an admin"},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: TransitionPublish, From: stateOf(domain.StatusDraft), To: stateOf(domain.StatusPublished)},
			{Name: TransitionUnpublish, From: stateOf(domain.StatusPublished), To: stateOf(domain.StatusDraft)},
			{Name: TransitionApprove, From: stateOf(domain.StatusPending), To: stateOf(domain.StatusPublished)},
			{Name: TransitionReject, From: stateOf(domain.StatusPending), To: stateOf(domain.StatusRejected)},
			{Name: TransitionApprove, From: stateOf(domain.StatusRejected), To: stateOf(domain.StatusPublished)},
		},
	}
}

// ValidateDefinition checks state and transition integrity before registration.
func ValidateDefinition(definition interfaces.WorkflowDefinition) error {
	entity := strings.TrimSpace(definition.EntityType)
	if entity == "" {
		return ErrDefinitionEntityRequired
	}
	if len(definition.States) == 0 {
		return fmt.Errorf("%w: %s", ErrDefinitionStatesRequired, entity)
	}

	states := make(map[interfaces.WorkflowState]struct{}, len(definition.States))
	for _, def := range definition.States {
		name := normalizeState(def.Name, "")
		if name == "" {
			return fmt.Errorf("%w: %s has an unnamed state", ErrDefinitionStatesRequired, entity)
		}
		if _, exists := states[name]; exists {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateState, entity, name)
		}
		states[name] = struct{}{}
	}

	if initial := normalizeState(definition.InitialState, ""); initial != "" {
		if _, ok := states[initial]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrInitialStateInvalid, entity, initial)
		}
	}

	seen := make(map[string]struct{}, len(definition.Transitions))
	for _, transition := range definition.Transitions {
		name := normalizeName(transition.Name)
		if name == "" {
			return fmt.Errorf("%w: %s", ErrTransitionNameRequired, entity)
		}
		from := normalizeState(transition.From, "")
		to := normalizeState(transition.To, "")
		if _, ok := states[from]; !ok {
			return fmt.Errorf("%w: %s %s from %q", ErrTransitionStateUnknown, entity, name, from)
		}
		if _, ok := states[to]; !ok {
			return fmt.Errorf("%w: %s %s to %q", ErrTransitionStateUnknown, entity, name, to)
		}
		key := transitionKey(name, from)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s %s from %s", ErrDuplicateTransition, entity, name, from)
		}
		seen[key] = struct{}{}
	}
	return nil
}
