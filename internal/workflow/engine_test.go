package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/pkg/interfaces"
	"github.com/nycb2b/site/pkg/testsupport"
)

type transitionFixture struct {
	EntityType   string                  `json:"entity_type"`
	InitialState string                  `json:"initial_state"`
	Steps        []transitionFixtureStep `json:"steps"`
}

type transitionFixtureStep struct {
	Transition string `json:"transition"`
	WantState  string `json:"want_state"`
}

type transitionSummary struct {
	Transition string `json:"transition"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func TestEngineModerationWorkflows(t *testing.T) {
	for _, name := range []string{"event_transitions", "article_transitions"} {
		t.Run(name, func(t *testing.T) {
			runTransitionFixture(t, name)
		})
	}
}

func runTransitionFixture(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	engine := New(WithClock(testsupport.FixedClock(now)))

	data, err := testsupport.LoadFixture(filepath.Join("testdata", name+".json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	var fixture transitionFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	current := interfaces.WorkflowState(fixture.InitialState)
	entityID := uuid.New()
	var results []transitionSummary
	for idx, step := range fixture.Steps {
		res, err := engine.Transition(ctx, interfaces.TransitionInput{
			EntityID:     entityID,
			EntityType:   fixture.EntityType,
			CurrentState: current,
			Transition:   step.Transition,
			ActorID:      "admin",
		})
		if err != nil {
			t.Fatalf("step %d transition %q: %v", idx, step.Transition, err)
		}
		if string(res.ToState) != step.WantState {
			t.Fatalf("step %d transition %q: want %s got %s", idx, step.Transition, step.WantState, res.ToState)
		}
		if !res.CompletedAt.Equal(now) {
			t.Fatalf("step %d: unexpected timestamp %s", idx, res.CompletedAt)
		}
		results = append(results, transitionSummary{
			Transition: res.Transition,
			From:       string(res.FromState),
			To:         string(res.ToState),
		})
		current = res.ToState
	}

	var want []transitionSummary
	if err := testsupport.LoadGolden(filepath.Join("testdata", name+"_golden.json"), &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if !reflect.DeepEqual(want, results) {
		wantJSON, _ := json.MarshalIndent(want, "", "  ")
		gotJSON, _ := json.MarshalIndent(results, "", "  ")
		t.Fatalf("transition results mismatch\nwant: %s\n got: %s", wantJSON, gotJSON)
	}
}

func TestEngineRejectsInvalidTransitions(t *testing.T) {
	engine := New()
	ctx := context.Background()

	cases := []struct {
		name  string
		input interfaces.TransitionInput
		want  error
	}{
		{
			name:  "publish is not a listing transition",
			input: interfaces.TransitionInput{EntityID: uuid.New(), EntityType: "job", CurrentState: "pending", Transition: "publish"},
			want:  ErrInvalidTransition,
		},
		{
			name:  "approved events cannot be approved again",
			input: interfaces.TransitionInput{EntityID: uuid.New(), EntityType: "event", CurrentState: "approved", Transition: "approve"},
			want:  ErrInvalidTransition,
		},
		{
			name:  "unknown entity",
			input: interfaces.TransitionInput{EntityID: uuid.New(), EntityType: "page", Transition: "approve"},
			want:  ErrUnknownEntityType,
		},
		{
			name:  "nil id",
			input: interfaces.TransitionInput{EntityType: "event", Transition: "approve"},
			want:  ErrNilEntityID,
		},
		{
			name:  "missing transition",
			input: interfaces.TransitionInput{EntityID: uuid.New(), EntityType: "event"},
			want:  ErrMissingTransition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Transition(ctx, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEngineAvailableTransitions(t *testing.T) {
	engine := New()
	available, err := engine.AvailableTransitions(context.Background(), interfaces.TransitionQuery{
		EntityType: "article",
		State:      "pending",
	})
	if err != nil {
		t.Fatalf("available transitions: %v", err)
	}
	var names []string
	for _, tr := range available {
		names = append(names, tr.Name)
	}
	if !reflect.DeepEqual(names, []string{"approve", "reject"}) {
		t.Fatalf("unexpected transitions %v", names)
	}
}

func TestValidateDefinition(t *testing.T) {
	base := func() interfaces.WorkflowDefinition {
		return interfaces.WorkflowDefinition{
			EntityType:   "sponsor",
			InitialState: "pending",
			States: []interfaces.WorkflowStateDefinition{
				{Name: "pending"},
				{Name: "approved"},
			},
			Transitions: []interfaces.WorkflowTransition{
				{Name: "approve", From: "pending", To: "approved"},
			},
		}
	}

	if err := ValidateDefinition(base()); err != nil {
		t.Fatalf("expected valid definition, got %v", err)
	}

	missingEntity := base()
	missingEntity.EntityType = " "
	if err := ValidateDefinition(missingEntity); !errors.Is(err, ErrDefinitionEntityRequired) {
		t.Fatalf("expected entity error, got %v", err)
	}

	dupState := base()
	dupState.States = append(dupState.States, interfaces.WorkflowStateDefinition{Name: "Pending"})
	if err := ValidateDefinition(dupState); !errors.Is(err, ErrDuplicateState) {
		t.Fatalf("expected duplicate state error, got %v", err)
	}

	unknown := base()
	unknown.Transitions = append(unknown.Transitions, interfaces.WorkflowTransition{Name: "archive", From: "approved", To: "archived"})
	if err := ValidateDefinition(unknown); !errors.Is(err, ErrTransitionStateUnknown) {
		t.Fatalf("expected unknown state error, got %v", err)
	}

	dupTransition := base()
	dupTransition.Transitions = append(dupTransition.Transitions, interfaces.WorkflowTransition{Name: "APPROVE", From: "pending", To: "approved"})
	if err := ValidateDefinition(dupTransition); !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("expected duplicate transition error, got %v", err)
	}

	badInitial := base()
	badInitial.InitialState = "draft"
	if err := ValidateDefinition(badInitial); !errors.Is(err, ErrInitialStateInvalid) {
		t.Fatalf("expected initial state error, got %v", err)
	}

	engine := New()
	if err := engine.RegisterWorkflow(context.Background(), base()); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:   uuid.New(),
		EntityType: "sponsor",
		Transition: "approve",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if res.ToState != "approved" {
		t.Fatalf("expected approved, got %s", res.ToState)
	}
}
