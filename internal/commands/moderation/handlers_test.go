package moderationcmd

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/audit"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/workflow"
	"github.com/nycb2b/site/pkg/testsupport"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func newEventService() events.Service {
	return events.NewService(
		events.NewMemoryEventRepository(),
		events.WithIDGenerator(testsupport.SequentialIDs()),
		events.WithNow(testsupport.FixedClock(now)),
	)
}

func submitEvent(t *testing.T, svc events.Service, title string) *events.Event {
	t.Helper()
	record, err := svc.Submit(context.Background(), events.EventInput{
		Title:       title,
		Description: "Meet founders",
		StartsAt:    now.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("submit %s: %v", title, err)
	}
	return record
}

func TestModerateHandlerApprovesEvent(t *testing.T) {
	ctx := context.Background()
	svc := newEventService()
	record := submitEvent(t, svc, "Founders Mixer")

	trail := audit.NewMemoryRecorder(10)
	handler := NewModerateHandler(Services{Events: svc, Audit: trail, Now: testsupport.FixedClock(now)}, logging.NoOp())
	err := handler.Execute(ctx, ModerateCommand{
		Kind:    "events",
		ID:      record.ID.String(),
		Action:  workflow.TransitionApprove,
		ActorID: "admin",
		Note:    "looks good",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	updated, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != domain.StatusApproved || updated.ReviewNote != "looks good" {
		t.Fatalf("unexpected record %+v", updated)
	}

	want := []audit.Entry{{
		Kind:       "event",
		RecordID:   record.ID.String(),
		Action:     workflow.TransitionApprove,
		Status:     string(domain.StatusApproved),
		Actor:      "admin",
		Note:       "looks good",
		OccurredAt: now,
	}}
	if diff := cmp.Diff(want, trail.Entries()); diff != "" {
		t.Fatalf("audit mismatch (-want +got):\n%s", diff)
	}
}

func TestModerateHandlerValidation(t *testing.T) {
	handler := NewModerateHandler(Services{Events: newEventService()}, nil)

	cases := []ModerateCommand{
		{Kind: "podcast", ID: uuid.NewString(), Action: workflow.TransitionApprove},
		{Kind: "event", ID: "not-a-uuid", Action: workflow.TransitionApprove},
		{Kind: "event", ID: uuid.NewString(), Action: "archive"},
		{Kind: "event", Action: workflow.TransitionApprove},
	}
	for _, msg := range cases {
		err := handler.Execute(context.Background(), msg)
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %+v, got %v", msg, err)
		}
	}
}

func TestModerateHandlerRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	svc := newEventService()
	record := submitEvent(t, svc, "Founders Mixer")

	handler := NewModerateHandler(Services{Events: svc}, nil)
	err := handler.Execute(ctx, ModerateCommand{Kind: "event", ID: record.ID.String(), Action: workflow.TransitionPublish})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition in chain, got %v", err)
	}
}

func TestModerateHandlerUnavailableKind(t *testing.T) {
	handler := NewModerateHandler(Services{}, nil)
	err := handler.Execute(context.Background(), ModerateCommand{Kind: "job", ID: uuid.NewString(), Action: workflow.TransitionApprove})
	if !errors.Is(err, ErrKindUnavailable) {
		t.Fatalf("expected ErrKindUnavailable, got %v", err)
	}
}

func TestReorderHandler(t *testing.T) {
	ctx := context.Background()
	svc := newEventService()
	first := submitEvent(t, svc, "First")
	second := submitEvent(t, svc, "Second")

	handler := NewReorderHandler(Services{Events: svc}, nil)
	if err := handler.Execute(ctx, ReorderCommand{Kind: "event", IDs: []string{second.ID.String(), first.ID.String()}}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	reloaded, err := svc.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Position != 0 {
		t.Fatalf("expected position 0, got %d", reloaded.Position)
	}

	err = handler.Execute(ctx, ReorderCommand{Kind: "event"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
}
