package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/links"
	"github.com/nycb2b/site/internal/workflow"
	"github.com/nycb2b/site/pkg/testsupport"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) events.Service {
	t.Helper()
	return events.NewService(
		events.NewMemoryEventRepository(),
		events.WithIDGenerator(testsupport.SequentialIDs()),
		events.WithNow(testsupport.FixedClock(now)),
		events.WithLinks(links.NewResolver("https://nycb2b.test", nil)),
	)
}

func mixer(title string, startsIn time.Duration) events.EventInput {
	return events.EventInput{
		Title:          title,
		Description:    "Meet **founders**",
		Location:       "Brooklyn",
		StartsAt:       now.Add(startsIn),
		SubmitterEmail: "host@nycb2b.test",
	}
}

func TestSubmitCreatesPendingEventWithUniqueSlug(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	first, err := svc.Submit(ctx, mixer("Spring Mixer", 48*time.Hour))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %q", first.Status)
	}
	if first.Slug != "spring-mixer" {
		t.Fatalf("expected slug spring-mixer, got %q", first.Slug)
	}

	second, err := svc.Submit(ctx, mixer("Spring Mixer", 72*time.Hour))
	if err != nil {
		t.Fatalf("submit duplicate title: %v", err)
	}
	if second.Slug != "spring-mixer-2" {
		t.Fatalf("expected de-duplicated slug, got %q", second.Slug)
	}
	if second.Position <= first.Position {
		t.Fatalf("expected new event after existing ones, got positions %d and %d", first.Position, second.Position)
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	cases := []struct {
		name  string
		input events.EventInput
		want  error
	}{
		{name: "title", input: events.EventInput{Description: "x", StartsAt: now}, want: events.ErrTitleRequired},
		{name: "description", input: events.EventInput{Title: "Mixer", StartsAt: now}, want: events.ErrDescriptionRequired},
		{name: "start", input: events.EventInput{Title: "Mixer", Description: "x"}, want: events.ErrStartRequired},
		{
			name: "end before start",
			input: events.EventInput{
				Title:       "Mixer",
				Description: "x",
				StartsAt:    now,
				EndsAt:      func() *time.Time { t := now.Add(-time.Hour); return &t }(),
			},
			want: events.ErrEndBeforeStart,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestModerationFollowsWorkflow(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	event, err := svc.Submit(ctx, mixer("Demo Night", 24*time.Hour))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved, err := svc.Approve(ctx, event.ID, "admin", "welcome")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}
	if approved.ReviewedBy != "admin" || approved.ReviewNote != "welcome" {
		t.Fatalf("expected review fields, got %+v", approved)
	}
	if approved.ReviewedAt == nil || !approved.ReviewedAt.Equal(now) {
		t.Fatalf("expected reviewed_at %v, got %v", now, approved.ReviewedAt)
	}

	if _, err := svc.Moderate(ctx, domain.ModerationInput{ID: event.ID, Action: workflow.TransitionPublish}); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	rejected, err := svc.Reject(ctx, event.ID, "admin", "spam")
	if err != nil {
		t.Fatalf("reject approved: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}

	var notFound *events.NotFoundError
	if _, err := svc.Approve(ctx, uuid.New(), "admin", ""); !errors.As(err, &notFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListPublicShowsApprovedUpcomingInPositionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	past, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Winter Gala", -72*time.Hour)})
	if err != nil {
		t.Fatalf("create past: %v", err)
	}
	later, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Summer Social", 30*24*time.Hour)})
	if err != nil {
		t.Fatalf("create later: %v", err)
	}
	sooner, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Founder Breakfast", 24*time.Hour)})
	if err != nil {
		t.Fatalf("create sooner: %v", err)
	}
	if _, err := svc.Submit(ctx, mixer("Pending Panel", 48*time.Hour)); err != nil {
		t.Fatalf("submit pending: %v", err)
	}

	if _, err := svc.Reorder(ctx, []uuid.UUID{later.ID, sooner.ID, past.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	listed, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	var slugs []string
	for _, event := range listed {
		slugs = append(slugs, event.Slug)
	}
	if diff := cmp.Diff([]string{"summer-social", "founder-breakfast"}, slugs); diff != "" {
		t.Fatalf("public listing mismatch (-want +got):\n%s", diff)
	}

	pending, err := svc.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Slug != "pending-panel" {
		t.Fatalf("unexpected pending listing %+v", pending)
	}

	if _, err := svc.ListByStatus(ctx, domain.StatusPublished); !errors.Is(err, events.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestReorderRejectsEmptyAndDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	event, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Mixer", time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Reorder(ctx, nil); !errors.Is(err, events.ErrReorderEmpty) {
		t.Fatalf("expected ErrReorderEmpty, got %v", err)
	}
	if _, err := svc.Reorder(ctx, []uuid.UUID{event.ID, event.ID}); !errors.Is(err, events.ErrReorderDuplicate) {
		t.Fatalf("expected ErrReorderDuplicate, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	first, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Pitch Night", time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Office Hours", time.Hour), Slug: "office-hours"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	title := "Pitch Night Live"
	location := "  Manhattan "
	updated, err := svc.Update(ctx, events.UpdateEventInput{ID: first.ID, Title: &title, Location: &location})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Location != "Manhattan" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Slug != first.Slug {
		t.Fatalf("expected slug to stay %q, got %q", first.Slug, updated.Slug)
	}

	taken := second.Slug
	if _, err := svc.Update(ctx, events.UpdateEventInput{ID: first.ID, Slug: &taken}); !errors.Is(err, events.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *events.NotFoundError
	if _, err := svc.Get(ctx, first.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRenderProducesHTMLAndCanonicalURL(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	event, err := svc.Create(ctx, events.CreateEventInput{EventInput: mixer("Spring Mixer", time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	event.Description = "Bring <cards>\n* **RSVP** early"

	view, err := svc.Render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	wantHTML := "<p>Bring &lt;cards&gt;</p>\n<ul><li><strong>RSVP</strong> early</li></ul>"
	if diff := cmp.Diff(wantHTML, view.DescriptionHTML); diff != "" {
		t.Fatalf("description html mismatch (-want +got):\n%s", diff)
	}
	if view.URL != "https://nycb2b.test/events/spring-mixer" {
		t.Fatalf("unexpected canonical url %q", view.URL)
	}
}
