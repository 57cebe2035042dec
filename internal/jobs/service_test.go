package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/links"
	"github.com/nycb2b/site/pkg/testsupport"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, repo jobs.JobRepository) jobs.Service {
	t.Helper()
	return jobs.NewService(
		repo,
		jobs.WithIDGenerator(testsupport.SequentialIDs()),
		jobs.WithNow(testsupport.FixedClock(now)),
		jobs.WithLinks(links.NewResolver("https://nycb2b.test", nil)),
	)
}

func posting(title, company string) jobs.JobInput {
	return jobs.JobInput{
		Title:          title,
		Company:        company,
		Location:       "Remote",
		EmploymentType: "Full_Time",
		Description:    "Build **things**",
		ApplyURL:       "https://acme.test/apply",
		SubmitterEmail: "hr@acme.test",
	}
}

func at(t time.Time) *time.Time {
	return &t
}

func TestSubmitDerivesSlugFromTitleAndCompany(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, jobs.NewMemoryJobRepository())

	job, err := svc.Submit(ctx, posting("Staff Engineer", "Acme"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Slug != "staff-engineer-acme" {
		t.Fatalf("unexpected slug %q", job.Slug)
	}
	if job.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %q", job.Status)
	}
	if job.EmploymentType != jobs.EmploymentFullTime {
		t.Fatalf("expected normalised employment type, got %q", job.EmploymentType)
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, jobs.NewMemoryJobRepository())

	cases := []struct {
		name  string
		input jobs.JobInput
		want  error
	}{
		{name: "title", input: jobs.JobInput{Company: "Acme", Description: "x"}, want: jobs.ErrTitleRequired},
		{name: "company", input: jobs.JobInput{Title: "Engineer", Description: "x"}, want: jobs.ErrCompanyRequired},
		{name: "description", input: jobs.JobInput{Title: "Engineer", Company: "Acme"}, want: jobs.ErrDescriptionRequired},
		{
			name:  "employment type",
			input: jobs.JobInput{Title: "Engineer", Company: "Acme", Description: "x", EmploymentType: "gig"},
			want:  jobs.ErrEmploymentTypeInvalid,
		},
		{
			name:  "expired",
			input: jobs.JobInput{Title: "Engineer", Company: "Acme", Description: "x", ExpiresAt: at(now.Add(-time.Hour))},
			want:  jobs.ErrExpiryBeforeSubmission,
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

func TestListPublicExcludesExpiredAndUnapproved(t *testing.T) {
	ctx := context.Background()
	repo := jobs.NewMemoryJobRepository()
	svc := newService(t, repo)

	open, err := svc.Create(ctx, jobs.CreateJobInput{JobInput: posting("Designer", "Acme")})
	if err != nil {
		t.Fatalf("create open: %v", err)
	}
	closing := posting("Analyst", "Globex")
	closing.ExpiresAt = at(now.Add(24 * time.Hour))
	if _, err := svc.Create(ctx, jobs.CreateJobInput{JobInput: closing}); err != nil {
		t.Fatalf("create closing: %v", err)
	}
	expired, err := svc.Create(ctx, jobs.CreateJobInput{JobInput: posting("Recruiter", "Initech")})
	if err != nil {
		t.Fatalf("create expired: %v", err)
	}
	expiredAt := now.Add(-time.Minute)
	if _, err := svc.Update(ctx, jobs.UpdateJobInput{ID: expired.ID, ExpiresAt: &expiredAt}); err != nil {
		t.Fatalf("expire posting: %v", err)
	}
	if _, err := svc.Submit(ctx, posting("Intern", "Hooli")); err != nil {
		t.Fatalf("submit pending: %v", err)
	}

	listed, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	var slugs []string
	for _, job := range listed {
		slugs = append(slugs, job.Slug)
	}
	if diff := cmp.Diff([]string{"designer-acme", "analyst-globex"}, slugs); diff != "" {
		t.Fatalf("public listing mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.Reorder(ctx, []uuid.UUID{expired.ID, open.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	all, err := svc.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if all[0].ID != expired.ID {
		t.Fatalf("expected %s first, got %s", expired.Slug, all[0].Slug)
	}
	reordered, err := svc.Get(ctx, open.ID)
	if err != nil {
		t.Fatalf("get reordered: %v", err)
	}
	if reordered.Position != 1 {
		t.Fatalf("expected position 1, got %d", reordered.Position)
	}
}

func TestModerationAndRender(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, jobs.NewMemoryJobRepository())

	job, err := svc.Submit(ctx, posting("Engineer", "Acme"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected, err := svc.Reject(ctx, job.ID, "admin", "duplicate")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected || rejected.ReviewNote != "duplicate" {
		t.Fatalf("unexpected rejected record %+v", rejected)
	}
	approved, err := svc.Approve(ctx, job.ID, "admin", "")
	if err != nil {
		t.Fatalf("approve rejected: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}

	view, err := svc.Render(approved)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if view.DescriptionHTML != "<p>Build <strong>things</strong></p>" {
		t.Fatalf("unexpected description html %q", view.DescriptionHTML)
	}
	if view.URL != "https://nycb2b.test/jobs/engineer-acme" {
		t.Fatalf("unexpected url %q", view.URL)
	}
	if !view.PostedAt.Equal(now) {
		t.Fatalf("expected posted_at %v, got %v", now, view.PostedAt)
	}
}

func TestJobRepository_WithBun(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*jobs.Job)(nil))
	svc := newService(t, jobs.NewBunJobRepository(db))

	first, err := svc.Create(ctx, jobs.CreateJobInput{JobInput: posting("Engineer", "Acme")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gone := posting("Writer", "Acme")
	gone.ExpiresAt = at(now.Add(time.Hour))
	second, err := svc.Create(ctx, jobs.CreateJobInput{JobInput: gone})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	expiredAt := now.Add(-time.Hour)
	if _, err := svc.Update(ctx, jobs.UpdateJobInput{ID: second.ID, ExpiresAt: &expiredAt}); err != nil {
		t.Fatalf("update: %v", err)
	}

	listed, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != first.ID {
		t.Fatalf("expected only %s listed, got %+v", first.Slug, listed)
	}

	fetched, err := svc.GetBySlug(ctx, "writer-acme")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ExpiresAt == nil || !fetched.ExpiresAt.Equal(expiredAt) {
		t.Fatalf("expected expiry %v, got %v", expiredAt, fetched.ExpiresAt)
	}

	var notFound *jobs.NotFoundError
	if _, err := svc.GetBySlug(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
