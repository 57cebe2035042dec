package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/nycb2b/site/internal/domain"
)

func TestValidatePayloadAcceptsValidSubmissions(t *testing.T) {
	cases := map[domain.Kind]map[string]any{
		domain.KindEvent: {
			"title":           "Spring Mixer",
			"description":     "**Drinks** and intros",
			"starts_at":       "2026-04-02T18:00:00Z",
			"url":             "https://nycb2b.test/mixer",
			"submitter_email": "host@example.com",
		},
		domain.KindJob: {
			"title":           "Account Executive",
			"company":         "Acme",
			"description":     "Sell things",
			"employment_type": "full_time",
			"submitter_email": "hr@acme.test",
		},
		domain.KindArticle: {
			"title":           "Networking 101",
			"body":            "# Start here",
			"author":          "Dana",
			"format":          "markdown",
			"tags":            []any{"guides"},
			"submitter_email": "dana@example.com",
		},
	}
	for kind, payload := range cases {
		if err := ValidatePayload(kind, payload); err != nil {
			t.Fatalf("%s: unexpected error %v", kind, err)
		}
	}
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	err := ValidatePayload(domain.KindEvent, map[string]any{
		"title":           "x",
		"starts_at":       "next tuesday",
		"submitter_email": "not-an-email",
		"extra":           true,
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	issues := Issues(err)
	if len(issues) < 4 {
		t.Fatalf("expected several issues, got %+v", issues)
	}
	var locations []string
	for _, issue := range issues {
		locations = append(locations, issue.Location)
	}
	joined := strings.Join(locations, ",")
	for _, want := range []string{"/title", "/starts_at", "/submitter_email"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected issue at %s, got %v", want, locations)
		}
	}
}

func TestValidatePayloadUnknownKind(t *testing.T) {
	err := NewValidator().Validate(domain.Kind("page"), map[string]any{})
	if !errors.Is(err, ErrSchemaUnknown) {
		t.Fatalf("expected ErrSchemaUnknown, got %v", err)
	}
}

func TestIssuesFallsBackToMessage(t *testing.T) {
	issues := Issues(errors.New("boom"))
	if len(issues) != 1 || issues[0].Message != "boom" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if Issues(nil) != nil {
		t.Fatalf("expected nil issues for nil error")
	}
}
