package richtext_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nycb2b/site/internal/richtext"
)

func TestRenderBlocks(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: " \n\t\n  ", want: ""},
		{name: "heading level one", input: "# Title", want: "<h1>Title</h1>"},
		{name: "heading level two", input: "## Upcoming", want: "<h2>Upcoming</h2>"},
		{name: "heading level three", input: "### Details", want: "<h3>Details</h3>"},
		{name: "heading deeper than three stays text", input: "#### Deep", want: "<p>#### Deep</p>"},
		{name: "heading without space stays text", input: "#Title", want: "<p>#Title</p>"},
		{name: "heading marker alone stays text", input: "#  ", want: "<p>#</p>"},
		{name: "indented heading stays text", input: "  # Title", want: "<p># Title</p>"},
		{name: "quote", input: "> Networking matters", want: "<blockquote>Networking matters</blockquote>"},
		{
			name:  "each quote line is its own block",
			input: "> first\n> second",
			want:  "<blockquote>first</blockquote>\n<blockquote>second</blockquote>",
		},
		{
			name:  "quote line ends a paragraph",
			input: "intro\n> cited\noutro",
			want:  "<p>intro</p>\n<blockquote>cited</blockquote>\n<p>outro</p>",
		},
		{
			name:  "unordered list",
			input: "* a\n* b\n* c",
			want:  "<ul><li>a</li><li>b</li><li>c</li></ul>",
		},
		{
			name:  "mixed unordered markers share a list",
			input: "* a\n- b\n• c",
			want:  "<ul><li>a</li><li>b</li><li>c</li></ul>",
		},
		{
			name:  "ordered list",
			input: "1. one\n2. two",
			want:  "<ol><li>one</li><li>two</li></ol>",
		},
		{
			name:  "kind switch closes list",
			input: "1. a\n* b",
			want:  "<ol><li>a</li></ol>\n<ul><li>b</li></ul>",
		},
		{
			name:  "indented items are recognised",
			input: "  * a\n\t* b",
			want:  "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name:  "text line closes list",
			input: "* a\nafter",
			want:  "<ul><li>a</li></ul>\n<p>after</p>",
		},
		{
			name:  "paragraph lines join with breaks",
			input: "line one\nline two",
			want:  "<p>line one<br>line two</p>",
		},
		{
			name:  "blank line splits paragraphs",
			input: "first\n\n\nsecond",
			want:  "<p>first</p>\n<p>second</p>",
		},
		{
			name:  "paragraph lines are trimmed",
			input: "   padded   \n  text ",
			want:  "<p>padded<br>text</p>",
		},
		{
			name:  "crlf input",
			input: "# Title\r\nbody\r\n",
			want:  "<h1>Title</h1>\n<p>body</p>",
		},
		{
			name:  "document",
			input: "# Meetup\nJoin us.\n\n> Bring cards\n\n* Drinks\n* Talks\n\n1. Arrive\n2. Mingle",
			want: strings.Join([]string{
				"<h1>Meetup</h1>",
				"<p>Join us.</p>",
				"<blockquote>Bring cards</blockquote>",
				"<ul><li>Drinks</li><li>Talks</li></ul>",
				"<ol><li>Arrive</li><li>Mingle</li></ol>",
			}, "\n"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := richtext.Render(tc.input)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderPlainTextBecomesSingleParagraph(t *testing.T) {
	inputs := []string{
		"hello",
		"hello world\nsecond line\nthird line",
		"numbers 1 2 3",
	}
	for _, input := range inputs {
		got := richtext.Render(input)
		want := "<p>" + strings.ReplaceAll(input, "\n", "<br>") + "</p>"
		if got != want {
			t.Fatalf("render(%q) = %q, want %q", input, got, want)
		}
		if strings.Count(got, "<p>") != 1 {
			t.Fatalf("expected exactly one paragraph, got %q", got)
		}
	}
}

func TestRenderEscapesHostileInputByDefault(t *testing.T) {
	got := richtext.Render(`<script>alert("x")</script> & more`)
	want := "<p>&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; more</p>"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("escaped render mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("script tag leaked into output: %q", got)
	}
}

func TestRenderLegacyPassthroughKeepsMarkup(t *testing.T) {
	renderer := richtext.New(richtext.WithEscapePolicy(richtext.LegacyPassthrough))
	got := renderer.Render(`<b>raw</b> & **bold**`)
	want := "<p><b>raw</b> & <strong>bold</strong></p>"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legacy render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEscapesInsideHeadingsListsAndCode(t *testing.T) {
	got := richtext.Render("# A <b>\n* x & y\n\n`<i>`")
	want := "<h1>A &lt;b&gt;</h1>\n<ul><li>x &amp; y</li></ul>\n<p><code>&lt;i&gt;</code></p>"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderIsNotIdempotent(t *testing.T) {
	input := "# Title\n**bold**"
	once := richtext.Render(input)
	twice := richtext.Render(once)
	if once == twice {
		t.Fatalf("expected re-rendering markup to differ, both were %q", once)
	}
	if !strings.HasPrefix(twice, "<p>&lt;h1&gt;") {
		t.Fatalf("expected rendered markup to be treated as text, got %q", twice)
	}
}

func TestRenderIsDeterministicAcrossGoroutines(t *testing.T) {
	input := "## Jobs\n* **Engineer** at [Acme](https://acme.test)\n* _Designer_ `remote`"
	want := richtext.Render(input)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = richtext.Render(input)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Fatalf("result %d = %q, want %q", i, got, want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]richtext.EscapePolicy{
		"":            richtext.EscapeHTML,
		"escape":      richtext.EscapeHTML,
		" SAFE ":      richtext.EscapeHTML,
		"legacy":      richtext.LegacyPassthrough,
		"raw":         richtext.LegacyPassthrough,
		"Passthrough": richtext.LegacyPassthrough,
	}
	for input, want := range cases {
		got, err := richtext.ParsePolicy(input)
		if err != nil {
			t.Fatalf("ParsePolicy(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParsePolicy(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := richtext.ParsePolicy("sanitize"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestEscapePolicyString(t *testing.T) {
	if got := richtext.EscapeHTML.String(); got != "escape" {
		t.Fatalf("EscapeHTML.String() = %q", got)
	}
	if got := richtext.LegacyPassthrough.String(); got != "legacy" {
		t.Fatalf("LegacyPassthrough.String() = %q", got)
	}
}
