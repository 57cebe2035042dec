package richtext_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nycb2b/site/internal/richtext"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestRenderInline(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold and italic",
			input: "**bold** and *italic*",
			want:  "<p><strong>bold</strong> and <em>italic</em></p>",
		},
		{
			name:  "underscore bold and italic",
			input: "__bold__ and _italic_",
			want:  "<p><strong>bold</strong> and <em>italic</em></p>",
		},
		{
			name:  "code span is opaque",
			input: "`**not bold**`",
			want:  "<p><code>**not bold**</code></p>",
		},
		{
			name:  "link",
			input: "[NYC B2B](https://example.com)",
			want:  `<p><a href="https://example.com" target="_blank" rel="noopener noreferrer">NYC B2B</a></p>`,
		},
		{
			name:  "link label is inline parsed",
			input: "[**Join**](https://example.com/join)",
			want:  `<p><a href="https://example.com/join" target="_blank" rel="noopener noreferrer"><strong>Join</strong></a></p>`,
		},
		{
			name:  "link inside list item",
			input: "* see [jobs](/jobs)",
			want:  `<ul><li>see <a href="/jobs" target="_blank" rel="noopener noreferrer">jobs</a></li></ul>`,
		},
		{
			name:  "bold is non greedy",
			input: "**a** b **c**",
			want:  "<p><strong>a</strong> b <strong>c</strong></p>",
		},
		{
			name:  "italic wraps bold",
			input: "*a **b** c*",
			want:  "<p><em>a <strong>b</strong> c</em></p>",
		},
		{
			name:  "triple asterisks nest italic in bold",
			input: "***x***",
			want:  "<p><strong><em>x</em></strong></p>",
		},
		{
			name:  "italic closes inside trailing bold run",
			input: "**bold *em***",
			want:  "<p><strong>bold <em>em</em></strong></p>",
		},
		{
			name:  "closing run of three keeps one delimiter inside",
			input: "**a***",
			want:  "<p><strong>a*</strong></p>",
		},
		{
			name:  "unclosed triple run stays literal",
			input: "***x",
			want:  "<p>***x</p>",
		},
		{
			name:  "unclosed bold is never italic",
			input: "**open *x*",
			want:  "<p>**open <em>x</em></p>",
		},
		{
			name:  "unmatched single asterisk",
			input: "5 * 3 = 15",
			want:  "<p>5 * 3 = 15</p>",
		},
		{
			name:  "whitespace flanked delimiters stay literal",
			input: "** spaced ** and * loose *",
			want:  "<p>** spaced ** and * loose *</p>",
		},
		{
			name:  "snake case stays literal",
			input: "use snake_case_names here",
			want:  "<p>use snake_case_names here</p>",
		},
		{
			name:  "empty code span stays literal",
			input: "a `` b",
			want:  "<p>a `` b</p>",
		},
		{
			name:  "unclosed backtick",
			input: "a ` b",
			want:  "<p>a ` b</p>",
		},
		{
			name:  "code inside bold",
			input: "**run `make`**",
			want:  "<p><strong>run <code>make</code></strong></p>",
		},
		{
			name:  "code hides link syntax",
			input: "`[x](y)`",
			want:  "<p><code>[x](y)</code></p>",
		},
		{
			name:  "link with spaces in target stays literal",
			input: "[a](b c)",
			want:  "<p>[a](b c)</p>",
		},
		{
			name:  "empty label stays literal",
			input: "[](https://example.com)",
			want:  "<p>[](https://example.com)</p>",
		},
		{
			name:  "inline rules do not cross lines",
			input: "**a\nb**",
			want:  "<p>**a<br>b**</p>",
		},
		{
			name:  "heading text is inline parsed",
			input: "## *Featured* events",
			want:  "<h2><em>Featured</em> events</h2>",
		},
		{
			name:  "quote text is inline parsed",
			input: "> **Tip:** arrive early",
			want:  "<blockquote><strong>Tip:</strong> arrive early</blockquote>",
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

func TestRenderUnclosedOpenersRunInLinearTime(t *testing.T) {
	const size = 512 << 10
	patterns := []string{"**a ", "*a ", "__a ", "_a ", "[a ", "[a](b c "}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			input := strings.Repeat(pattern, size/len(pattern))
			started := time.Now()
			got := richtext.Render(input)
			if elapsed := time.Since(started); elapsed > 3*time.Second {
				t.Fatalf("rendering %d bytes took %s", len(input), elapsed)
			}
			if want := "<p>" + strings.TrimSpace(input) + "</p>"; got != want {
				t.Fatalf("expected unclosed openers to stay literal, got %d bytes", len(got))
			}
		})
	}

	t.Run("nested runs", func(t *testing.T) {
		n := size / 8
		input := strings.Repeat("**a ", n) + "a" + strings.Repeat("**", n)
		started := time.Now()
		got := richtext.Render(input)
		if elapsed := time.Since(started); elapsed > 3*time.Second {
			t.Fatalf("rendering %d bytes took %s", len(input), elapsed)
		}
		if strings.Count(got, "<strong>") != 1 {
			t.Fatalf("expected a single strong span, got %d", strings.Count(got, "<strong>"))
		}
	})
}

func TestRenderKeepsInvalidUTF8Bytes(t *testing.T) {
	got := richtext.Render("caf\xe9 **ok** `\xff`")
	want := "<p>caf\xe9 <strong>ok</strong> <code>\xff</code></p>"
	if got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestRenderDropsUnsafeLinkSchemes(t *testing.T) {
	got := richtext.Render("[click](javascript:alert(1))")
	if strings.Contains(got, "<a") {
		t.Fatalf("expected unsafe link to be dropped, got %q", got)
	}

	got = richtext.Render("[mail](mailto:hello@nycb2b.test)")
	want := `<p><a href="mailto:hello@nycb2b.test" target="_blank" rel="noopener noreferrer">mail</a></p>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEscapesLinkAttributes(t *testing.T) {
	got := richtext.Render(`[x](https://example.com/?a="b")`)
	want := `<p><a href="https://example.com/?a=&quot;b&quot;" target="_blank" rel="noopener noreferrer">x</a></p>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacyPassthroughKeepsAnyLinkScheme(t *testing.T) {
	renderer := richtext.New(richtext.WithEscapePolicy(richtext.LegacyPassthrough))
	got := renderer.Render("[x](javascript:void)")
	want := `<p><a href="javascript:void" target="_blank" rel="noopener noreferrer">x</a></p>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderedFragmentNestsCorrectly(t *testing.T) {
	input := strings.Join([]string{
		"# Spring Mixer",
		"Meet **founders** and *investors*.",
		"",
		"* Talks by [Acme](https://acme.test)",
		"* `demo` tables",
		"1. RSVP",
		"> <b>unsafe</b>",
	}, "\n")

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(richtext.Render(input)), body)
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}

	var top []string
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			top = append(top, n.Data)
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Html || n.DataAtom == atom.Script) {
			t.Fatalf("unexpected %s element in fragment", n.Data)
		}
	}
	wantTop := []string{"h1", "p", "ul", "ol", "blockquote"}
	if diff := cmp.Diff(wantTop, top); diff != "" {
		t.Fatalf("top-level elements mismatch (-want +got):\n%s", diff)
	}

	ul := nodes[findElement(nodes, atom.Ul)]
	var items int
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.Li {
			t.Fatalf("unexpected child %q inside list", c.Data)
		}
		items++
	}
	if items != 2 {
		t.Fatalf("expected 2 list items, got %d", items)
	}

	quote := nodes[findElement(nodes, atom.Blockquote)]
	if quote.FirstChild == nil || quote.FirstChild.Type != html.TextNode {
		t.Fatalf("expected escaped quote content to parse as text")
	}
}

func findElement(nodes []*html.Node, a atom.Atom) int {
	for i, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == a {
			return i
		}
	}
	return -1
}
