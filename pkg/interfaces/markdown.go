package interfaces

import "time"

// MarkdownParser converts full markdown documents into HTML. Article bodies
// stored with the markdown format are rendered through it.
type MarkdownParser interface {
	// Parse converts markdown using the parser defaults.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts markdown using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises markdown parsing.
type ParseOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	// SafeMode drops raw HTML from the source instead of passing it through.
	SafeMode bool `yaml:"safe_mode" json:"safe_mode"`
}

// FrontMatter models the YAML header of an imported article file.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	Slug    string         `yaml:"slug" json:"slug"`
	Summary string         `yaml:"summary" json:"summary"`
	Author  string         `yaml:"author" json:"author"`
	Format  string         `yaml:"format" json:"format"`
	Tags    []string       `yaml:"tags" json:"tags"`
	Date    time.Time      `yaml:"date" json:"date"`
	Draft   bool           `yaml:"draft" json:"draft"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
}

// Document is a markdown file split into front matter and body.
type Document struct {
	FilePath    string
	FrontMatter FrontMatter
	Body        []byte
}
