package markdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/adrg/frontmatter"

	"github.com/nycb2b/site/pkg/interfaces"
)

// ParseFrontMatter splits source into its YAML header and markdown body.
// Sources without a header return an empty FrontMatter and the full body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta interfaces.FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// LoadDocument reads and splits the markdown file at path.
func LoadDocument(path string) (*interfaces.Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown %s: %w", path, err)
	}
	return BuildDocument(path, source)
}

// BuildDocument splits source that was read from path.
func BuildDocument(path string, source []byte) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return &interfaces.Document{
		FilePath:    path,
		FrontMatter: meta,
		Body:        body,
	}, nil
}
