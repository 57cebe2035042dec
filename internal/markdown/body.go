package markdown

import (
	"fmt"

	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/pkg/interfaces"
)

// BodyRenderer turns a stored body into HTML according to its format.
type BodyRenderer struct {
	richtext *richtext.Renderer
	markdown interfaces.MarkdownParser
}

// NewBodyRenderer wires the two renderers. A nil markdown parser disables the
// markdown format.
func NewBodyRenderer(rt *richtext.Renderer, md interfaces.MarkdownParser) *BodyRenderer {
	if rt == nil {
		rt = richtext.New()
	}
	return &BodyRenderer{richtext: rt, markdown: md}
}

// RenderRichText renders body with the rich-text dialect. It never fails.
func (r *BodyRenderer) RenderRichText(body string) string {
	return r.richtext.Render(body)
}

// Render dispatches on format.
func (r *BodyRenderer) Render(format domain.Format, body string) (string, error) {
	switch format {
	case domain.FormatMarkdown:
		if r.markdown == nil {
			return "", fmt.Errorf("markdown: format %q is disabled", format)
		}
		html, err := r.markdown.Parse([]byte(body))
		if err != nil {
			return "", err
		}
		return string(html), nil
	case domain.FormatRichText, "":
		return r.richtext.Render(body), nil
	default:
		return "", fmt.Errorf("markdown: unsupported format %q", format)
	}
}
