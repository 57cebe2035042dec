package articlescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const importArticlesMessageType = "site.articles.import"

// ImportArticlesCommand loads Markdown documents with front matter into the
// article store. Paths name individual files; Directory is walked for *.md
// files. At least one of them must be set.
type ImportArticlesCommand struct {
	Paths     []string `json:"paths,omitempty"`
	Directory string   `json:"directory,omitempty"`
}

// Type implements command.Message.
func (ImportArticlesCommand) Type() string { return importArticlesMessageType }

// Validate implements command.Message.
func (cmd ImportArticlesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Paths, validation.By(func(value any) error {
			if len(cmd.Paths) == 0 && strings.TrimSpace(cmd.Directory) == "" {
				return validation.NewError("site.articles.import.source_required", "paths or directory is required")
			}
			return nil
		}), validation.Each(validation.Required)),
	)
}
