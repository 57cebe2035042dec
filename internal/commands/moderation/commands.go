package moderationcmd

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/workflow"
)

const (
	moderateMessageType = "site.moderation.moderate"
	reorderMessageType  = "site.moderation.reorder"
)

const maxNoteLength = 2000

// ModerateCommand applies a workflow transition to one record.
type ModerateCommand struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Action  string `json:"action"`
	ActorID string `json:"actor_id,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Type implements command.Message.
func (ModerateCommand) Type() string { return moderateMessageType }

// Validate implements command.Message.
func (c ModerateCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required, validation.By(knownKind)),
		validation.Field(&c.ID, validation.Required, is.UUID),
		validation.Field(&c.Action, validation.Required, validation.In(
			workflow.TransitionApprove,
			workflow.TransitionReject,
			workflow.TransitionPublish,
			workflow.TransitionUnpublish,
		)),
		validation.Field(&c.Note, validation.Length(0, maxNoteLength)),
	)
}

// ReorderCommand rewrites the display order of a collection. IDs are
// listed first to last.
type ReorderCommand struct {
	Kind string   `json:"kind"`
	IDs  []string `json:"ids"`
}

// Type implements command.Message.
func (ReorderCommand) Type() string { return reorderMessageType }

// Validate implements command.Message.
func (c ReorderCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required, validation.By(knownKind)),
		validation.Field(&c.IDs, validation.Required, validation.Each(validation.Required, is.UUID)),
	)
}

func knownKind(value any) error {
	raw, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if _, err := domain.ParseKind(raw); err != nil {
		return errors.New("must be one of event, job or article")
	}
	return nil
}
