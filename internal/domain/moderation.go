package domain

import "github.com/google/uuid"

// ModerationInput asks a content service to apply a workflow transition.
type ModerationInput struct {
	ID      uuid.UUID
	Action  string
	ActorID string
	Note    string
}
