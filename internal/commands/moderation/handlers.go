package moderationcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/audit"
	"github.com/nycb2b/site/internal/commands"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/interfaces"
)

// ErrKindUnavailable is returned when no service is wired for a kind.
var ErrKindUnavailable = errors.New("moderation command: content kind unavailable")

var (
	_ command.Commander[ModerateCommand] = (*ModerateHandler)(nil)
	_ command.Commander[ReorderCommand]  = (*ReorderHandler)(nil)
)

// Services groups the content services the handlers dispatch to. Nil
// members disable their kind. Audit, when set, receives every applied
// moderation decision.
type Services struct {
	Events   events.Service
	Jobs     jobs.Service
	Articles articles.Service
	Audit    audit.Recorder
	Now      func() time.Time
}

func (s Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Services) moderate(ctx context.Context, kind domain.Kind, input domain.ModerationInput) (string, error) {
	switch kind {
	case domain.KindEvent:
		if s.Events == nil {
			break
		}
		record, err := s.Events.Moderate(ctx, input)
		if err != nil {
			return "", err
		}
		return string(record.Status), nil
	case domain.KindJob:
		if s.Jobs == nil {
			break
		}
		record, err := s.Jobs.Moderate(ctx, input)
		if err != nil {
			return "", err
		}
		return string(record.Status), nil
	case domain.KindArticle:
		if s.Articles == nil {
			break
		}
		record, err := s.Articles.Moderate(ctx, input)
		if err != nil {
			return "", err
		}
		return string(record.Status), nil
	}
	return "", fmt.Errorf("%w: %s", ErrKindUnavailable, kind)
}

func (s Services) reorder(ctx context.Context, kind domain.Kind, ids []uuid.UUID) error {
	var err error
	switch kind {
	case domain.KindEvent:
		if s.Events == nil {
			break
		}
		_, err = s.Events.Reorder(ctx, ids)
		return err
	case domain.KindJob:
		if s.Jobs == nil {
			break
		}
		_, err = s.Jobs.Reorder(ctx, ids)
		return err
	case domain.KindArticle:
		if s.Articles == nil {
			break
		}
		_, err = s.Articles.Reorder(ctx, ids)
		return err
	}
	return fmt.Errorf("%w: %s", ErrKindUnavailable, kind)
}

// ModerateHandler executes ModerateCommand.
type ModerateHandler struct {
	inner *commands.Handler[ModerateCommand]
}

// NewModerateHandler constructs a handler wired to services.
func NewModerateHandler(services Services, logger interfaces.Logger, opts ...commands.HandlerOption[ModerateCommand]) *ModerateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ModerateCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			return err
		}
		status, err := services.moderate(ctx, kind, domain.ModerationInput{
			ID:      id,
			Action:  msg.Action,
			ActorID: msg.ActorID,
			Note:    msg.Note,
		})
		if err != nil {
			return err
		}
		recordLogger := logging.WithRecord(baseLogger, string(kind), id.String(), "")
		recordLogger.Info("moderation.command.applied", "action", msg.Action, "status", status)
		if services.Audit != nil {
			entry := audit.Entry{
				Kind:       string(kind),
				RecordID:   id.String(),
				Action:     msg.Action,
				Status:     status,
				Actor:      msg.ActorID,
				Note:       msg.Note,
				OccurredAt: services.now().UTC(),
			}
			if err := services.Audit.Record(ctx, entry); err != nil {
				recordLogger.Warn("moderation.audit.failed", "error", err)
			}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ModerateCommand]{
		commands.WithLogger[ModerateCommand](baseLogger),
		commands.WithOperation[ModerateCommand]("moderation.moderate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ModerateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ModerateCommand].
func (h *ModerateHandler) Execute(ctx context.Context, msg ModerateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReorderHandler executes ReorderCommand.
type ReorderHandler struct {
	inner *commands.Handler[ReorderCommand]
}

// NewReorderHandler constructs a handler wired to services.
func NewReorderHandler(services Services, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderCommand]) *ReorderHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ReorderCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(msg.IDs))
		for _, raw := range msg.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if err := services.reorder(ctx, kind, ids); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{"kind": string(kind)}).
			Info("moderation.command.reordered", "count", len(ids))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ReorderCommand]{
		commands.WithLogger[ReorderCommand](baseLogger),
		commands.WithOperation[ReorderCommand]("moderation.reorder"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReorderHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReorderCommand].
func (h *ReorderHandler) Execute(ctx context.Context, msg ReorderCommand) error {
	return h.inner.Execute(ctx, msg)
}
