package moderationcmd

import (
	"context"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/workflow"
)

func TestModerateHandlerSubscribesToDispatcher(t *testing.T) {
	ctx := context.Background()
	svc := newEventService()
	record := submitEvent(t, svc, "Dispatch Mixer")

	sub := dispatcher.SubscribeCommand(NewModerateHandler(Services{Events: svc}, nil))
	defer sub.Unsubscribe()

	err := dispatcher.Dispatch(ctx, ModerateCommand{
		Kind:   "event",
		ID:     record.ID.String(),
		Action: workflow.TransitionReject,
		Note:   "off topic",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	updated, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %q", updated.Status)
	}
}
