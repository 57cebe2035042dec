package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	site "github.com/nycb2b/site"
	moderationcmd "github.com/nycb2b/site/internal/commands/moderation"
	"github.com/nycb2b/site/internal/domain"
)

func newModerateCommand(c *cli) *cobra.Command {
	var (
		note  string
		actor string
	)
	cmd := &cobra.Command{
		Use:   "moderate <kind> <id> <action>",
		Short: "Approve, reject, publish or unpublish a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := c.module()
			if err != nil {
				return err
			}
			defer module.Close()

			msg := moderationcmd.ModerateCommand{
				Kind:    args[0],
				ID:      args[1],
				Action:  args[2],
				ActorID: actor,
				Note:    note,
			}
			if err := module.Container().ModerateHandler().Execute(cmd.Context(), msg); err != nil {
				return err
			}

			status, err := currentStatus(cmd.Context(), module, msg.Kind, msg.ID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "%s %s is now %s\n", msg.Kind, msg.ID, status)
			return err
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Review note stored with the decision")
	cmd.Flags().StringVar(&actor, "actor", "cli", "Actor recorded on the decision")
	return cmd
}

func currentStatus(ctx context.Context, module *site.Module, kindName, rawID string) (domain.Status, error) {
	kind, err := domain.ParseKind(kindName)
	if err != nil {
		return "", err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", err
	}
	switch kind {
	case domain.KindEvent:
		record, err := module.Events().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	case domain.KindJob:
		record, err := module.Jobs().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	default:
		record, err := module.Articles().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	}
}
