package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nycb2b/site/internal/richtext"
)

func newRenderCommand(c *cli) *cobra.Command {
	var legacy bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render rich text from a file or stdin to an HTML fragment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				source []byte
				err    error
			)
			if len(args) == 1 {
				source, err = os.ReadFile(args[0])
			} else {
				source, err = io.ReadAll(c.in)
			}
			if err != nil {
				return err
			}

			policy := richtext.EscapeHTML
			if legacy {
				policy = richtext.LegacyPassthrough
			}
			html := richtext.New(richtext.WithEscapePolicy(policy)).Render(string(source))
			_, err = fmt.Fprintln(c.out, html)
			return err
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Pass matched text through without escaping (trusted input only)")
	return cmd
}
