package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportArticleCommand(c *cli) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import-article [file...]",
		Short: "Import markdown articles with front matter",
		Long: `Import one or more markdown files, or every *.md file under --dir.
Articles are matched by slug; existing records are updated in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := c.module()
			if err != nil {
				return err
			}
			defer module.Close()

			imported, err := module.ImportArticles(cmd.Context(), args, dir)
			if err != nil {
				return err
			}
			for _, article := range imported {
				if _, err := fmt.Fprintf(c.out, "%s\t%s\t%s\n", article.ID, article.Slug, article.Status); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to walk for markdown files")
	return cmd
}
