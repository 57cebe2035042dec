package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nycb2b/site/cmd/site/internal/seed"
	"github.com/nycb2b/site/internal/logging"
)

func newSeedCommand(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture events, jobs and articles with stable IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := loadFixtures(file)
			if err != nil {
				return err
			}

			ids := &seed.IDQueue{}
			opts := c.opts
			opts.IDGenerator = ids.Generator()
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			seeder := seed.Seeder{
				Services: seed.Services{
					Events:   module.Events(),
					Jobs:     module.Jobs(),
					Articles: module.Articles(),
				},
				IDs:    ids,
				Logger: logging.ModuleLogger(module.Container().LoggerProvider(), logging.StorageModule),
			}
			result, err := seeder.Run(cmd.Context(), fixtures)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "seeded %d records (%d already present)\n", result.Created, result.Skipped)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Fixtures YAML file (defaults to the bundled fixtures)")
	return cmd
}

func loadFixtures(path string) (seed.Fixtures, error) {
	if path == "" {
		return seed.Bundled()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return seed.Fixtures{}, err
	}
	return seed.Parse(data)
}
