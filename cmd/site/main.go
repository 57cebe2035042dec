// Command site runs and administers the NYC B2B site runtime.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	site "github.com/nycb2b/site"
	"github.com/nycb2b/site/cmd/site/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "site:", err)
		os.Exit(1)
	}
}

// cli carries the global flags shared by every subcommand.
type cli struct {
	opts bootstrap.Options
	in   io.Reader
	out  io.Writer
}

func (c *cli) module() (*site.Module, error) {
	return moduleBuilder(c.opts)
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:   "site",
		Short: "NYC B2B events, jobs and articles runtime",
		Long: `Serve and administer the NYC B2B site.

Configuration is read from --config (YAML), then SITE_* environment
variables, then the storage and logging flags below.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "site.yaml", "Path to the YAML config file")
	flags.StringVar(&c.opts.Driver, "storage-driver", "", "Override the storage driver (memory, sqlite, postgres)")
	flags.StringVar(&c.opts.DSN, "dsn", "", "Override the storage DSN")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "Override the log level")

	root.AddCommand(
		newServeCommand(c),
		newRenderCommand(c),
		newSeedCommand(c),
		newImportArticleCommand(c),
		newModerateCommand(c),
		newHashPasswordCommand(c),
	)
	return root
}
