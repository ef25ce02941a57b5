// Package cli provides the outy command-line interface.  The same binary
// serves the API, applies migrations, seeds demo data and runs the
// reservation event consumer.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/outy-app/outy/internal/logging"
)

// Exit codes returned by Execute.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Version information (set at build time with -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildDate = "unknown"
)

// CLI holds the command tree and global flags.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
}

// New creates a new CLI instance writing command output to stdout.
func New() *CLI {
	c := &CLI{out: os.Stdout}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI with os.Args.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "outy: %v\n", err)
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outy",
		Short: "Outy - places, events and reservations API",
		Long: `Outy is the backend of a marketplace where businesses list places and
events and users reserve, review and check in with a QR code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init("outy", os.Getenv("APP_ENV"))
		},
	}

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(c.newSeedCmd())
	cmd.AddCommand(c.newConsumeCmd())
	cmd.AddCommand(c.newVersionCmd())
	return cmd
}
