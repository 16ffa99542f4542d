// Package cli implements the parley command surface. Service dependencies
// are package-level variables set during app initialization.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "parley - scripted LLM negotiation simulator",
	Long: `parley simulates a multi-turn funding negotiation between two scripted
personas: a corporate sponsor and a nonprofit. Each turn follows a scripted
tactic playbook; an LLM collaborator voices the lines in persona, random
events perturb the session, and transcripts, metrics, and outcomes are
recorded locally.

Run 'parley run' to start a session, 'parley sessions' to browse recorded
transcripts, and 'parley metrics' for aggregates.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("parley %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
