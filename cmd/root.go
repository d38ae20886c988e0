// Package cmd implements the pezzo command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pezzo-go/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Flags.
var (
	flagUser            string
	flagGroup           string
	flagResetTimestamp  bool
	flagRemoveTimestamp bool
	flagValidate        bool
	flagBell            bool
	flagVersion         bool
)

// rootCmd is the whole CLI surface: pezzo has no subcommands, just the
// command to elevate.
var rootCmd = &cobra.Command{
	Use:   "pezzo [-u USER] [-g GROUP] [-kKvB] -- COMMAND [ARG...]",
	Short: "Run a command as another user",
	Long: `pezzo runs a command as another user after checking the rule file and
authenticating the invoker on the controlling terminal.

Authorisation comes from ` + "`/etc/pezzo.conf`" + `; a successful authentication is
remembered per session and terminal for the rule's timeout window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.Flags()
	// The first non-flag argument starts the target command; everything
	// after it belongs to that command.
	flags.SetInterspersed(false)

	flags.StringVarP(&flagUser, "user", "u", "root", "run the command as this user")
	flags.StringVarP(&flagGroup, "group", "g", "", "run the command with this group (default: the target user's primary group)")
	flags.BoolVarP(&flagResetTimestamp, "reset-timestamp", "k", false, "ignore cached credentials; without a command, drop all cached entries")
	flags.BoolVarP(&flagRemoveTimestamp, "remove-timestamp", "K", false, "remove the credential cache file and exit")
	flags.BoolVarP(&flagValidate, "validate", "v", false, "check authorisation and authenticate without running the command")
	flags.BoolVarP(&flagBell, "bell", "B", false, "ring the terminal bell when prompting")
	flags.BoolVarP(&flagVersion, "version", "V", false, "print version and exit")

	setupLogging()
}

func runRoot(cmd *cobra.Command, args []string) error {
	if flagVersion {
		fmt.Printf("pezzo %s\n", Version)
		return nil
	}

	if flagRemoveTimestamp {
		return runRemoveTimestamp()
	}
	if flagResetTimestamp && len(args) == 0 {
		return runResetTimestamp()
	}

	if len(args) == 0 {
		return fmt.Errorf("no command specified")
	}
	return runElevation(args)
}

// setupLogging keeps the binary quiet unless PEZZO_DEBUG asks otherwise.
// The variable is consulted before the environment is sanitised; log records
// only ever go to stderr.
func setupLogging() {
	if os.Getenv("PEZZO_DEBUG") == "" {
		return
	}
	logging.SetDefault(logging.NewLogger(logging.Config{
		Level:  slog.LevelDebug,
		Format: "text",
		Output: os.Stderr,
	}))
}
