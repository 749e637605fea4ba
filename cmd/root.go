// Package cmd implements the mocodeplug command-line interface: local file
// inspection/editing (info, get, set, dump, verify) and radio-facing
// operations (read, write, discover, live-channel). The "leading bare
// argument is the codeplug path" parsing convention is kept since it is
// still the friendliest UX for a tool whose primary argument is a file.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/opencps/mocodeplug/internal/radio/models"
)

var (
	codeplugFile string
	password     string
	log          = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "mocodeplug",
	Short: "A CLI tool for working with Motorola radio codeplugs",
	Long: `A command-line interface for working with Motorola two-way radio codeplugs.
This tool views and modifies codeplug files, and can read from or write to a
connected radio over serial or network transport, without the vendor's CPS
software.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() error {
	// If we have arguments and the first one doesn't start with a dash, it's
	// likely our codeplug file.
	if len(os.Args) > 1 && os.Args[1][0] != '-' {
		if isCommand(os.Args[1]) {
			// First arg is a command, not a file.
			return rootCmd.Execute()
		}

		codeplugFile = os.Args[1]

		// Remove the codeplug file from args so cobra doesn't see it. A bit
		// hacky but works with cobra's arg parsing.
		if len(os.Args) > 2 {
			newArgs := make([]string, 0, len(os.Args)-1)
			newArgs = append(newArgs, os.Args[0])
			newArgs = append(newArgs, os.Args[2:]...)
			os.Args = newArgs
		}
	}

	return rootCmd.Execute()
}

// isCommand reports whether cmd names a known top-level command rather than
// a codeplug file path.
func isCommand(cmd string) bool {
	commands := []string{"help", "completion", "info", "get", "set", "dump", "verify", "read", "write", "discover", "live-channel"}
	for _, c := range commands {
		if c == cmd {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "container password, if the codeplug file is encrypted")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(liveChannelCmd)
}
