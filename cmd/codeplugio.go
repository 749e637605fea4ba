package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/config"
	"github.com/opencps/mocodeplug/internal/container"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

// exitInvalidArgs, exitIO, exitProtocol, exitValidation, and exitVerify
// name the exit codes that main.go's exitCodeFor returns as literals.
const (
	exitInvalidArgs = 2
	exitIO          = 3
	exitProtocol    = 4
	exitValidation  = 5
	exitVerify      = 6
)

func loadCodeplug(path string) (*codeplug.Codeplug, error) {
	if path == "" {
		return nil, fmt.Errorf("codeplug file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open codeplug: %w", err)
	}
	cp, err := container.Deserialize(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to parse codeplug: %w", err)
	}
	return cp, nil
}

func saveCodeplug(path string, cp *codeplug.Codeplug) error {
	data, err := container.Serialize(cp, password)
	if err != nil {
		return fmt.Errorf("failed to serialize codeplug: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write codeplug: %w", err)
	}
	return nil
}

func loadRadioConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags())
}
