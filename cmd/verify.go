package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/radioerr"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Run a codeplug's model validator and report any issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := loadCodeplug(args[0])
		if err != nil {
			return err
		}
		m, ok := radio.Lookup(cp.ModelID())
		if !ok {
			return fmt.Errorf("unknown radio model %q", cp.ModelID())
		}

		issues := m.Validate(cp)
		if len(issues) == 0 {
			fmt.Println("valid")
			return nil
		}

		var errorMsgs []string
		for _, issue := range issues {
			fmt.Printf("%s: %s: %s\n", issue.Severity, issue.FieldID, issue.Message)
			if issue.Severity == radio.SeverityError {
				errorMsgs = append(errorMsgs, issue.Message)
			}
		}
		if len(errorMsgs) > 0 {
			return &radioerr.ValidationFailed{Issues: errorMsgs}
		}
		return nil
	},
}
