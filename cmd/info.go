package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/transform"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about the codeplug",
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := loadCodeplug(codeplugFile)
		if err != nil {
			return err
		}

		m, ok := radio.Lookup(cp.ModelID())
		if !ok {
			return fmt.Errorf("unknown radio model %q", cp.ModelID())
		}

		fmt.Printf("Model: %s (%s)\n", m.DisplayName(), m.ID())
		fmt.Printf("Size: %d bytes\n", m.CodeplugSize())
		fmt.Printf("Band: %s (%.1f-%.1f MHz)\n", m.SupportedBand.Name, m.SupportedBand.LowerMHz, m.SupportedBand.UpperMHz)
		fmt.Printf("Has unsaved changes: %t\n", cp.HasUnsavedChanges())
		if cp.HasUnsavedChanges() {
			fmt.Printf("Dirty fields: %v\n", cp.DirtyFieldIDs())
		}
		if f, ok := cp.FieldByID("general.firmwareVersion"); ok {
			v, err := cp.Get(f)
			if err != nil {
				return err
			}
			raw := v.AsBytes()
			if len(raw) == 3 {
				var triplet [3]byte
				copy(triplet[:], raw)
				fmt.Printf("Firmware: %s\n", transform.VersionTriplet{}.ToDisplay(triplet))
			}
		}
		return nil
	},
}
