package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/program"
	"github.com/opencps/mocodeplug/internal/radio"
)

var (
	writeIn       string
	writeEndpoint string
	writeSerial   bool
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Push a codeplug file to a connected radio and verify it byte-for-byte",
	RunE: func(cmd *cobra.Command, args []string) error {
		if writeIn == "" || writeEndpoint == "" {
			return fmt.Errorf("--in and --endpoint are required")
		}

		cp, err := loadCodeplug(writeIn)
		if err != nil {
			return err
		}
		m, ok := radio.Lookup(cp.ModelID())
		if !ok {
			return fmt.Errorf("unknown radio model %q", cp.ModelID())
		}

		cfg, err := loadRadioConfig(cmd)
		if err != nil {
			return err
		}

		sess, err := openSession(cmd.Context(), m, writeEndpoint, writeSerial, cfg)
		if err != nil {
			return err
		}
		defer sess.XNL.Close(context.Background())

		err = program.Write(cmd.Context(), sess, m, cp, func(done, size int) {
			fmt.Printf("\rwriting... %d/%d bytes", done, size)
		})
		fmt.Println()
		if err != nil {
			return err
		}
		fmt.Println("write complete and verified")
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeIn, "in", "", "input codeplug file path")
	writeCmd.Flags().StringVar(&writeEndpoint, "endpoint", "", "serial device path or network host")
	writeCmd.Flags().BoolVar(&writeSerial, "serial", false, "connect over serial instead of network")
	writeCmd.Flags().String("host", "", "network host used only when --endpoint is empty (RADIO_HOST)")
	writeCmd.Flags().Int("port", 0, "network port override (RADIO_PORT)")
	writeCmd.Flags().Int("chunk-size", 0, "chunk size setting (RADIO_CHUNK_SIZE); not applied: block transfers always use 256-byte chunks")
	writeCmd.Flags().Int("baud", 0, "baud setting (RADIO_BAUD); not applied: the serial link always opens at 115200 baud")
}
