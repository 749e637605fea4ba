package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/legacyrdt"
	"github.com/opencps/mocodeplug/internal/transport"
)

var (
	dumpLegacy bool
	dumpAT     string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a codeplug file's general fields and every active channel, or inspect it with a diagnostic reader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if dumpLegacy {
			return dumpLegacyFile(path)
		}
		if dumpAT != "" {
			return dumpATSession(dumpAT)
		}
		return dumpFields(path)
	},
}

func dumpFields(path string) error {
	cp, err := loadCodeplug(path)
	if err != nil {
		return err
	}
	m := cp.ModelID()
	fmt.Printf("# %s codeplug, %d bytes\n", m, len(cp.Raw()))
	n, err := fieldValue(cp, "general.numberOfChannels")
	if err == nil {
		fmt.Printf("channels: %d\n", n.AsUint())
	}
	for _, id := range []string{"general.modelName", "general.numberOfChannels", "general.scrambleEnable"} {
		if v, err := fieldValue(cp, id); err == nil {
			fmt.Printf("%s = %s\n", id, v.String())
		}
	}
	count := int(n.AsUint())
	for i := 0; i < count; i++ {
		if err := printChannelDetail(cp, i); err != nil {
			return err
		}
	}
	return nil
}

// dumpLegacyFile reads a raw (non-container) legacy .rdt-style buffer
// directly, bypassing the schema entirely; see internal/legacyrdt.
func dumpLegacyFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open legacy file: %w", err)
	}
	summary, err := legacyrdt.Scan(buf)
	if err != nil {
		return fmt.Errorf("failed to scan legacy buffer: %w", err)
	}
	fmt.Printf("Model: %s\n", summary.Model)
	for i, ch := range summary.Channels {
		fmt.Printf("%d: %s (rx=%d tx=%d)\n", i, ch.Name, ch.RxFreq, ch.TxFreq)
	}
	for _, r := range summary.RadioIDs {
		fmt.Printf("radio id %d: %d (%s)\n", r.Index, r.ID, r.Name)
	}
	return nil
}

// dumpATSession opens the diagnostic AT debug console at host and sends one
// probe command, printing the raw response line.
func dumpATSession(host string) error {
	at := &transport.ATDebug{Host: host}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := at.Connect(ctx); err != nil {
		return err
	}
	defer at.Disconnect()

	line, err := at.SendLine(ctx, "AT+IDENT?", 2*time.Second)
	if err != nil {
		return err
	}
	fmt.Print(line)
	return nil
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpLegacy, "legacy", false, "read path as a legacy variable-length record buffer instead of a codeplug container")
	dumpCmd.Flags().StringVar(&dumpAT, "at", "", "probe the AT debug console at this host instead of reading a file")
}
