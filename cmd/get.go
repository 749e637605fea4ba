package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/schema"
	"github.com/opencps/mocodeplug/internal/transform"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Get codeplug parameters",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if codeplugFile == "" {
			return fmt.Errorf("codeplug file path is required")
		}
		return nil
	},
}

var getChannelCmd = &cobra.Command{
	Use:   "channel [index]",
	Short: "Get channel(s). If no index is provided, returns all channels.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := loadCodeplug(codeplugFile)
		if err != nil {
			return err
		}

		n, err := fieldValue(cp, "general.numberOfChannels")
		if err != nil {
			return err
		}
		numChannels := int(n.AsUint())

		if len(args) == 0 {
			for i := 0; i < numChannels; i++ {
				if err := printChannelSummary(cp, i); err != nil {
					return err
				}
			}
			return nil
		}

		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}
		return printChannelDetail(cp, index)
	},
}

func printChannelSummary(cp *codeplug.Codeplug, index int) error {
	rx, err := fieldValue(cp, indexedID("channel.rxFreq", index))
	if err != nil {
		return err
	}
	tx, err := fieldValue(cp, indexedID("channel.txFreq", index))
	if err != nil {
		return err
	}
	name, err := fieldValue(cp, indexedID("channel.name", index))
	if err != nil {
		return err
	}
	fmt.Printf("%d: %s (Rx: %s MHz, Tx: %s MHz)\n", index, name.AsString(),
		transform.Frequency{}.ToDisplay(rx.AsUint()), transform.Frequency{}.ToDisplay(tx.AsUint()))
	return nil
}

func printChannelDetail(cp *codeplug.Codeplug, index int) error {
	fields := []string{
		"channel.name", "channel.rxFreq", "channel.txFreq", "channel.scrambleCode",
		"channel.ctcssIndex", "channel.txInhibit", "channel.squelchLevel",
	}
	fmt.Printf("Channel %d:\n", index)
	for _, base := range fields {
		v, err := fieldValue(cp, indexedID(base, index))
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %s\n", base, displayValue(base, v))
	}
	return nil
}

// channelSquelchScale maps the channel.squelchLevel raw storage range onto
// the 0-100% the UI shows.
var channelSquelchScale = transform.LinearScale{A: 0, B: 9, X: 0, Y: 100, Suffix: "%"}

// displayValue formats a field's value for CLI output, applying the
// transform a field's storage sense requires.
func displayValue(base string, v schema.Value) string {
	switch base {
	case "channel.ctcssIndex":
		return transform.CTCSS{}.ToDisplay(uint8(v.AsUint()))
	case "channel.txInhibit":
		return fmt.Sprintf("%v (Transmit Enabled)", transform.InvertedBool{}.ToDisplay(v.AsBool()))
	case "channel.squelchLevel":
		return channelSquelchScale.ToDisplay(int64(v.AsUint()))
	default:
		return v.String()
	}
}

var getFieldCmd = &cobra.Command{
	Use:   "field <field_id>",
	Short: "Get a single field's value by its fully qualified id (e.g. general.modelName, channel.rxFreq#0)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := loadCodeplug(codeplugFile)
		if err != nil {
			return err
		}
		v, err := fieldValue(cp, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v.String())
		return nil
	},
}

func indexedID(base string, index int) string {
	return fmt.Sprintf("%s#%d", base, index)
}

// fieldValue looks up id through cp's owning model and reads it.
func fieldValue(cp *codeplug.Codeplug, id string) (schema.Value, error) {
	f, ok := cp.FieldByID(id)
	if !ok {
		return schema.Value{}, fmt.Errorf("no such field %q", id)
	}
	return cp.Get(f)
}

func init() {
	getCmd.AddCommand(getChannelCmd)
	getCmd.AddCommand(getFieldCmd)
}
