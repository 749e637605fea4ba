package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/transform"
	"github.com/opencps/mocodeplug/internal/xcmp"
)

var (
	liveModel    string
	liveEndpoint string
	liveSerial   bool
	liveZone     uint8
	liveChannel  uint16
)

// liveChannelCmd reads one channel attribute straight off the radio without
// a full clone, exercising XCMP's channel-aware accessors.
var liveChannelCmd = &cobra.Command{
	Use:   "live-channel",
	Short: "Read one channel's name/frequencies live from a connected radio",
	RunE: func(cmd *cobra.Command, args []string) error {
		if liveModel == "" || liveEndpoint == "" {
			return fmt.Errorf("--model and --endpoint are required")
		}
		m, ok := radio.Lookup(liveModel)
		if !ok {
			return fmt.Errorf("unknown radio model %q", liveModel)
		}

		cfg, err := loadRadioConfig(cmd)
		if err != nil {
			return err
		}
		sess, err := openSession(cmd.Context(), m, liveEndpoint, liveSerial, cfg)
		if err != nil {
			return err
		}
		defer sess.XNL.Close(context.Background())

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		name, err := sess.XCMP.ReadChannelField(ctx, liveZone, liveChannel, xcmp.ChannelFieldName)
		if err != nil {
			return err
		}
		rx, err := sess.XCMP.ReadChannelField(ctx, liveZone, liveChannel, xcmp.ChannelFieldRxFreq)
		if err != nil {
			return err
		}
		tx, err := sess.XCMP.ReadChannelField(ctx, liveZone, liveChannel, xcmp.ChannelFieldTxFreq)
		if err != nil {
			return err
		}

		fmt.Printf("zone %d channel %d: %s (Rx: %s MHz, Tx: %s MHz)\n",
			liveZone, liveChannel, trimNulString(name),
			transform.Frequency{}.ToDisplay(binary.BigEndian.Uint32(rx)),
			transform.Frequency{}.ToDisplay(binary.BigEndian.Uint32(tx)))
		return nil
	},
}

func trimNulString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func init() {
	liveChannelCmd.Flags().StringVar(&liveModel, "model", "", "radio model id")
	liveChannelCmd.Flags().StringVar(&liveEndpoint, "endpoint", "", "serial device path or network host")
	liveChannelCmd.Flags().BoolVar(&liveSerial, "serial", false, "connect over serial instead of network")
	liveChannelCmd.Flags().Uint8Var(&liveZone, "zone", 0, "zone index")
	liveChannelCmd.Flags().Uint16Var(&liveChannel, "channel", 0, "channel index")
	liveChannelCmd.Flags().String("host", "", "network host used only when --endpoint is empty (RADIO_HOST)")
	liveChannelCmd.Flags().Int("port", 0, "network port override (RADIO_PORT)")
	liveChannelCmd.Flags().Int("chunk-size", 0, "chunk size setting (RADIO_CHUNK_SIZE); not applied: block transfers always use 256-byte chunks")
	liveChannelCmd.Flags().Int("baud", 0, "baud setting (RADIO_BAUD); not applied: the serial link always opens at 115200 baud")
}
