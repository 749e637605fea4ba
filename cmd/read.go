package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/config"
	"github.com/opencps/mocodeplug/internal/program"
	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/transport"
	"github.com/opencps/mocodeplug/internal/xcmp"
	"github.com/opencps/mocodeplug/internal/xnl"
)

var (
	readModel    string
	readEndpoint string
	readOut      string
	readSerial   bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Clone a codeplug from a connected radio and save it to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if readModel == "" || readEndpoint == "" || readOut == "" {
			return fmt.Errorf("--model, --endpoint, and --out are all required")
		}
		m, ok := radio.Lookup(readModel)
		if !ok {
			return fmt.Errorf("unknown radio model %q", readModel)
		}

		cfg, err := loadRadioConfig(cmd)
		if err != nil {
			return err
		}

		sess, err := openSession(cmd.Context(), m, readEndpoint, readSerial, cfg)
		if err != nil {
			return err
		}
		defer sess.XNL.Close(context.Background())

		cp, err := program.Read(cmd.Context(), sess, m, func(done, size int) {
			fmt.Printf("\rreading... %d/%d bytes", done, size)
		})
		fmt.Println()
		if err != nil {
			return err
		}

		if err := saveCodeplug(readOut, cp); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", readOut)
		return nil
	},
}

// openSession connects a transport, drives the XNL handshake, and wraps the
// result in a program.Session ready for Read/Write.
func openSession(ctx context.Context, m *radio.Model, endpoint string, useSerial bool, cfg *config.Config) (*program.Session, error) {
	var t transport.Transport
	if useSerial {
		t = &transport.Serial{PortName: endpoint}
	} else {
		host := endpoint
		if host == "" {
			host = cfg.Host
		}
		port := cfg.Port
		if port == 0 {
			port = transport.XNLPort
		}
		t = &transport.Network{Host: host, Port: port}
	}

	sess := &xnl.Session{
		Transport: t,
		Family:    m.Family,
		Auth:      xnl.DefaultRegistry(),
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sess.Open(openCtx); err != nil {
		return nil, err
	}

	return &program.Session{XNL: sess, XCMP: &xcmp.Client{Session: sess}}, nil
}

func init() {
	readCmd.Flags().StringVar(&readModel, "model", "", "radio model id (e.g. RDU2020)")
	readCmd.Flags().StringVar(&readEndpoint, "endpoint", "", "serial device path or network host")
	readCmd.Flags().StringVar(&readOut, "out", "", "output codeplug file path")
	readCmd.Flags().BoolVar(&readSerial, "serial", false, "connect over serial instead of network")
	readCmd.Flags().String("host", "", "network host used only when --endpoint is empty (RADIO_HOST)")
	readCmd.Flags().Int("port", 0, "network port override (RADIO_PORT)")
	readCmd.Flags().Int("chunk-size", 0, "chunk size setting (RADIO_CHUNK_SIZE); not applied: block transfers always use 256-byte chunks")
	readCmd.Flags().Int("baud", 0, "baud setting (RADIO_BAUD); not applied: the serial link always opens at 115200 baud")
}
