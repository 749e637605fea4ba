package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opencps/mocodeplug/internal/schema"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set codeplug parameters",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if codeplugFile == "" {
			return fmt.Errorf("codeplug file path is required")
		}
		return nil
	},
}

var setFieldCmd = &cobra.Command{
	Use:   "field <field_id> <value>",
	Short: "Set a single field's value by its fully qualified id (e.g. channel.rxFreq#0 4625625)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := loadCodeplug(codeplugFile)
		if err != nil {
			return err
		}

		f, ok := cp.FieldByID(args[0])
		if !ok {
			return fmt.Errorf("no such field %q", args[0])
		}

		v, err := parseValue(f.Kind, args[1])
		if err != nil {
			return fmt.Errorf("invalid value for %s field %q: %w", f.Kind, args[0], err)
		}

		if err := cp.Set(v, f); err != nil {
			return fmt.Errorf("failed to set %q: %w", args[0], err)
		}

		if err := saveCodeplug(codeplugFile, cp); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s\n", args[0], v.String())
		return nil
	},
}

// parseValue converts a command-line string into a schema.Value of the
// given kind. String fields are taken verbatim; every numeric kind is
// parsed as a plain base-10 integer, matching the raw units the schema
// stores values in.
func parseValue(kind schema.Kind, raw string) (schema.Value, error) {
	switch kind {
	case schema.KindU8:
		n, err := strconv.ParseUint(raw, 10, 8)
		return schema.U8(uint8(n)), err
	case schema.KindU16:
		n, err := strconv.ParseUint(raw, 10, 16)
		return schema.U16(uint16(n)), err
	case schema.KindU32, schema.KindEnum, schema.KindBitField:
		n, err := strconv.ParseUint(raw, 10, 32)
		return schema.Value{Kind: kind, Num: uint32(n)}, err
	case schema.KindI8:
		n, err := strconv.ParseInt(raw, 10, 8)
		return schema.I8(int8(n)), err
	case schema.KindI16:
		n, err := strconv.ParseInt(raw, 10, 16)
		return schema.I16(int16(n)), err
	case schema.KindI32:
		n, err := strconv.ParseInt(raw, 10, 32)
		return schema.I32(int32(n)), err
	case schema.KindBool:
		b, err := strconv.ParseBool(raw)
		return schema.Bool(b), err
	case schema.KindString:
		return schema.String(raw), nil
	default:
		return schema.Value{}, fmt.Errorf("unsupported field kind %s", kind)
	}
}

func init() {
	setCmd.AddCommand(setFieldCmd)
}
