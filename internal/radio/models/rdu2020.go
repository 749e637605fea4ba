// Package models registers every supported radio model with internal/radio
// at init time. Callers that need model lookups blank-import this package
// (see cmd/root.go) so the registry is populated before any command runs.
package models

import (
	"fmt"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/schema"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

const (
	rdu2020Size          = 4096
	rdu2020MaxChannels   = 16
	rdu2020ChannelBase   = 64 * 8  // bits
	rdu2020ChannelStride = 32 * 8  // bits
)

func rdu2020Tree() *schema.Node {
	minFreq := int64(4_000_000)
	maxFreq := int64(4_700_000)

	channelTemplate := &schema.Node{
		Name: "channel",
		Fields: []*schema.Field{
			{
				ID: "channel.rxFreq", Name: "Receive Frequency", Category: schema.CategoryChannel,
				Kind: schema.KindU32, BitOffset: rdu2020ChannelBase, BitLength: 32,
				Default:    schema.U32(uint32(minFreq)),
				Constraint: &schema.Constraint{Min: &minFreq, Max: &maxFreq},
				HelpText:   "Receive frequency in 100 Hz units",
			},
			{
				ID: "channel.txFreq", Name: "Transmit Frequency", Category: schema.CategoryChannel,
				Kind: schema.KindU32, BitOffset: rdu2020ChannelBase + 32, BitLength: 32,
				Default:    schema.U32(uint32(minFreq)),
				Constraint: &schema.Constraint{Min: &minFreq, Max: &maxFreq},
				HelpText:   "Transmit frequency in 100 Hz units",
			},
			{
				ID: "channel.name", Name: "Channel Name", Category: schema.CategoryChannel,
				Kind: schema.KindString, BitOffset: rdu2020ChannelBase + 64, BitLength: 16 * 8,
				Default: schema.String(""),
			},
			{
				ID: "channel.scrambleCode", Name: "Scramble Code", Category: schema.CategorySignaling,
				Kind: schema.KindU8, BitOffset: rdu2020ChannelBase + 64 + 16*8, BitLength: 8,
				Default: schema.U8(0),
			},
			{
				ID: "channel.ctcssIndex", Name: "CTCSS Tone", Category: schema.CategorySignaling,
				Kind: schema.KindU8, BitOffset: rdu2020ChannelBase + 64 + 16*8 + 8, BitLength: 8,
				Default: schema.U8(0),
			},
			{
				ID: "channel.txInhibit", Name: "Transmit Inhibit", Category: schema.CategoryChannel,
				Kind: schema.KindBool, BitOffset: rdu2020ChannelBase + 64 + 16*8 + 16, BitLength: 8,
				Default:  schema.Bool(false),
				HelpText: "Raw storage sense: true disables transmit on this channel. Presented to the user inverted, as \"Transmit Enabled\".",
			},
			{
				ID: "channel.squelchLevel", Name: "Squelch Level", Category: schema.CategoryAudio,
				Kind: schema.KindU8, BitOffset: rdu2020ChannelBase + 64 + 16*8 + 24, BitLength: 8,
				Default:    schema.U8(5),
				Constraint: &schema.Constraint{Min: int64p(0), Max: int64p(9)},
				HelpText:   "Squelch opening threshold, 0 (most sensitive) to 9 (least). Presented to the user as a percentage.",
			},
		},
	}

	channels := &schema.Node{
		Name:   "channels",
		Fields: nil,
		Children: []*schema.Node{
			{
				Name:   "channel",
				Fields: channelTemplate.Fields,
				Repeat: &schema.Repeat{Count: rdu2020MaxChannels, StrideBits: rdu2020ChannelStride},
			},
		},
	}

	general := &schema.Node{
		Name: "general",
		Fields: []*schema.Field{
			{
				ID: "general.numberOfChannels", Name: "Number of Channels", Category: schema.CategoryGeneral,
				Kind: schema.KindU8, BitOffset: 0, BitLength: 8,
				Default:    schema.U8(2),
				Constraint: &schema.Constraint{Min: int64p(1), Max: int64p(rdu2020MaxChannels)},
			},
			{
				ID: "general.modelName", Name: "Model Name", Category: schema.CategoryGeneral,
				Kind: schema.KindString, BitOffset: 8, BitLength: 9 * 8,
				Default:  schema.String("RDU2020"),
				ReadOnly: true,
			},
			{
				ID: "general.scrambleEnable", Name: "Scramble Enable", Category: schema.CategorySignaling,
				Kind: schema.KindBool, BitOffset: 80, BitLength: 8,
				Default: schema.Bool(false),
			},
			{
				ID: "general.firmwareVersion", Name: "Firmware Version", Category: schema.CategoryGeneral,
				Kind: schema.KindBytes, BitOffset: 88, BitLength: 3 * 8,
				Default:  schema.BytesValue([]byte{'A', 1, 0}),
				ReadOnly: true,
				HelpText: "Three raw bytes [letter, major, minor], presented as \"A01.00\".",
			},
		},
	}

	return &schema.Node{Name: "rdu2020", Children: []*schema.Node{general, channels}}
}

func int64p(v int64) *int64 { return &v }

func rdu2020Default() ([]byte, codeplug.Metadata) {
	raw := make([]byte, rdu2020Size)
	copy(raw[1:10], "RDU2020\x00\x00")
	raw[0] = 2 // general.numberOfChannels
	raw[11], raw[12], raw[13] = 'A', 1, 0 // general.firmwareVersion

	writeChannel := func(idx int, rxFreq, txFreq uint32, name string) {
		base := (rdu2020ChannelBase + idx*rdu2020ChannelStride) / 8
		raw[base] = byte(rxFreq)
		raw[base+1] = byte(rxFreq >> 8)
		raw[base+2] = byte(rxFreq >> 16)
		raw[base+3] = byte(rxFreq >> 24)
		raw[base+4] = byte(txFreq)
		raw[base+5] = byte(txFreq >> 8)
		raw[base+6] = byte(txFreq >> 16)
		raw[base+7] = byte(txFreq >> 24)
		copy(raw[base+8:base+8+16], name)
	}
	writeChannel(0, 4_625_625, 4_625_625, "Channel 1")
	writeChannel(1, 4_627_500, 4_627_500, "Channel 2")

	return raw, codeplug.Metadata{RadioModelName: "RDU2020"}
}

func rdu2020Validate(cp *codeplug.Codeplug) []radio.Issue {
	var issues []radio.Issue
	m, ok := radio.Lookup("RDU2020")
	if !ok {
		return issues
	}
	numCh, err := cp.Get(mustField(m, "general.numberOfChannels"))
	if err != nil {
		return issues
	}
	n := int(numCh.AsUint())
	for i := 0; i < n; i++ {
		for _, base := range []string{"channel.rxFreq", "channel.txFreq"} {
			id := fmt.Sprintf("%s#%d", base, i)
			f, ok := m.FieldByID(id)
			if !ok {
				continue
			}
			v, err := cp.Get(f)
			if err != nil {
				continue
			}
			raw := int64(v.AsUint())
			if f.Constraint != nil {
				if (f.Constraint.Min != nil && raw < *f.Constraint.Min) ||
					(f.Constraint.Max != nil && raw > *f.Constraint.Max) {
					issues = append(issues, radio.Issue{
						Severity: radio.SeverityError,
						FieldID:  id,
						Message:  fmt.Sprintf("%s %d (100 Hz units) is outside the supported band", base, raw),
					})
				}
			}
		}
	}
	return issues
}

func mustField(m *radio.Model, id string) *schema.Field {
	f, ok := m.FieldByID(id)
	if !ok {
		panic(fmt.Sprintf("model %q: missing required field %q", m.ID(), id))
	}
	return f
}

func rdu2020Dependencies() map[string]radio.DependencyFn {
	return map[string]radio.DependencyFn{
		"general.scrambleEnable": func(fieldID string, cp *codeplug.Codeplug) error {
			enabled, err := cp.Get(mustFieldByID(cp, "general.scrambleEnable"))
			if err != nil {
				return err
			}
			if enabled.AsBool() {
				return nil // enabling scramble doesn't touch per-channel codes
			}
			m, ok := radio.Lookup("RDU2020")
			if !ok {
				return nil
			}
			for i := 0; i < rdu2020MaxChannels; i++ {
				id := fmt.Sprintf("channel.scrambleCode#%d", i)
				f, ok := m.FieldByID(id)
				if !ok {
					continue
				}
				if err := cp.Set(schema.U8(0), f); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func mustFieldByID(cp *codeplug.Codeplug, id string) *schema.Field {
	f, ok := cp.FieldByID(id)
	if !ok {
		panic(fmt.Sprintf("codeplug: missing required field %q", id))
	}
	return f
}

func init() {
	m := &radio.Model{
		IDStr:         "RDU2020",
		Name:          "Motorola RDU2020",
		Family:        "business-uhf",
		SizeBytes:     rdu2020Size,
		MaxChannels:   rdu2020MaxChannels,
		SupportedBand: radio.Band{Name: "UHF", LowerMHz: 400, UpperMHz: 470, SpacingKHz: 12.5},
		Tree:          rdu2020Tree(),
	}
	m.DefaultFactory = rdu2020Default
	m.Validator = rdu2020Validate
	if err := radio.Register(m); err != nil {
		panic(err)
	}
	m.Dependencies = rdu2020Dependencies()
}
