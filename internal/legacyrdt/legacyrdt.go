// Package legacyrdt reads the variable-length channel and radio-ID record
// layout used by business-series radios that ship with a legacy per-record
// clone protocol instead of PSDT-addressed partitions. Records are not
// fixed-offset schema.Field entries because their length varies with the
// embedded null-terminated name, so they are walked sequentially instead of
// addressed by a flat field table. cmd/dump.go's --legacy flag exercises
// this package directly against a raw buffer.
package legacyrdt

import (
	"fmt"
)

const (
	totalChannelsAddress = 0xF1
	modelOffset          = 0x09
	modelSize            = 10
	maxRadioIDs          = 10
	channelNameOffset    = 49
	channelTrailerSize   = 27
)

// Channel is one decoded variable-length channel record.
type Channel struct {
	RxFreq               uint32
	TxFreqDirection      byte
	TxFreq               int32
	ChannelType           byte
	TxPower               byte
	Bandwidth             byte
	PttProhibit           byte
	CallConfirmation      byte
	TalkAround            byte
	CtcssDcsDecode        byte
	CtcssDcsDecodeOption  byte
	CtcssDcsEncode        byte
	CtcssDcsEncodeOption  byte
	Contact               byte
	RadioID               byte
	TxPermit              byte
	SquelchMode           byte
	ScanList              int8
	ReceiveGroupList      byte
	RxColorCode           byte
	Slot                  byte
	SlotSuit              byte
	AprsRx                byte
	AesEncryptionKey      byte
	WorkAlone             byte
	Name                  string
	Ranging               byte
	CorrectFreq           int8
	SmsConfirmation       byte
	ExcludeFromRoaming    byte
	MultipleKey           byte
	RandomKey             byte
	SmsForbid             byte
	DataAckDisable        byte
	AutoScan              byte
	SendTalkerAlias       byte
	ExtendEncryption      byte

	recordLength int // bytes consumed by this record, name included
}

// RadioIDEntry is one decoded radio-ID record.
type RadioIDEntry struct {
	Index    int
	ID       int
	Name     string
	Position int
	Length   int
}

// Summary is the result of scanning a legacy buffer: the model string, and
// every channel and radio-ID record found.
type Summary struct {
	Model     string
	Channels  []Channel
	RadioIDs  []RadioIDEntry
}

func safeByte(b []byte, i int) byte {
	if i >= 0 && i < len(b) {
		return b[i]
	}
	return 0
}

func readChannel(buf []byte, offset int) (Channel, error) {
	if offset+channelNameOffset > len(buf) {
		return Channel{}, fmt.Errorf("legacyrdt: channel header at offset %d runs past buffer", offset)
	}
	header := buf[offset : offset+channelNameOffset]

	nameStart := offset + channelNameOffset
	nameMax := 32
	if nameStart+nameMax > len(buf) {
		nameMax = len(buf) - nameStart
	}
	nameBuf := buf[nameStart : nameStart+nameMax]

	nameLen := 0
	for i, b := range nameBuf {
		if b == 0x00 {
			nameLen = i + 1
			break
		}
	}
	if nameLen == 0 {
		return Channel{}, fmt.Errorf("legacyrdt: channel name at offset %d has no null terminator", nameStart)
	}

	trailerStart := nameStart + nameLen
	if trailerStart+channelTrailerSize > len(buf) {
		return Channel{}, fmt.Errorf("legacyrdt: channel trailer at offset %d runs past buffer", trailerStart)
	}
	trailer := buf[trailerStart : trailerStart+channelTrailerSize]

	return Channel{
		RxFreq:               uint32(header[3]) | uint32(header[4])<<8 | uint32(header[5])<<16 | uint32(header[6])<<24,
		TxFreqDirection:      header[7],
		TxFreq:               int32(header[8]) | int32(header[9])<<8 | int32(header[10])<<16 | int32(header[11])<<24,
		ChannelType:          header[12],
		TxPower:              header[13],
		Bandwidth:            header[14],
		PttProhibit:          header[16],
		CallConfirmation:     header[17],
		TalkAround:           header[18],
		CtcssDcsDecode:       header[19],
		CtcssDcsDecodeOption: header[20],
		CtcssDcsEncode:       header[23],
		CtcssDcsEncodeOption: header[24],
		Contact:              header[29],
		RadioID:              header[31],
		TxPermit:             header[33],
		SquelchMode:          header[34],
		ScanList:             int8(header[35]),
		ReceiveGroupList:     header[36],
		RxColorCode:          header[41],
		Slot:                 header[42],
		SlotSuit:             header[44],
		AprsRx:               header[45],
		AesEncryptionKey:     header[46],
		WorkAlone:            header[47],
		Name:                 string(nameBuf[:nameLen-1]),

		Ranging:            trailer[2],
		CorrectFreq:        int8(trailer[8]),
		SmsConfirmation:    trailer[11],
		ExcludeFromRoaming: trailer[12],
		MultipleKey:        trailer[15],
		RandomKey:          trailer[16],
		SmsForbid:          trailer[17],
		DataAckDisable:     trailer[18],
		AutoScan:           trailer[21],
		SendTalkerAlias:    safeByte(trailer, 22),
		ExtendEncryption:   safeByte(trailer, 27),

		recordLength: channelNameOffset + nameLen + channelTrailerSize,
	}, nil
}

func readRadioID(buf []byte, offset, previousIndex int) (*RadioIDEntry, error) {
	if offset+4 > len(buf) {
		return nil, fmt.Errorf("legacyrdt: radio ID header at offset %d runs past buffer", offset)
	}
	header := buf[offset : offset+4]
	index := int(header[0])
	if index < previousIndex {
		return nil, nil // end of radio-ID section: indices are ascending but may skip
	}
	id := int(uint32(header[1]) | uint32(header[2])<<8 | uint32(header[3])<<16)

	nameStart := offset + 4
	nameMax := 256
	if nameStart+nameMax > len(buf) {
		nameMax = len(buf) - nameStart
	}
	nameBuf := buf[nameStart : nameStart+nameMax]
	nameLen := 0
	for i, b := range nameBuf {
		if b == 0 {
			nameLen = i + 1
			break
		}
	}
	if nameLen == 0 {
		return nil, fmt.Errorf("legacyrdt: radio ID name at offset %d has no null terminator", nameStart)
	}

	return &RadioIDEntry{
		Index:    index,
		ID:       id,
		Name:     string(nameBuf[:nameLen-1]),
		Position: offset,
		Length:   4 + nameLen,
	}, nil
}

// Scan walks a raw legacy codeplug buffer and decodes its model string,
// variable-length channel table, and radio-ID table.
func Scan(buf []byte) (*Summary, error) {
	if modelOffset+modelSize > len(buf) {
		return nil, fmt.Errorf("legacyrdt: buffer too small for model field")
	}
	model := string(buf[modelOffset : modelOffset+modelSize])

	if totalChannelsAddress >= len(buf) {
		return nil, fmt.Errorf("legacyrdt: buffer too small for channel count")
	}
	totalChannels := int(buf[totalChannelsAddress])

	offset := totalChannelsAddress + 1
	channels := make([]Channel, 0, totalChannels)
	for i := 0; i < totalChannels; i++ {
		ch, err := readChannel(buf, offset)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i+1, err)
		}
		channels = append(channels, ch)
		offset += ch.recordLength
	}

	radioIDOffset := offset + 2
	radioIDs := make([]RadioIDEntry, 0, maxRadioIDs)
	previousIndex := -1
	cursor := radioIDOffset
	for i := 0; i < maxRadioIDs; i++ {
		if cursor >= len(buf) {
			break // the buffer ends exactly after the last radio-ID record
		}
		entry, err := readRadioID(buf, cursor, previousIndex)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		radioIDs = append(radioIDs, *entry)
		previousIndex = entry.Index
		cursor += entry.Length
	}

	return &Summary{Model: model, Channels: channels, RadioIDs: radioIDs}, nil
}

// UpdateRadioID rewrites the radio ID at index in-place within buf. If no
// record for index exists yet, a new one is appended after the last
// existing entry; this does not shift any bytes that follow.
func UpdateRadioID(buf []byte, index, newID int) error {
	if index < 0 || index >= maxRadioIDs {
		return fmt.Errorf("legacyrdt: invalid radio ID index %d", index)
	}
	summary, err := Scan(buf)
	if err != nil {
		return err
	}

	for _, e := range summary.RadioIDs {
		if e.Index == index {
			writeRadioID(buf, e.Position, e.Index, newID, e.Name)
			return nil
		}
	}

	insertPos := len(buf)
	if len(summary.RadioIDs) > 0 {
		last := summary.RadioIDs[len(summary.RadioIDs)-1]
		insertPos = last.Position + last.Length
	}
	name := fmt.Sprintf("Radio ID %d", index+1)
	needed := insertPos + 4 + len(name) + 1
	if needed > len(buf) {
		return fmt.Errorf("legacyrdt: no room to append radio ID entry at offset %d", insertPos)
	}
	writeRadioID(buf, insertPos, index, newID, name)
	return nil
}

func writeRadioID(buf []byte, pos, index, id int, name string) {
	buf[pos] = byte(index)
	buf[pos+1] = byte(id & 0xFF)
	buf[pos+2] = byte((id >> 8) & 0xFF)
	buf[pos+3] = byte((id >> 16) & 0xFF)
	copy(buf[pos+4:], name)
	buf[pos+4+len(name)] = 0
}
