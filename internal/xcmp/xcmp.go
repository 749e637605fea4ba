// Package xcmp implements the request/reply command protocol that rides
// inside XNL payloads: identify, partition addressing, session control,
// block read/write, and channel-aware live accessors.
package xcmp

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/internal/xnl"
)

// xnlCarrierOpcode is the single XNL opcode all XCMP traffic rides inside;
// the XCMP opcode itself is the first two bytes of the XNL payload.
const xnlCarrierOpcode = 0x10

const (
	opIdentify      = 0x01
	opPSDT          = 0x02
	opSessionStart  = 0x03
	opSessionReset  = 0x04
	opBlockRead     = 0x05
	opBlockWrite    = 0x06
	opChannelRead   = 0x07
)

const (
	// ChannelFieldName, ChannelFieldRxFreq, ChannelFieldTxFreq select which
	// channel attribute a channel-aware read fetches.
	ChannelFieldName   = 0
	ChannelFieldRxFreq = 1
	ChannelFieldTxFreq = 2

	// SessionModeRead and SessionModeWrite select a session's direction.
	SessionModeRead  = 0
	SessionModeWrite = 1

	defaultTimeout = 5 * time.Second
)

// IdentifyResult is the radio's self-description.
type IdentifyResult struct {
	Model    string
	Serial   string
	RadioID  uint32
	Firmware string
	Family   string
}

// Partition is a named region's address span within the codeplug store.
type Partition struct {
	Start, End uint32
}

func (p Partition) Size() int { return int(p.End - p.Start) }

// Client issues XCMP requests over an open XNL session.
type Client struct {
	Session *xnl.Session
	Timeout time.Duration
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Client) request(ctx context.Context, opcode uint16, body []byte) ([]byte, error) {
	payload := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(payload[0:2], opcode)
	copy(payload[2:], body)

	reply, err := c.Session.Request(ctx, xnlCarrierOpcode, payload, c.timeout())
	if err != nil {
		return nil, err
	}
	if len(reply.Payload) < 3 {
		return nil, fmt.Errorf("xcmp: reply too short (%d bytes)", len(reply.Payload))
	}
	status := reply.Payload[2]
	data := reply.Payload[3:]
	if status != 0 {
		return nil, &radioerr.XcmpError{Opcode: opcode, Code: status, Msg: "radio reported failure"}
	}
	return data, nil
}

// Identify reads model, serial, radio id, firmware, and family.
func (c *Client) Identify(ctx context.Context) (IdentifyResult, error) {
	data, err := c.request(ctx, opIdentify, nil)
	if err != nil {
		return IdentifyResult{}, err
	}
	if len(data) < 16+16+4+8+16 {
		return IdentifyResult{}, fmt.Errorf("xcmp: identify reply truncated")
	}
	return IdentifyResult{
		Model:    trimNul(data[0:16]),
		Serial:   trimNul(data[16:32]),
		RadioID:  binary.BigEndian.Uint32(data[32:36]),
		Firmware: trimNul(data[36:44]),
		Family:   trimNul(data[44:60]),
	}, nil
}

// QueryPartition resolves the address span of a named partition (e.g. "CP").
func (c *Client) QueryPartition(ctx context.Context, name string) (Partition, error) {
	body := make([]byte, 2+len(name))
	binary.BigEndian.PutUint16(body[0:2], uint16(len(name)))
	copy(body[2:], name)

	data, err := c.request(ctx, opPSDT, body)
	if err != nil {
		return Partition{}, err
	}
	if len(data) < 8 {
		return Partition{}, fmt.Errorf("xcmp: PSDT reply truncated")
	}
	return Partition{
		Start: binary.BigEndian.Uint32(data[0:4]),
		End:   binary.BigEndian.Uint32(data[4:8]),
	}, nil
}

// StartSession begins a read or write session under sessionID.
func (c *Client) StartSession(ctx context.Context, sessionID uint16, mode byte) error {
	body := make([]byte, 3)
	binary.BigEndian.PutUint16(body[0:2], sessionID)
	body[2] = mode
	_, err := c.request(ctx, opSessionStart, body)
	return err
}

// ResetSession ends sessionID.
func (c *Client) ResetSession(ctx context.Context, sessionID uint16) error {
	body := make([]byte, 2)
	binary.BigEndian.PutUint16(body, sessionID)
	_, err := c.request(ctx, opSessionReset, body)
	return err
}

// BlockRead fetches length bytes starting at offset within the active session.
func (c *Client) BlockRead(ctx context.Context, sessionID uint16, offset uint32, length uint16) ([]byte, error) {
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], sessionID)
	binary.BigEndian.PutUint32(body[2:6], offset)
	binary.BigEndian.PutUint16(body[6:8], length)

	data, err := c.request(ctx, opBlockRead, body)
	if err != nil {
		return nil, err
	}
	if len(data) != int(length) {
		return nil, fmt.Errorf("xcmp: block read returned %d bytes, expected %d", len(data), length)
	}
	return data, nil
}

// BlockWrite pushes chunk to offset within the active session.
func (c *Client) BlockWrite(ctx context.Context, sessionID uint16, offset uint32, chunk []byte) error {
	body := make([]byte, 6+len(chunk))
	binary.BigEndian.PutUint16(body[0:2], sessionID)
	binary.BigEndian.PutUint32(body[2:6], offset)
	copy(body[6:], chunk)
	_, err := c.request(ctx, opBlockWrite, body)
	return err
}

// ReadChannelField fetches one live channel attribute without a full clone.
func (c *Client) ReadChannelField(ctx context.Context, zone byte, channel uint16, field byte) ([]byte, error) {
	body := []byte{zone, byte(channel >> 8), byte(channel), field}
	return c.request(ctx, opChannelRead, body)
}

func trimNul(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
