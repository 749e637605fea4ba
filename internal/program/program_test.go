package program_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencps/mocodeplug/internal/program"
	"github.com/opencps/mocodeplug/internal/radio"
	_ "github.com/opencps/mocodeplug/internal/radio/models"
	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/internal/xcmp"
	"github.com/opencps/mocodeplug/internal/xnl"
)

// pipeTransport adapts a net.Conn (one end of a net.Pipe) to transport.Transport.
type pipeTransport struct {
	conn net.Conn
}

func (p *pipeTransport) Connect(ctx context.Context) error { return nil }
func (p *pipeTransport) Disconnect() error                 { return p.conn.Close() }

func (p *pipeTransport) Send(ctx context.Context, data []byte) error {
	_, err := p.conn.Write(data)
	return err
}

func (p *pipeTransport) Receive(ctx context.Context, n int, timeout time.Duration) ([]byte, error) {
	_ = p.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, n)
	_, err := io.ReadFull(p.conn, buf)
	return buf, err
}

func (p *pipeTransport) SendCommand(ctx context.Context, data []byte, responseLen int, timeout time.Duration) ([]byte, error) {
	if err := p.Send(ctx, data); err != nil {
		return nil, err
	}
	return p.Receive(ctx, responseLen, timeout)
}

// mockFrame mirrors the xnl wire format: u16 BE length prefix, then
// dest/src/opcode/txid/payload_len/payload, all big-endian.
type mockFrame struct {
	dest, src, opcode, txid uint16
	payload                 []byte
}

func writeMockFrame(conn net.Conn, f mockFrame) error {
	body := make([]byte, 10+len(f.payload))
	binary.BigEndian.PutUint16(body[0:2], f.dest)
	binary.BigEndian.PutUint16(body[2:4], f.src)
	binary.BigEndian.PutUint16(body[4:6], f.opcode)
	binary.BigEndian.PutUint16(body[6:8], f.txid)
	binary.BigEndian.PutUint16(body[8:10], uint16(len(f.payload)))
	copy(body[10:], f.payload)

	framed := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(framed[0:2], uint16(len(body)))
	copy(framed[2:], body)
	_, err := conn.Write(framed)
	return err
}

func readMockFrame(conn net.Conn) (mockFrame, error) {
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return mockFrame{}, err
	}
	body := make([]byte, binary.BigEndian.Uint16(lenBuf))
	if _, err := io.ReadFull(conn, body); err != nil {
		return mockFrame{}, err
	}
	payloadLen := binary.BigEndian.Uint16(body[8:10])
	return mockFrame{
		dest:    binary.BigEndian.Uint16(body[0:2]),
		src:     binary.BigEndian.Uint16(body[2:4]),
		opcode:  binary.BigEndian.Uint16(body[4:6]),
		txid:    binary.BigEndian.Uint16(body[6:8]),
		payload: body[10 : 10+int(payloadLen)],
	}, nil
}

func mockChallengeTransform(challenge []byte) []byte {
	out := make([]byte, len(challenge))
	for i, b := range challenge {
		out[i] = b ^ 0xFF
	}
	return out
}

func packFixed(s string, n int) []byte {
	out := make([]byte, n)
	copy(out, s)
	return out
}

// mockRadio runs the XNL handshake and XCMP command set against a codeplug
// buffer it owns. corruptOffset, if >= 0, inverts every bit of the byte at
// that offset whenever it is served by a block-read reply (exercising S6).
type mockRadio struct {
	conn          net.Conn
	modelID       string
	buf           []byte
	corruptOffset int
}

func (r *mockRadio) serve(t *testing.T) {
	for {
		f, err := readMockFrame(r.conn)
		if err != nil {
			return
		}
		switch f.opcode {
		case 0x02: // master key request
			challenge := []byte{0xAA, 0xBB, 0xCC, 0xDD}
			payload := append([]byte{0x01}, challenge...)
			_ = writeMockFrame(r.conn, mockFrame{opcode: 0x03, src: 1, payload: payload})
		case 0x04: // auth response
			want := mockChallengeTransform([]byte{0xAA, 0xBB, 0xCC, 0xDD})
			if !bytes.Equal(f.payload, want) {
				_ = writeMockFrame(r.conn, mockFrame{opcode: 0x05, src: 1})
				continue
			}
			_ = writeMockFrame(r.conn, mockFrame{opcode: 0x04, src: 1, payload: []byte{0x00, 0x01}})
		case 0x10: // xcmp carrier
			r.handleXcmp(t, f)
		default:
			t.Fatalf("mock radio: unexpected opcode 0x%02x", f.opcode)
		}
	}
}

func (r *mockRadio) reply(f mockFrame, xcmpOpcode uint16, status byte, data []byte) {
	payload := make([]byte, 3+len(data))
	binary.BigEndian.PutUint16(payload[0:2], xcmpOpcode)
	payload[2] = status
	copy(payload[3:], data)
	_ = writeMockFrame(r.conn, mockFrame{opcode: 0x10, src: 1, txid: f.txid, payload: payload})
}

func (r *mockRadio) handleXcmp(t *testing.T, f mockFrame) {
	xcmpOpcode := binary.BigEndian.Uint16(f.payload[0:2])
	body := f.payload[2:]
	switch xcmpOpcode {
	case 0x01: // identify
		data := append([]byte{}, packFixed(r.modelID, 16)...)
		data = append(data, packFixed("SN12345", 16)...)
		radioID := make([]byte, 4)
		binary.BigEndian.PutUint32(radioID, 0x1234)
		data = append(data, radioID...)
		data = append(data, packFixed("1.0.0", 8)...)
		data = append(data, packFixed("mock-radio", 16)...)
		r.reply(f, xcmpOpcode, 0, data)
	case 0x02: // PSDT
		data := make([]byte, 8)
		binary.BigEndian.PutUint32(data[0:4], 0)
		binary.BigEndian.PutUint32(data[4:8], uint32(len(r.buf)))
		r.reply(f, xcmpOpcode, 0, data)
	case 0x03, 0x04: // session start/reset
		r.reply(f, xcmpOpcode, 0, nil)
	case 0x05: // block read
		offset := binary.BigEndian.Uint32(body[2:6])
		length := binary.BigEndian.Uint16(body[6:8])
		chunk := make([]byte, length)
		copy(chunk, r.buf[offset:int(offset)+int(length)])
		if r.corruptOffset >= int(offset) && r.corruptOffset < int(offset)+int(length) {
			chunk[r.corruptOffset-int(offset)] ^= 0xFF
		}
		r.reply(f, xcmpOpcode, 0, chunk)
	case 0x06: // block write
		offset := binary.BigEndian.Uint32(body[2:6])
		chunk := body[6:]
		copy(r.buf[offset:], chunk)
		r.reply(f, xcmpOpcode, 0, nil)
	default:
		t.Fatalf("mock radio: unexpected xcmp opcode 0x%02x", xcmpOpcode)
	}
}

func newSession(t *testing.T, radioConn net.Conn) *program.Session {
	t.Helper()
	sess := &xnl.Session{
		Transport: &pipeTransport{conn: radioConn},
		Family:    "mock-radio",
		Auth:      xnl.Registry{"mock-radio": mockChallengeTransform},
	}
	require.NoError(t, sess.Open(context.Background()))
	return &program.Session{XNL: sess, XCMP: &xcmp.Client{Session: sess}}
}

func TestProgramWriteThenReadRoundTrip(t *testing.T) {
	model, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := model.CreateDefault()
	require.NoError(t, err)

	clientConn, radioConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); radioConn.Close() })

	mock := &mockRadio{conn: radioConn, modelID: "RDU2020", buf: make([]byte, model.CodeplugSize()), corruptOffset: -1}
	go mock.serve(t)

	s := newSession(t, clientConn)
	ctx := context.Background()

	var progressed []int
	err = program.Write(ctx, s, model, cp, func(done, size int) { progressed = append(progressed, done) })
	require.NoError(t, err)
	require.NotEmpty(t, progressed)
	assert.Equal(t, model.CodeplugSize(), progressed[len(progressed)-1])

	got, err := program.Read(ctx, s, model, nil)
	require.NoError(t, err)
	assert.Equal(t, cp.Raw(), got.Raw())
}

func TestProgramWriteVerifyMismatch(t *testing.T) {
	model, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := model.CreateDefault()
	require.NoError(t, err)

	clientConn, radioConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); radioConn.Close() })

	mock := &mockRadio{conn: radioConn, modelID: "RDU2020", buf: make([]byte, model.CodeplugSize()), corruptOffset: 42}
	go mock.serve(t)

	s := newSession(t, clientConn)
	err = program.Write(context.Background(), s, model, cp, nil)

	var verifyErr *radioerr.VerifyFailed
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, 42, verifyErr.Offset)
}

func TestProgramWriteValidationFailed(t *testing.T) {
	model, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := model.CreateDefault()
	require.NoError(t, err)

	f, ok := model.FieldByID("channel.rxFreq#0")
	require.True(t, ok)
	byteOff := f.BitOffset / 8
	binary.LittleEndian.PutUint32(cp.Raw()[byteOff:byteOff+4], 9_000_000) // bypasses Set's constraint check

	err = program.Write(context.Background(), &program.Session{}, model, cp, nil)

	var validationErr *radioerr.ValidationFailed
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Issues, 1)
}

func TestProgramWriteModelMismatch(t *testing.T) {
	model, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := model.CreateDefault()
	require.NoError(t, err)

	clientConn, radioConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); radioConn.Close() })

	mock := &mockRadio{conn: radioConn, modelID: "OTHERMODEL", buf: make([]byte, model.CodeplugSize()), corruptOffset: -1}
	go mock.serve(t)

	s := newSession(t, clientConn)
	err = program.Write(context.Background(), s, model, cp, nil)

	var mismatch *radioerr.ModelMismatch
	require.ErrorAs(t, err, &mismatch)
}
