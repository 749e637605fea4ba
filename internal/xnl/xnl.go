// Package xnl implements the framed, authenticated session layer radios
// speak over a transport: master-key-request/challenge authentication, an
// assigned logical address, and transaction-id-matched request/reply
// frames. internal/xcmp rides its payloads.
package xnl

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/internal/transport"
)

// State is a session's position in the XNL state machine.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateAuthenticating
	StateAddressed
	StateOpen
	StateClosing
	StateAuthFailed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAddressed:
		return "ADDRESSED"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateAuthFailed:
		return "AUTH_FAILED"
	default:
		return "UNKNOWN"
	}
}

const (
	opMasterKeyRequest = 0x02
	opAuthChallenge    = 0x03
	opAuthResponse     = 0x04
	opAuthFailed       = 0x05
	opPing             = 0x00
	opCloseSession     = 0x7f

	keepAliveIdle    = 5 * time.Second
	keepAliveTimeout = 15 * time.Second

	cpsRoleFlag = 0x01
)

// ChallengeFn computes a model-family-specific keyed response from the
// radio's challenge bytes. Families with no known transform must not be
// registered; Session.Open reports UnsupportedAuth for them.
type ChallengeFn func(challenge []byte) []byte

// Frame is one parsed XNL frame.
type Frame struct {
	DestAddr      uint16
	SrcAddr       uint16
	Opcode        uint16
	TransactionID uint16
	Payload       []byte
}

func encodeFrame(f Frame) []byte {
	buf := make([]byte, 2+2+2+2+2+len(f.Payload))
	binary.BigEndian.PutUint16(buf[0:2], f.DestAddr)
	binary.BigEndian.PutUint16(buf[2:4], f.SrcAddr)
	binary.BigEndian.PutUint16(buf[4:6], f.Opcode)
	binary.BigEndian.PutUint16(buf[6:8], f.TransactionID)
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(f.Payload)))
	copy(buf[10:], f.Payload)

	framed := make([]byte, 2+len(buf))
	binary.BigEndian.PutUint16(framed[0:2], uint16(len(buf)))
	copy(framed[2:], buf)
	return framed
}

func decodeFrame(body []byte) (Frame, error) {
	if len(body) < 10 {
		return Frame{}, fmt.Errorf("xnl: frame body too short (%d bytes)", len(body))
	}
	payloadLen := int(binary.BigEndian.Uint16(body[8:10]))
	if 10+payloadLen != len(body) {
		return Frame{}, fmt.Errorf("xnl: frame payload length mismatch")
	}
	return Frame{
		DestAddr:      binary.BigEndian.Uint16(body[0:2]),
		SrcAddr:       binary.BigEndian.Uint16(body[2:4]),
		Opcode:        binary.BigEndian.Uint16(body[4:6]),
		TransactionID: binary.BigEndian.Uint16(body[6:8]),
		Payload:       body[10:],
	}, nil
}

// Registry maps a radio family name to its challenge transform.
type Registry map[string]ChallengeFn

// Session is one XNL connection to a radio.
type Session struct {
	Transport transport.Transport
	Family    string
	Auth      Registry
	Log       logrus.FieldLogger

	mu           sync.Mutex
	state        State
	localAddr    uint16
	remoteAddr   uint16
	nextTxID     uint16
	lastSendTime time.Time
	lastRecvTime time.Time
	sessionUUID  string
}

// log returns a FieldLogger tagged with this session's correlation id, so
// log lines from concurrent sessions against different radios can be told
// apart.
func (s *Session) log() logrus.FieldLogger {
	base := s.Log
	if base == nil {
		base = logrus.StandardLogger()
	}
	if s.sessionUUID == "" {
		return base
	}
	return base.WithField("session_id", s.sessionUUID)
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open drives CLOSED → CONNECTING → AUTHENTICATING → ADDRESSED → OPEN.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	s.sessionUUID = uuid.NewString()
	s.state = StateConnecting
	s.mu.Unlock()

	if err := s.Transport.Connect(ctx); err != nil {
		return err
	}

	reqPayload := []byte{cpsRoleFlag}
	if err := s.sendRaw(ctx, Frame{Opcode: opMasterKeyRequest, Payload: reqPayload}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	reply, err := s.recvRaw(ctx, 5*time.Second)
	if err != nil {
		return err
	}
	if reply.Opcode == opAuthFailed {
		s.mu.Lock()
		s.state = StateAuthFailed
		s.mu.Unlock()
		return &radioerr.AuthFailed{Reason: "radio rejected master key request"}
	}
	if reply.Opcode != opAuthChallenge || len(reply.Payload) < 1 {
		s.mu.Lock()
		s.state = StateAuthFailed
		s.mu.Unlock()
		return &radioerr.AuthFailed{Reason: "unexpected reply to master key request"}
	}
	challenge := reply.Payload[1:]

	transform, ok := s.Auth[s.Family]
	if !ok {
		s.mu.Lock()
		s.state = StateAuthFailed
		s.mu.Unlock()
		return &radioerr.UnsupportedAuth{Family: s.Family}
	}
	response := transform(challenge)

	if err := s.sendRaw(ctx, Frame{Opcode: opAuthResponse, Payload: response}); err != nil {
		return err
	}
	addrReply, err := s.recvRaw(ctx, 5*time.Second)
	if err != nil {
		return err
	}
	if addrReply.Opcode == opAuthFailed || len(addrReply.Payload) < 2 {
		s.mu.Lock()
		s.state = StateAuthFailed
		s.mu.Unlock()
		return &radioerr.AuthFailed{Reason: "radio rejected authentication response"}
	}

	s.mu.Lock()
	s.localAddr = binary.BigEndian.Uint16(addrReply.Payload[0:2])
	s.remoteAddr = addrReply.SrcAddr
	s.state = StateAddressed
	s.mu.Unlock()

	s.mu.Lock()
	s.state = StateOpen
	s.mu.Unlock()
	s.log().WithFields(logrus.Fields{"local_addr": s.localAddr, "remote_addr": s.remoteAddr}).Info("xnl session open")
	return nil
}

// Request sends payload under opcode and waits for the reply carrying the
// same transaction id, honoring a single automatic timeout retry.
func (s *Session) Request(ctx context.Context, opcode uint16, payload []byte, timeout time.Duration) (Frame, error) {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return Frame{}, fmt.Errorf("xnl: request issued while session is %s, not OPEN", s.state)
	}
	txID := s.nextTxID
	s.nextTxID++
	dest := s.remoteAddr
	src := s.localAddr
	s.mu.Unlock()

	frame := Frame{DestAddr: dest, SrcAddr: src, Opcode: opcode, TransactionID: txID, Payload: payload}

	reply, err := s.requestOnce(ctx, frame, timeout)
	if err != nil {
		var timeoutErr *radioerr.Timeout
		if asTimeout(err, &timeoutErr) {
			reply, err = s.requestOnce(ctx, frame, timeout)
		}
	}
	return reply, err
}

func asTimeout(err error, target **radioerr.Timeout) bool {
	te, ok := err.(*radioerr.Timeout)
	if ok {
		*target = te
	}
	return ok
}

func (s *Session) requestOnce(ctx context.Context, frame Frame, timeout time.Duration) (Frame, error) {
	if err := s.sendRaw(ctx, frame); err != nil {
		return Frame{}, err
	}
	for {
		reply, err := s.recvRaw(ctx, timeout)
		if err != nil {
			return Frame{}, err
		}
		if reply.TransactionID == frame.TransactionID {
			return reply, nil
		}
		// stale reply for an earlier, already-abandoned request: discard and keep waiting
	}
}

// MaybeKeepAlive sends a ping if idle ≥5s, and reports an error (closing the
// session) if nothing has been received for ≥15s.
func (s *Session) MaybeKeepAlive(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	idle := time.Since(s.lastSendTime)
	silent := time.Since(s.lastRecvTime)
	s.mu.Unlock()

	if state != StateOpen {
		return nil
	}
	if silent >= keepAliveTimeout {
		_ = s.Close(ctx)
		return &radioerr.Timeout{Op: "keep_alive"}
	}
	if idle >= keepAliveIdle {
		return s.sendRaw(ctx, Frame{Opcode: opPing})
	}
	return nil
}

// Close transitions CLOSING → CLOSED, sending a clean close frame first.
// Already-received replies are not discarded; Close only stops new I/O.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	s.mu.Unlock()

	_ = s.sendRaw(ctx, Frame{Opcode: opCloseSession})
	err := s.Transport.Disconnect()

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	return err
}

func (s *Session) sendRaw(ctx context.Context, f Frame) error {
	if err := s.Transport.Send(ctx, encodeFrame(f)); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastSendTime = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Session) recvRaw(ctx context.Context, timeout time.Duration) (Frame, error) {
	lenBytes, err := s.Transport.Receive(ctx, 2, timeout)
	if err != nil {
		return Frame{}, err
	}
	bodyLen := int(binary.BigEndian.Uint16(lenBytes))
	body, err := s.Transport.Receive(ctx, bodyLen, timeout)
	if err != nil {
		return Frame{}, err
	}
	frame, err := decodeFrame(body)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	s.lastRecvTime = time.Now()
	s.mu.Unlock()
	return frame, nil
}
