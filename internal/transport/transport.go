// Package transport implements the duplex byte channel a radio session
// rides on: a POSIX serial link or a TCP connection to a network-bridged
// radio, plus an ASCII debug line protocol used only for diagnostics.
// internal/xnl frames its session state machine on top of whichever
// Transport is handed to it.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/opencps/mocodeplug/internal/radioerr"
)

const (
	// DefaultNetworkHost is the factory-default IP of a network-bridged radio.
	DefaultNetworkHost = "192.168.10.1"
	// XNLPort is the TCP port XNL sessions connect to.
	XNLPort = 8002
	// ATDebugPort is the TCP port the ASCII debug protocol listens on.
	ATDebugPort = 8501

	serialBaud        = 115200
	serialReadTimeout = time.Second
	serialBackoff     = 10 * time.Millisecond
)

// Transport is the abstract duplex byte channel a radio session rides on.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context, n int, timeout time.Duration) ([]byte, error)
	// SendCommand writes data then reads exactly responseLen bytes back.
	SendCommand(ctx context.Context, data []byte, responseLen int, timeout time.Duration) ([]byte, error)
}

// Serial is a Transport over a POSIX serial device: 115200 8N1, no flow
// control, raw I/O. Reads loop with a 10 ms back-off until the requested
// byte count arrives or the caller's timeout expires.
type Serial struct {
	PortName string
	Log      logrus.FieldLogger

	port serial.Port
}

func (s *Serial) log() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

func (s *Serial) Connect(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: serialBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(s.PortName, mode)
	if err != nil {
		return &radioerr.TransportError{Op: "connect", Err: err}
	}
	if err := port.SetReadTimeout(serialBackoff); err != nil {
		port.Close()
		return &radioerr.TransportError{Op: "connect", Err: err}
	}
	s.port = port
	s.log().WithField("port", s.PortName).Info("serial transport connected")
	return nil
}

func (s *Serial) Disconnect() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	if err != nil {
		return &radioerr.TransportError{Op: "disconnect", Err: err}
	}
	return nil
}

func (s *Serial) Send(ctx context.Context, data []byte) error {
	return writeFull(ctx, s.port, data)
}

func (s *Serial) Receive(ctx context.Context, n int, timeout time.Duration) ([]byte, error) {
	return readFullBackoff(ctx, s.port.Read, n, timeout)
}

func (s *Serial) SendCommand(ctx context.Context, data []byte, responseLen int, timeout time.Duration) ([]byte, error) {
	if err := s.Send(ctx, data); err != nil {
		return nil, err
	}
	return s.Receive(ctx, responseLen, timeout)
}

// Network is a Transport over a TCP connection to a network-bridged radio.
type Network struct {
	Host string
	Port int
	Log  logrus.FieldLogger

	conn net.Conn
}

func (n *Network) log() logrus.FieldLogger {
	if n.Log != nil {
		return n.Log
	}
	return logrus.StandardLogger()
}

func (n *Network) addr() string {
	host := n.Host
	if host == "" {
		host = DefaultNetworkHost
	}
	return fmt.Sprintf("%s:%d", host, n.Port)
}

func (n *Network) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", n.addr())
	if err != nil {
		return &radioerr.TransportError{Op: "connect", Err: err}
	}
	n.conn = conn
	n.log().WithField("addr", n.addr()).Info("network transport connected")
	return nil
}

func (n *Network) Disconnect() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	if err != nil {
		return &radioerr.TransportError{Op: "disconnect", Err: err}
	}
	return nil
}

func (n *Network) Send(ctx context.Context, data []byte) error {
	return writeFull(ctx, n.conn, data)
}

func (n *Network) Receive(ctx context.Context, count int, timeout time.Duration) ([]byte, error) {
	if err := n.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, &radioerr.TransportError{Op: "receive", Err: err}
	}
	return readFullBackoff(ctx, n.conn.Read, count, timeout)
}

func (n *Network) SendCommand(ctx context.Context, data []byte, responseLen int, timeout time.Duration) ([]byte, error) {
	if err := n.Send(ctx, data); err != nil {
		return nil, err
	}
	return n.Receive(ctx, responseLen, timeout)
}

// writeFull retries partial writes until the whole buffer lands or the
// underlying writer reports a fatal error.
func writeFull(ctx context.Context, w interface{ Write([]byte) (int, error) }, data []byte) error {
	if w == nil {
		return &radioerr.TransportError{Op: "send", Err: fmt.Errorf("transport not connected")}
	}
	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return &radioerr.TransportError{Op: "send", Err: err}
		}
		n, err := w.Write(data)
		if err != nil {
			return &radioerr.TransportError{Op: "send", Err: err}
		}
		data = data[n:]
	}
	return nil
}

// readFullBackoff loops a 10 ms-backoff blocking read until n bytes have
// accumulated or timeout elapses.
func readFullBackoff(ctx context.Context, read func([]byte) (int, error), n int, timeout time.Duration) ([]byte, error) {
	if read == nil {
		return nil, &radioerr.TransportError{Op: "receive", Err: fmt.Errorf("transport not connected")}
	}
	out := make([]byte, 0, n)
	deadline := time.Now().Add(timeout)
	buf := make([]byte, n)
	for len(out) < n {
		if time.Now().After(deadline) {
			return out, &radioerr.Timeout{Op: "receive"}
		}
		if err := ctx.Err(); err != nil {
			return out, &radioerr.TransportError{Op: "receive", Err: err}
		}
		k, err := read(buf[:n-len(out)])
		if k > 0 {
			out = append(out, buf[:k]...)
		}
		if err != nil {
			if isTimeoutErr(err) {
				time.Sleep(serialBackoff)
				continue
			}
			return out, &radioerr.TransportError{Op: "receive", Err: err}
		}
		if k == 0 {
			time.Sleep(serialBackoff)
		}
	}
	return out, nil
}

func isTimeoutErr(err error) bool {
	type timeoutError interface{ Timeout() bool }
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}

// ATDebug is a diagnostic-only ASCII line transport: the radio's AT debug
// console echoes one response line per command, newline-terminated. It
// does not carry XNL/XCMP frames; it exists for `cmd dump --at` style
// inspection separate from programming.
type ATDebug struct {
	Host string
	Log  logrus.FieldLogger

	conn   net.Conn
	reader *bufio.Reader
}

func (a *ATDebug) Connect(ctx context.Context) error {
	host := a.Host
	if host == "" {
		host = DefaultNetworkHost
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, ATDebugPort))
	if err != nil {
		return &radioerr.TransportError{Op: "connect", Err: err}
	}
	a.conn = conn
	a.reader = bufio.NewReader(conn)
	return nil
}

func (a *ATDebug) Disconnect() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	a.reader = nil
	if err != nil {
		return &radioerr.TransportError{Op: "disconnect", Err: err}
	}
	return nil
}

// SendLine writes an AT command line (newline appended) and reads back one
// response line within timeout.
func (a *ATDebug) SendLine(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	if a.conn == nil {
		return "", &radioerr.TransportError{Op: "send_line", Err: fmt.Errorf("transport not connected")}
	}
	if err := writeFull(ctx, a.conn, []byte(cmd+"\r\n")); err != nil {
		return "", err
	}
	if err := a.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", &radioerr.TransportError{Op: "receive", Err: err}
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if isTimeoutErr(err) {
			return "", &radioerr.Timeout{Op: "receive"}
		}
		return "", &radioerr.TransportError{Op: "receive", Err: err}
	}
	return line, nil
}
