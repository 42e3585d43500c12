// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transport opens the byte stream an ecoNET dispatcher reads and
// writes frames over: a serial RS-485 line, or a TCP bridge to one (a
// common deployment for RS-485-over-network adapters).
package transport

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Transport is the byte-stream abstraction frame.Reader/frame.Writer run
// over. Both DialTCP and DialSerial return one.
type Transport interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Options configures a dial. Mirrors the teacher's read/write-timeout
// knobs, generalized from a framing-only concern to a connection-lifecycle
// one (spec §4.3.1 connect/reconnect).
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

var defaultOptions = Options{
	ReadTimeout:  10 * time.Second,
	WriteTimeout: 10 * time.Second,
	DialTimeout:  5 * time.Second,
}

// Option configures a dial call.
type Option func(*Options)

// WithReadTimeout overrides the initial read timeout DialSerial sets on
// the port. DialTCP does not use it.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReadTimeout = d }
}

// WithWriteTimeout overrides Options.WriteTimeout. Neither DialTCP nor
// DialSerial applies it to the connection.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) { o.WriteTimeout = d }
}

// WithDialTimeout overrides the default connection-establishment timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

// tcpTransport adapts *net.TCPConn to Transport; every method forwards to
// the connection unchanged.
type tcpTransport struct {
	conn *net.TCPConn
}

func (t *tcpTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *tcpTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpTransport) Close() error                { return t.conn.Close() }
func (t *tcpTransport) SetReadDeadline(d time.Time) error  { return t.conn.SetReadDeadline(d) }
func (t *tcpTransport) SetWriteDeadline(d time.Time) error { return t.conn.SetWriteDeadline(d) }

// DialTCP opens a TCP bridge to an RS-485-over-network adapter.
func DialTCP(ctx context.Context, addr string, opts ...Option) (Transport, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	dialer := net.Dialer{Timeout: o.DialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, o.DialTimeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dial tcp %s", addr)
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, errors.Errorf("transport: unexpected connection type %T", conn)
	}
	_ = tcpConn.SetKeepAlive(true)
	return &tcpTransport{conn: tcpConn}, nil
}

// serialTransport adapts go.bug.st/serial.Port to Transport. The library
// has no deadline API: SetReadDeadline sets the port's read timeout to the
// time left until the deadline, and SetWriteDeadline is a no-op.
type serialTransport struct {
	port         serial.Port
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (t *serialTransport) Read(p []byte) (int, error)  { return t.port.Read(p) }
func (t *serialTransport) Write(p []byte) (int, error) { return t.port.Write(p) }
func (t *serialTransport) Close() error                { return t.port.Close() }

func (t *serialTransport) SetReadDeadline(d time.Time) error {
	if d.IsZero() {
		return t.port.SetReadTimeout(serial.NoTimeout)
	}
	return t.port.SetReadTimeout(time.Until(d))
}

// SetWriteDeadline is a no-op: go.bug.st/serial has no write-deadline knob,
// and RS-485 writes at the master's configured baud rate don't block the
// way a congested TCP socket can.
func (t *serialTransport) SetWriteDeadline(time.Time) error { return nil }

// SerialConfig describes the RS-485 line parameters (spec §2: "over RS-485
// or RS-485-over-TCP").
type SerialConfig struct {
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits
}

// DefaultSerialConfig matches the ecoNET bus's conventional line settings.
var DefaultSerialConfig = SerialConfig{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// DialSerial opens the named serial device (e.g. "/dev/ttyUSB0", "COM3").
func DialSerial(device string, cfg SerialConfig, opts ...Option) (Transport, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   cfg.Parity,
		StopBits: cfg.StopBits,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: open serial %s", device)
	}
	t := &serialTransport{port: port, readTimeout: o.ReadTimeout, writeTimeout: o.WriteTimeout}
	if err := t.SetReadDeadline(time.Now().Add(o.ReadTimeout)); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "transport: set initial read timeout")
	}
	return t, nil
}
