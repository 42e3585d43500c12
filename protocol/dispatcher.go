// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package protocol owns the ecoNET master's connection lifecycle: dialing
// (and redialing) a transport, the producer/consumer goroutines that drive
// frame.Reader/frame.Writer over it, routing decoded frames to per-sender
// device.Addressable instances, and the handful of frame types whose
// decode needs state the frame package's registry can't carry on its own
// (MESSAGE_REGULATOR_DATA, RESPONSE_THERMOSTAT_PARAMETERS) (spec §4.3, §9).
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plumio/econet/device"
	"github.com/plumio/econet/frame"
	"github.com/plumio/econet/structures"
	"github.com/plumio/econet/transport"
)

// ErrShutdown is returned by GetDevice once the dispatcher has been shut down.
var ErrShutdown = errors.New("protocol: dispatcher is shut down")

// Dial opens the transport a Dispatcher reads and writes frames over. It is
// called once per connection attempt, and should apply its own dial timeout
// (transport.WithDialTimeout) -- Run additionally bounds the call with
// Options' connect timeout.
type Dial func(ctx context.Context) (transport.Transport, error)

// Dispatcher is the master side of the ecoNET bus: one transport connection
// at a time, one outgoing write queue shared by every device on the bus,
// and a lazily-populated registry of devices keyed by sender address
// (spec §4.3.1, §4.3.2).
type Dispatcher struct {
	dial Dial
	opts options

	mu      sync.Mutex
	devices map[string]*device.Addressable
	waiters map[string][]chan *device.Addressable

	writeQueue chan *frame.Frame
	cancel     context.CancelFunc
	shutCh     chan struct{}
	shutOnce   sync.Once
}

// NewDispatcher constructs a Dispatcher that dials connections via dial.
func NewDispatcher(dial Dial, opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Dispatcher{
		dial:       dial,
		opts:       o,
		devices:    make(map[string]*device.Addressable),
		waiters:    make(map[string][]chan *device.Addressable),
		writeQueue: make(chan *frame.Frame, o.writeQueueSize),
		shutCh:     make(chan struct{}),
	}
}

// Run drives the connect/read/write/reconnect loop until ctx is cancelled
// or Shutdown is called (spec §4.3.5). It blocks; callers typically run it
// in its own goroutine.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, err := d.connect(ctx)
		if err != nil {
			d.opts.logger.Warn("connect failed", zap.Error(err), zap.Duration("retry_in", d.opts.reconnectDelay))
			if !d.wait(ctx, d.opts.reconnectDelay) {
				return ctx.Err()
			}
			continue
		}

		sessionID := uuid.NewString()
		d.opts.logger.Info("connected", zap.String("session", sessionID))
		d.runSession(ctx, conn, sessionID)

		select {
		case <-d.shutCh:
			return nil
		default:
		}
		if !d.wait(ctx, d.opts.reconnectDelay) {
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) connect(ctx context.Context) (transport.Transport, error) {
	cctx, cancel := context.WithTimeout(ctx, d.opts.connectTimeout)
	defer cancel()
	return d.dial(cctx)
}

func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) bool {
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	case <-d.shutCh:
		return false
	}
}

// runSession drives one connection's reader and writer loops until either
// fails, ctx is cancelled, or Shutdown fires. sessionID tags this
// connection's log lines so a reconnect doesn't read as a continuation of
// the prior one.
func (d *Dispatcher) runSession(ctx context.Context, conn transport.Transport, sessionID string) {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	r := frame.NewReader(conn)
	w := frame.NewWriter(conn)
	log := d.opts.logger.With(zap.String("session", sessionID))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := d.readLoop(sessionCtx, r); err != nil {
			log.Warn("read loop ended", zap.Error(err))
		}
		cancel()
	}()
	go func() {
		defer wg.Done()
		if err := d.writeLoop(sessionCtx, w); err != nil {
			log.Warn("write loop ended", zap.Error(err))
		}
		cancel()
	}()

	select {
	case <-sessionCtx.Done():
	case <-d.shutCh:
		cancel()
	}
	// Closing the transport unblocks a Read still parked in readLoop, which
	// cancelling sessionCtx alone cannot interrupt.
	conn.Close()
	wg.Wait()
}

func (d *Dispatcher) readLoop(ctx context.Context, r *frame.Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rctx, cancel := context.WithTimeout(ctx, frame.ReadTimeout)
		f, err := r.Read(rctx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return err
		}
		if f == nil {
			continue // well-formed frame addressed to neither us nor broadcast
		}
		d.handle(ctx, f)
	}
}

func (d *Dispatcher) writeLoop(ctx context.Context, w *frame.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-d.writeQueue:
			wctx, cancel := context.WithTimeout(ctx, frame.WriteTimeout)
			err := w.Write(wctx, f)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// handle routes one inbound frame to its sender's device, special-casing
// the frame types whose decode needs state HandleFrame's generic registry
// lookup can't carry (spec §9).
func (d *Dispatcher) handle(ctx context.Context, f *frame.Frame) {
	dev := d.deviceFor(f.Sender)

	switch f.Type {
	case frame.MessageRegulatorData:
		schema := dev.RegulatorSchema()
		if len(schema) == 0 {
			return // no schema received yet; nothing to decode against
		}
		rd, err := structures.DecodeRegulatorData(f.Message, schema)
		if err != nil {
			d.opts.logger.Warn("decode regulator data", zap.Error(err))
			return
		}
		dev.HandleRegulatorData(ctx, rd)
		return
	case frame.ResponseThermostatParameters:
		resp, err := structures.DecodeThermostatParameters(f.Message, dev.ThermostatCount(), dev.ThermostatParameterWidth)
		if err != nil {
			d.opts.logger.Warn("decode thermostat parameters", zap.Error(err))
			return
		}
		dev.HandleThermostatParameters(ctx, resp)
		return
	}

	dev.HandleFrame(ctx, f, d.opts.network, d.opts.version)
}

// deviceFor returns the device.Addressable registered for address,
// lazily creating and registering one on first sight and waking any
// GetDevice caller blocked on its name (spec §4.3.2).
func (d *Dispatcher) deviceFor(address byte) *device.Addressable {
	name := nameForAddress(address)

	d.mu.Lock()
	dev, ok := d.devices[name]
	if ok {
		d.mu.Unlock()
		return dev
	}
	dev = device.NewAddressable(address, name, d.writeQueue, d.opts.logger)
	d.devices[name] = dev
	waiters := d.waiters[name]
	delete(d.waiters, name)
	d.mu.Unlock()

	go dev.Setup(context.Background())

	for _, ch := range waiters {
		ch <- dev
	}
	return dev
}

func nameForAddress(address byte) string {
	switch address {
	case frame.AddressEcoMAX:
		return "ecomax"
	case frame.AddressEcoSTER:
		return "ecoster"
	default:
		return fmt.Sprintf("device_%02x", address)
	}
}

// GetDevice waits for a device named name (case-insensitive) to appear on
// the bus, or returns the one already registered.
func (d *Dispatcher) GetDevice(ctx context.Context, name string) (*device.Addressable, error) {
	name = strings.ToLower(name)

	d.mu.Lock()
	if dev, ok := d.devices[name]; ok {
		d.mu.Unlock()
		return dev, nil
	}
	select {
	case <-d.shutCh:
		d.mu.Unlock()
		return nil, ErrShutdown
	default:
	}
	ch := make(chan *device.Addressable, 1)
	d.waiters[name] = append(d.waiters[name], ch)
	d.mu.Unlock()

	select {
	case dev := <-ch:
		return dev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.shutCh:
		return nil, ErrShutdown
	}
}

// Enqueue places a frame on the shared outgoing write queue, for callers
// building requests that aren't tied to a particular Parameter/Schedule.
func (d *Dispatcher) Enqueue(f *frame.Frame) {
	select {
	case d.writeQueue <- f:
	default:
	}
}

// Shutdown stops Run, closes every registered device's event map, and
// wakes any GetDevice callers still waiting with ErrShutdown
// (spec §4.3.5, §5 cancellation).
func (d *Dispatcher) Shutdown() {
	d.shutOnce.Do(func() {
		close(d.shutCh)

		d.mu.Lock()
		cancel := d.cancel
		devices := make([]*device.Addressable, 0, len(d.devices))
		for _, dev := range d.devices {
			devices = append(devices, dev)
		}
		d.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		for _, dev := range devices {
			dev.Shutdown()
		}
	})
}
