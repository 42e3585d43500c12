// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/plumio/econet/frame"
	"github.com/plumio/econet/structures"
)

// Required is the set of requests an Addressable device issues during
// setup (spec §4.3.4), in order.
var Required = []frame.Type{
	frame.RequestUID,
	frame.RequestDataSchema,
	frame.RequestEcomaxParameters,
	frame.RequestMixerParameters,
	frame.RequestThermostatParameters,
	frame.RequestPassword,
	frame.RequestAlerts,
}

const (
	setupRetries     = 3
	setupAttemptWait = 3 * time.Second
	setupWait        = 60 * time.Second
)

// Addressable is a device with its own bus address: ecoMAX or ecoSTER
// (spec §3.2). It owns the event map, the write queue back to the
// dispatcher, the frame-version cache driving re-fetch, and any Mixer/
// Thermostat sub-devices discovered from sensor data.
type Addressable struct {
	Address byte
	Name    string // lowercase registry name, e.g. "ecomax", "ecoster"

	events *EventMap
	out    chan<- *frame.Frame
	log    *zap.Logger

	mu            sync.Mutex
	frameVersions structures.FrameVersions
	pending       map[string]chan struct{} // parameter name -> update_done latch
	frameErrors   []frame.Type

	regulatorSchema []structures.SchemaEntry

	mixers      map[int]*Mixer
	thermostats map[int]*Thermostat
}

// NewAddressable constructs a device bound to out, the dispatcher's shared
// write queue.
func NewAddressable(address byte, name string, out chan<- *frame.Frame, log *zap.Logger) *Addressable {
	d := &Addressable{
		Address: address,
		Name:    name,
		events:  NewEventMap(),
		out:     out,
		log:     log,
		pending: make(map[string]chan struct{}),
		mixers:  make(map[int]*Mixer),
		thermostats: make(map[int]*Thermostat),
	}
	d.events.Subscribe("frame_versions", d.onFrameVersions)
	return d
}

// enqueue implements writeQueue for Parameter/Schedule.
func (d *Addressable) enqueue(f *frame.Frame) {
	if f == nil {
		return
	}
	select {
	case d.out <- f:
	default:
		// write_queue is unbounded in the reference design (spec §4.3.1); a
		// full channel here means the dispatcher itself is gone.
	}
}

// beginUpdate implements writeQueue: returns a channel that closes when
// confirmUpdate is called for name (spec §8 property 8). Only a
// RESPONSE_ECOMAX_PARAMETERS table update carrying name calls it (see
// handleEcomaxParameters); RESPONSE_SET_* echoes confirm nothing.
func (d *Addressable) beginUpdate(name string) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan struct{})
	d.pending[name] = ch
	return ch
}

func (d *Addressable) confirmUpdate(name string) {
	d.mu.Lock()
	ch, ok := d.pending[name]
	if ok {
		delete(d.pending, name)
	}
	d.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Get waits for key's latch and returns its value (spec §4.4.1).
func (d *Addressable) Get(ctx context.Context, key string) (any, error) {
	return d.events.Get(ctx, key)
}

// GetNowait returns key's current value without blocking.
func (d *Addressable) GetNowait(key string, def any) any {
	return d.events.GetNowait(key, def)
}

// Subscribe registers cb for key.
func (d *Addressable) Subscribe(key string, cb Callback) int { return d.events.Subscribe(key, cb) }

// Set looks up name as a Parameter and forwards to its Set (spec §4.4.1
// set(name, value, timeout, retries)).
func (d *Addressable) Set(ctx context.Context, name string, value float64, retries int, timeout time.Duration) (bool, error) {
	v, err := d.events.Get(ctx, name)
	if err != nil {
		return false, err
	}
	p, ok := v.(Parameter)
	if !ok {
		return false, errNotAParameter
	}
	return p.Set(ctx, value, retries, timeout)
}

var errNotAParameter = errDevice("device: key does not hold a Parameter")

type errDevice string

func (e errDevice) Error() string { return string(e) }

// HandleFrame dispatches a frame's decoded payload onto the event map and,
// for keep-alive request types, synthesizes and enqueues the matching
// response (spec §4.3.2 step 3-4, §4.4.1).
func (d *Addressable) HandleFrame(ctx context.Context, f *frame.Frame, info structures.NetworkInfo, version structures.VersionInfo) {
	switch f.Type {
	case frame.RequestCheckDevice:
		resp := frame.New(frame.ResponseDeviceAvailable, f.Sender, info)
		d.enqueue(resp)
		return
	case frame.RequestProgramVersion:
		resp := frame.New(frame.ResponseProgramVersion, f.Sender, version)
		d.enqueue(resp)
		return
	}

	payload, err := f.Decode()
	if err != nil || payload == nil {
		return
	}

	switch p := payload.(type) {
	case *structures.SensorData:
		d.handleSensorData(ctx, p)
	case *structures.EcomaxParametersResponse:
		d.handleEcomaxParameters(ctx, p)
	case *structures.MixerParametersResponse:
		d.handleMixerParameters(ctx, p)
	case []structures.Alert:
		_ = d.events.Dispatch(ctx, "alerts", p)
	case *structures.ProductInfo:
		_ = d.events.Dispatch(ctx, "product", p)
	case []structures.SchemaEntry:
		d.mu.Lock()
		d.regulatorSchema = p
		d.mu.Unlock()
		_ = d.events.Dispatch(ctx, "regulator_data_schema", p)
	}

	// A RESPONSE_SET_* echo carries no parameter name of its own (spec §8
	// property 8) and confirms nothing. doSet's pending update is confirmed
	// only by a subsequent RESPONSE_ECOMAX_PARAMETERS table update above,
	// which calls confirmUpdate by the resolved name;
	// RESPONSE_MIXER_PARAMETERS updates do not confirm pending sets.
}

func (d *Addressable) handleSensorData(ctx context.Context, sd *structures.SensorData) {
	_ = d.events.Dispatch(ctx, "frame_versions", sd.FrameVersions)
	_ = d.events.Dispatch(ctx, "state", sd.State)
	_ = d.events.Dispatch(ctx, "outputs", sd.Outputs)
	_ = d.events.Dispatch(ctx, "temperatures", sd.Temperatures)
	_ = d.events.Dispatch(ctx, "statuses", sd.Statuses)
	_ = d.events.Dispatch(ctx, "pending_alerts", sd.PendingAlerts)
	_ = d.events.Dispatch(ctx, "modules", sd.Modules)
	_ = d.events.Dispatch(ctx, "fuel_level", sd.FuelLevel)
	_ = d.events.Dispatch(ctx, "mixers_connected", sd.MixersConnected)
	_ = d.events.Dispatch(ctx, "thermostats_connected", sd.ThermostatsConnected)

	d.mu.Lock()
	for i, m := range sd.Mixers {
		if _, ok := d.mixers[i]; !ok {
			d.mixers[i] = NewMixer(i, d)
		}
		d.mixers[i].updateSensor(m)
	}
	for i, t := range sd.Thermostats {
		if _, ok := d.thermostats[i]; !ok {
			d.thermostats[i] = NewThermostat(i, d)
		}
		d.thermostats[i].updateSensor(t)
	}
	d.mu.Unlock()

	_ = d.events.Dispatch(ctx, "sensors", sd)
}

func (d *Addressable) handleEcomaxParameters(ctx context.Context, resp *structures.EcomaxParametersResponse) {
	for i, rec := range resp.Parameters {
		if rec.Absent {
			continue
		}
		index := resp.FirstIndex + i
		name, kind := NameFor(EcomaxCatalog, index)

		existing := d.events.GetNowait(name, nil)
		if p, ok := existing.(Parameter); ok {
			p.update([3]uint32{rec.Value, rec.Min, rec.Max})
			_ = d.events.Dispatch(ctx, name, p)
		} else {
			var p Parameter
			if kind == EntrySwitch {
				p = NewSwitchParameter(name, Description{Name: name}, d, KindEcomax, index, 0, rec.Value == 1)
			} else {
				p = NewNumberParameter(name, Description{Name: name}, d, KindEcomax, index, 0, rec.Value, rec.Min, rec.Max)
			}
			_ = d.events.Dispatch(ctx, name, p)
		}
		d.confirmUpdate(name)
	}
	_ = d.events.Dispatch(ctx, "ecomax_parameters", resp)
}

// RegulatorSchema returns the most recently cached regulator-data schema,
// or nil if none has been received yet (spec §4.2.4: MESSAGE_REGULATOR_DATA
// cannot be decoded before its RESPONSE_REGULATOR_DATA_SCHEMA has arrived).
func (d *Addressable) RegulatorSchema() []structures.SchemaEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regulatorSchema
}

// ThermostatCount returns the number of thermostat sub-devices discovered
// so far from sensor data (spec §9 open question 3).
func (d *Addressable) ThermostatCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.thermostats)
}

// ThermostatParameterWidth returns the wire width, in bytes, of thermostat
// parameter slot localIndex. It returns 1 for every slot: neither the
// default catalog nor config.ProductOverrides carries a per-index width,
// so no slot is decoded at a 2-byte width.
func (d *Addressable) ThermostatParameterWidth(localIndex int) int {
	return 1
}

// HandleRegulatorData dispatches an out-of-band-decoded MESSAGE_REGULATOR_DATA
// payload onto the event map (spec §4.2.4). The caller -- the protocol
// package's dispatcher -- decodes it against RegulatorSchema itself, since
// the frame registry has no way to carry that external state (spec §9).
func (d *Addressable) HandleRegulatorData(ctx context.Context, rd *structures.RegulatorData) {
	_ = d.events.Dispatch(ctx, "frame_versions", rd.FrameVersions)
	_ = d.events.Dispatch(ctx, "regulator_data", rd)
}

// HandleThermostatParameters dispatches an out-of-band-decoded
// RESPONSE_THERMOSTAT_PARAMETERS payload, mirroring handleEcomaxParameters
// for the thermostat profile and per-thermostat parameter tables.
func (d *Addressable) HandleThermostatParameters(ctx context.Context, resp *structures.ThermostatParametersResponse) {
	d.mu.Lock()
	for i := range resp.Thermostats {
		if _, ok := d.thermostats[i]; !ok {
			d.thermostats[i] = NewThermostat(i, d)
		}
	}
	d.mu.Unlock()
	_ = d.events.Dispatch(ctx, "thermostat_parameters", resp)
	d.confirmUpdate("thermostat_parameters")
}

func (d *Addressable) handleMixerParameters(ctx context.Context, resp *structures.MixerParametersResponse) {
	d.mu.Lock()
	for _, set := range resp.Mixers {
		if _, ok := d.mixers[set.MixerIndex]; !ok {
			d.mixers[set.MixerIndex] = NewMixer(set.MixerIndex, d)
		}
	}
	d.mu.Unlock()
	_ = d.events.Dispatch(ctx, "mixer_parameters", resp)
}

// onFrameVersions implements the frame-version-driven re-fetch (spec
// §4.3.3): for every (frame_type, version) pair whose cached version
// differs, enqueue the corresponding request exactly once.
func (d *Addressable) onFrameVersions(ctx context.Context, value any) (any, error) {
	fv, ok := value.(structures.FrameVersions)
	if !ok {
		return value, nil
	}

	d.mu.Lock()
	if d.frameVersions == nil {
		d.frameVersions = make(structures.FrameVersions)
	}
	var toFetch []frame.Type
	for typ, ver := range fv {
		if cached, ok := d.frameVersions[typ]; ok && cached == ver {
			continue
		}
		d.frameVersions[typ] = ver
		if req, ok := frame.RequestFor(frame.Type(typ)); ok {
			toFetch = append(toFetch, req)
		}
	}
	d.mu.Unlock()

	for _, req := range toFetch {
		d.enqueue(frame.New(req, d.Address, nil))
	}
	return value, nil
}

// setupConfirmKey names the event-map key that a Required request's
// response lands under. RESPONSE_THERMOSTAT_PARAMETERS reaches the event
// map via HandleThermostatParameters, called by the protocol dispatcher
// rather than HandleFrame's generic decode (spec §9: its decode needs the
// live thermostat count). A request with no entry here (RESPONSE_PASSWORD
// has no decoded payload to dispatch) is satisfied by issuing it once and
// moving on.
var setupConfirmKey = map[frame.Type]string{
	frame.RequestUID:                   "product",
	frame.RequestEcomaxParameters:      "ecomax_parameters",
	frame.RequestMixerParameters:       "mixer_parameters",
	frame.RequestThermostatParameters:  "thermostat_parameters",
	frame.RequestAlerts:                "alerts",
	frame.RequestDataSchema:            "regulator_data_schema",
}

// Setup issues every Required request with retries, then waits for the
// first "sensors" event (spec §4.3.4). Timed-out requests are recorded in
// frame_errors; setup always completes.
func (d *Addressable) Setup(ctx context.Context) {
	for _, typ := range Required {
		key, tracked := setupConfirmKey[typ]
		ok := false
		for attempt := 0; attempt <= setupRetries && !ok; attempt++ {
			d.enqueue(frame.New(typ, d.Address, nil))
			attemptCtx, cancel := context.WithTimeout(ctx, setupAttemptWait)
			if tracked {
				ok = d.events.WaitFor(attemptCtx, key) == nil
			} else {
				<-attemptCtx.Done()
				ok = true
			}
			cancel()
		}
		if !ok {
			d.mu.Lock()
			d.frameErrors = append(d.frameErrors, typ)
			d.mu.Unlock()
		}
	}

	setupCtx, cancel := context.WithTimeout(ctx, setupWait)
	defer cancel()
	if err := d.events.WaitFor(setupCtx, "sensors"); err != nil {
		d.log.Warn("setup: timed out waiting for first sensors event", zap.String("device", d.Name))
	}
}

// FrameErrors returns the Required requests that never completed during
// setup (spec §4.3.4).
func (d *Addressable) FrameErrors() []frame.Type {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]frame.Type(nil), d.frameErrors...)
}

// Shutdown closes this device's event map and waits for its DispatchAsync
// tasks to finish; it does not cancel them.
func (d *Addressable) Shutdown() {
	d.events.Shutdown()
}

// Mixer is a sub-device keyed by index within its parent ecoMAX
// (spec §3.2). Writes are forwarded to the parent's write queue.
type Mixer struct {
	Index  int
	parent *Addressable
	events *EventMap
}

// NewMixer constructs a mixer sub-device owned by parent.
func NewMixer(index int, parent *Addressable) *Mixer {
	return &Mixer{Index: index, parent: parent, events: NewEventMap()}
}

func (m *Mixer) enqueue(f *frame.Frame)                    { m.parent.enqueue(f) }
func (m *Mixer) beginUpdate(name string) <-chan struct{}   { return m.parent.beginUpdate(name) }
func (m *Mixer) updateSensor(s structures.MixerSensor) {
	ctx := context.Background()
	_ = m.events.Dispatch(ctx, "current_temp", s.CurrentTemp)
	_ = m.events.Dispatch(ctx, "target_temp", s.TargetTemp)
	_ = m.events.Dispatch(ctx, "pump", s.PumpWorks)
}

// Get waits for key's latch on this mixer's own event map.
func (m *Mixer) Get(ctx context.Context, key string) (any, error) { return m.events.Get(ctx, key) }

// Thermostat is a sub-device keyed by index within its parent ecoMAX.
type Thermostat struct {
	Index  int
	parent *Addressable
	events *EventMap
}

// NewThermostat constructs a thermostat sub-device owned by parent.
func NewThermostat(index int, parent *Addressable) *Thermostat {
	return &Thermostat{Index: index, parent: parent, events: NewEventMap()}
}

func (t *Thermostat) enqueue(f *frame.Frame)                  { t.parent.enqueue(f) }
func (t *Thermostat) beginUpdate(name string) <-chan struct{} { return t.parent.beginUpdate(name) }
func (t *Thermostat) updateSensor(s structures.ThermostatSensor) {
	ctx := context.Background()
	_ = t.events.Dispatch(ctx, "contacts", s.Contacts)
	_ = t.events.Dispatch(ctx, "schedule", s.Schedule)
	_ = t.events.Dispatch(ctx, "state", s.State)
	_ = t.events.Dispatch(ctx, "current_temp", s.CurrentTemp)
	_ = t.events.Dispatch(ctx, "target_temp", s.TargetTemp)
}

// Get waits for key's latch on this thermostat's own event map.
func (t *Thermostat) Get(ctx context.Context, key string) (any, error) { return t.events.Get(ctx, key) }
