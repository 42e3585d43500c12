// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/plumio/econet/frame"
)

// ErrValidation reports a Set call whose value is outside [min, max] or
// otherwise rejected by the parameter's variant.
var ErrValidation = errors.New("device: parameter value failed validation")

// Kind distinguishes how a parameter's set request is built (spec §4.4.2
// step 5).
type Kind uint8

const (
	KindEcomaxControl Kind = iota
	KindThermostatProfile
	KindEcomax
	KindMixer
	KindThermostat
)

// Description is the static, per-index metadata for one parameter slot
// (spec §4.4.3): name/unit plus the numeric shaping fields a Number
// variant needs.
type Description struct {
	Name       string
	Unit       string
	Step       float64 // default 1.0
	Precision  int
	Offset     float64
	Size       int // wire width in bytes for thermostat numbers; 0 means default
	Optimistic bool
}

// Parameter is a typed, writable cell backed by an owning device's write
// queue (spec §3.3, §4.4.2).
type Parameter interface {
	Description() Description
	Values() (value, min, max uint32)
	Semantic() float64
	Set(ctx context.Context, semantic float64, retries int, timeout time.Duration) (bool, error)
	SetNowait(semantic float64)
	update(values [3]uint32)
}

// writeQueue is the narrow interface a parameter needs from its owning
// device: enqueue an outgoing frame, and the update_pending/update_done
// handshake keyed by parameter name.
type writeQueue interface {
	enqueue(f *frame.Frame)
	beginUpdate(name string) (done <-chan struct{})
}

type baseParameter struct {
	name   string
	desc   Description
	owner  writeQueue
	index  int // local parameter index
	kind   Kind
	mixer  int // mixer/thermostat index, when kind is KindMixer/KindThermostat

	value, min, max uint32
}

// NumberParameter is the Number variant (spec §3.3): semantic value is
// (raw - offset) * step.
type NumberParameter struct {
	baseParameter
}

// NewNumberParameter constructs a Number parameter bound to owner's write
// queue.
func NewNumberParameter(name string, desc Description, owner writeQueue, kind Kind, index, mixerIndex int, value, min, max uint32) *NumberParameter {
	return &NumberParameter{baseParameter{
		name: name, desc: desc, owner: owner, index: index, kind: kind, mixer: mixerIndex,
		value: value, min: min, max: max,
	}}
}

func (p *baseParameter) Description() Description        { return p.desc }
func (p *baseParameter) Values() (uint32, uint32, uint32) { return p.value, p.min, p.max }

func (p *NumberParameter) Semantic() float64 {
	step := p.desc.Step
	if step == 0 {
		step = 1.0
	}
	return (float64(p.value) - p.desc.Offset) * step
}

func (p *NumberParameter) pack(semantic float64) uint32 {
	step := p.desc.Step
	if step == 0 {
		step = 1.0
	}
	return uint32(semantic/step + p.desc.Offset)
}

func (p *NumberParameter) update(values [3]uint32) {
	p.value, p.min, p.max = values[0], values[1], values[2]
}

// Set implements the spec §4.4.2 set algorithm.
func (p *NumberParameter) Set(ctx context.Context, semantic float64, retries int, timeout time.Duration) (bool, error) {
	return doSet(ctx, &p.baseParameter, p.pack(semantic), retries, timeout)
}

// SetNowait is the fire-and-forget variant of Set (spec §4.4.1 set_nowait).
func (p *NumberParameter) SetNowait(semantic float64) {
	go func() { _, _ = p.Set(context.Background(), semantic, 0, 5*time.Second) }()
}

// SwitchParameter is the Switch variant: min/max are fixed 0/1, semantic
// value is true iff raw == 1.
type SwitchParameter struct {
	baseParameter
}

// NewSwitchParameter constructs a Switch parameter bound to owner's write queue.
func NewSwitchParameter(name string, desc Description, owner writeQueue, kind Kind, index, mixerIndex int, on bool) *SwitchParameter {
	v := uint32(0)
	if on {
		v = 1
	}
	return &SwitchParameter{baseParameter{
		name: name, desc: desc, owner: owner, index: index, kind: kind, mixer: mixerIndex,
		value: v, min: 0, max: 1,
	}}
}

func (p *SwitchParameter) Semantic() float64 {
	if p.value == 1 {
		return 1
	}
	return 0
}

func (p *SwitchParameter) update(values [3]uint32) {
	p.value, p.min, p.max = values[0], values[1], values[2]
}

// Set implements the spec §4.4.2 set algorithm for an on/off value
// (semantic != 0 means "on").
func (p *SwitchParameter) Set(ctx context.Context, semantic float64, retries int, timeout time.Duration) (bool, error) {
	v := uint32(0)
	if semantic != 0 {
		v = 1
	}
	return doSet(ctx, &p.baseParameter, v, retries, timeout)
}

// SetNowait is the fire-and-forget variant of Set.
func (p *SwitchParameter) SetNowait(semantic float64) {
	go func() { _, _ = p.Set(context.Background(), semantic, 0, 5*time.Second) }()
}

func doSet(ctx context.Context, p *baseParameter, newValue uint32, retries int, timeout time.Duration) (bool, error) {
	if newValue < p.min || newValue > p.max {
		return false, errors.Wrapf(ErrValidation, "%d not in [%d, %d]", newValue, p.min, p.max)
	}
	if newValue == p.value {
		return true, nil
	}
	p.value = newValue

	req := buildRequest(p, newValue)
	if p.desc.Optimistic {
		p.owner.enqueue(req)
		return true, nil
	}

	attempts := retries + 1
	for i := 0; i < attempts; i++ {
		done := p.owner.beginUpdate(p.name)
		p.owner.enqueue(req)

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		select {
		case <-done:
			cancel()
			return true, nil
		case <-attemptCtx.Done():
			cancel()
		}
	}
	return false, nil
}

// buildRequest implements spec §4.4.2 step 5: which frame type and payload
// shape a parameter's write uses, by Kind.
func buildRequest(p *baseParameter, value uint32) *frame.Frame {
	switch p.kind {
	case KindEcomaxControl:
		return frame.New(frame.RequestEcomaxControl, frame.AddressEcoMAX, frame.EcomaxControl{On: value != 0})
	case KindThermostatProfile:
		return frame.New(frame.RequestSetThermostatParameter, frame.AddressEcoMAX, frame.ThermostatSetParameter{
			ThermostatIndex: 0,
			Index:           uint8(p.index),
			Value:           uint16(value),
		})
	case KindEcomax:
		return frame.New(frame.RequestSetEcomaxParameter, frame.AddressEcoMAX, frame.EcomaxSetParameter{
			Index: uint8(p.index),
			Value: uint8(value),
		})
	case KindMixer:
		return frame.New(frame.RequestSetMixerParameter, frame.AddressEcoMAX, frame.MixerSetParameter{
			MixerIndex: uint8(p.mixer),
			Index:      uint8(p.index),
			Value:      uint8(value),
		})
	case KindThermostat:
		// +1 accounts for the profile slot at local index 0 (spec §4.4.2 step 5).
		return frame.New(frame.RequestSetThermostatParameter, frame.AddressEcoMAX, frame.ThermostatSetParameter{
			ThermostatIndex: uint8(p.mixer),
			Index:           uint8(p.index + 1),
			Value:           uint16(value),
		})
	default:
		return nil
	}
}
