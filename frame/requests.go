package frame

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/plumio/econet/structures"
)

// ErrPayloadType reports an Encode/Decode call whose Payload is not the
// type a registered codec expects.
var ErrPayloadType = errors.New("frame: unexpected payload type")

// EcomaxSetParameter is the REQUEST_SET_ECOMAX_PARAMETER body: a parameter
// index and its new 1-byte value.
type EcomaxSetParameter struct {
	Index uint8
	Value uint8
}

// MixerSetParameter is the REQUEST_SET_MIXER_PARAMETER body.
type MixerSetParameter struct {
	MixerIndex uint8
	Index      uint8
	Value      uint8
}

// ThermostatSetParameter is the REQUEST_SET_THERMOSTAT_PARAMETER body. The
// value is 2 bytes wide, matching the thermostat parameter catalog's
// wider records (spec §4.2.5).
type ThermostatSetParameter struct {
	ThermostatIndex uint8
	Index           uint8
	Value           uint16
}

// EcomaxControl is the REQUEST_ECOMAX_CONTROL body: a single on/off byte.
type EcomaxControl struct {
	On bool
}

// ScheduleSetRequest is the REQUEST_SET_SCHEDULE body: one schedule record
// plus the per-record parameter width needed to (re)encode it.
type ScheduleSetRequest struct {
	ScheduleType    uint8
	Switch          bool
	Parameter       structures.ParameterRecord
	Week            structures.ScheduleWeek
	ParameterWidth  int
}

func init() {
	RegisterEncoder(RequestSetEcomaxParameter, func(payload any) ([]byte, error) {
		p, ok := payload.(EcomaxSetParameter)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want EcomaxSetParameter, got %T", payload)
		}
		return []byte{p.Index, p.Value}, nil
	})
	RegisterDecoder(RequestSetEcomaxParameter, func(message []byte) (any, error) {
		if len(message) < 2 {
			return nil, errors.New("frame: short REQUEST_SET_ECOMAX_PARAMETER body")
		}
		return EcomaxSetParameter{Index: message[0], Value: message[1]}, nil
	})

	RegisterEncoder(RequestSetMixerParameter, func(payload any) ([]byte, error) {
		p, ok := payload.(MixerSetParameter)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want MixerSetParameter, got %T", payload)
		}
		return []byte{p.MixerIndex, p.Index, p.Value}, nil
	})
	RegisterDecoder(RequestSetMixerParameter, func(message []byte) (any, error) {
		if len(message) < 3 {
			return nil, errors.New("frame: short REQUEST_SET_MIXER_PARAMETER body")
		}
		return MixerSetParameter{MixerIndex: message[0], Index: message[1], Value: message[2]}, nil
	})

	RegisterEncoder(RequestSetThermostatParameter, func(payload any) ([]byte, error) {
		p, ok := payload.(ThermostatSetParameter)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want ThermostatSetParameter, got %T", payload)
		}
		buf := make([]byte, 4)
		buf[0] = p.ThermostatIndex
		buf[1] = p.Index
		binary.LittleEndian.PutUint16(buf[2:], p.Value)
		return buf, nil
	})
	RegisterDecoder(RequestSetThermostatParameter, func(message []byte) (any, error) {
		if len(message) < 4 {
			return nil, errors.New("frame: short REQUEST_SET_THERMOSTAT_PARAMETER body")
		}
		return ThermostatSetParameter{
			ThermostatIndex: message[0],
			Index:           message[1],
			Value:           binary.LittleEndian.Uint16(message[2:4]),
		}, nil
	})

	RegisterEncoder(RequestEcomaxControl, func(payload any) ([]byte, error) {
		p, ok := payload.(EcomaxControl)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want EcomaxControl, got %T", payload)
		}
		if p.On {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	})
	RegisterDecoder(RequestEcomaxControl, func(message []byte) (any, error) {
		if len(message) < 1 {
			return nil, errors.New("frame: short REQUEST_ECOMAX_CONTROL body")
		}
		return EcomaxControl{On: message[0] != 0}, nil
	})

	RegisterEncoder(RequestSetSchedule, func(payload any) ([]byte, error) {
		p, ok := payload.(ScheduleSetRequest)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want ScheduleSetRequest, got %T", payload)
		}
		return structures.EncodeScheduleRequest(p.ScheduleType, p.Switch, p.Parameter, p.Week, p.ParameterWidth), nil
	})
}
