package structures

import (
	"fmt"
	"math"
)

// DeviceState is the boiler's operating state (spec §4.2.3 item 1). The
// numeric values follow the device's own enumeration; values outside the
// named set are preserved as device-specific extensions and still render
// via String().
type DeviceState uint8

const (
	StateOff         DeviceState = 0
	StateStarting    DeviceState = 1
	StateKindling    DeviceState = 2
	StateHeating     DeviceState = 3
	StateSupervision DeviceState = 4
	StateCooling     DeviceState = 5
	StateStandby     DeviceState = 6
)

var deviceStateNames = map[DeviceState]string{
	StateOff:         "Off",
	StateStarting:    "Starting",
	StateKindling:    "Kindling",
	StateHeating:     "Heating",
	StateSupervision: "Supervision",
	StateCooling:     "Cooling",
	StateStandby:     "Standby",
}

func (s DeviceState) String() string {
	if name, ok := deviceStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Extension(%d)", uint8(s))
}

// Outputs is the 16 named output bits decoded from the u32 outputs bitfield
// (spec §4.2.3 item 2).
type Outputs struct {
	Fan               bool
	Feeder            bool
	HeatingPump       bool
	WaterHeaterPump   bool
	CirculationPump   bool
	Lighter           bool
	Alarm             bool
	OuterBoiler       bool
	Fan2Exhaust       bool
	Feeder2           bool
	OuterFeeder       bool
	SolarPump         bool
	FireplacePump     bool
	GCZContact        bool
	BlowFan1          bool
	BlowFan2          bool
}

func (c *Cursor) decodeOutputs() (Outputs, error) {
	v, err := c.U32()
	if err != nil {
		return Outputs{}, err
	}
	return Outputs{
		Fan:             v&(1<<0) != 0,
		Feeder:          v&(1<<1) != 0,
		HeatingPump:     v&(1<<2) != 0,
		WaterHeaterPump: v&(1<<3) != 0,
		CirculationPump: v&(1<<4) != 0,
		Lighter:         v&(1<<5) != 0,
		Alarm:           v&(1<<6) != 0,
		OuterBoiler:     v&(1<<7) != 0,
		Fan2Exhaust:     v&(1<<8) != 0,
		Feeder2:         v&(1<<9) != 0,
		OuterFeeder:     v&(1<<10) != 0,
		SolarPump:       v&(1<<11) != 0,
		FireplacePump:   v&(1<<12) != 0,
		GCZContact:      v&(1<<13) != 0,
		BlowFan1:        v&(1<<14) != 0,
		BlowFan2:        v&(1<<15) != 0,
	}, nil
}

// OutputFlags holds the pump "flag" bits from the u32 output-flags
// bitfield (spec §4.2.3 item 3): bits 2, 3, 4, 11.
type OutputFlags struct {
	HeatingPump     bool
	WaterHeaterPump bool
	CirculationPump bool
	SolarPump       bool
}

func (c *Cursor) decodeOutputFlags() (OutputFlags, error) {
	v, err := c.U32()
	if err != nil {
		return OutputFlags{}, err
	}
	return OutputFlags{
		HeatingPump:     v&(1<<2) != 0,
		WaterHeaterPump: v&(1<<3) != 0,
		CirculationPump: v&(1<<4) != 0,
		SolarPump:       v&(1<<11) != 0,
	}, nil
}

// TemperatureNames is the ordered catalog of the 17 named temperature slots
// (spec §4.2.3 item 4), indexed by the wire-level temperature index.
var TemperatureNames = []string{
	"heating",
	"feeder",
	"water_heater",
	"outside",
	"return",
	"exhaust",
	"optical",
	"upper_buffer",
	"lower_buffer",
	"upper_solar",
	"lower_solar",
	"fireplace",
	"total_gain",
	"hydraulic_coupler",
	"exchanger",
	"air_in",
	"air_out",
}

func (c *Cursor) decodeTemperatures() (map[string]float32, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float32)
	for i := 0; i < int(n); i++ {
		idx, err := c.U8()
		if err != nil {
			return nil, err
		}
		temp, err := c.F32()
		if err != nil {
			return nil, err
		}
		if !math.IsNaN(float64(temp)) && int(idx) < len(TemperatureNames) {
			out[TemperatureNames[idx]] = temp
		}
	}
	return out, nil
}

// Statuses is the 4-byte heating/water-heater target/status block
// (spec §4.2.3 item 5).
type Statuses struct {
	HeatingTarget     uint8
	HeatingStatus     uint8
	WaterHeaterTarget uint8
	WaterHeaterStatus uint8
}

func (c *Cursor) decodeStatuses() (Statuses, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return Statuses{}, err
	}
	return Statuses{
		HeatingTarget:     b[0],
		HeatingStatus:     b[1],
		WaterHeaterTarget: b[2],
		WaterHeaterStatus: b[3],
	}, nil
}

func (c *Cursor) decodePendingAlerts() ([]uint8, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	codes, err := c.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(codes))
	copy(out, codes)
	return out, nil
}

// ModuleVersions holds the firmware versions of the six controller modules
// (spec §4.2.3 item 14). A nil pointer means the slot reported absent
// (0xFF) on the wire.
type ModuleVersions struct {
	ModuleA     string
	ModuleB     *string
	ModuleC     *string
	EcoLAMBDA   *string
	EcoSTER     *string
	Panel       *string
}

func (c *Cursor) decodeModules() (ModuleVersions, error) {
	var mv ModuleVersions

	a, err := c.Bytes(5)
	if err != nil {
		return mv, err
	}
	mv.ModuleA = fmt.Sprintf("%d.%d.%d.%c%d", a[0], a[1], a[2], a[3], a[4])

	for _, slot := range []**string{&mv.ModuleB, &mv.ModuleC, &mv.EcoLAMBDA, &mv.EcoSTER, &mv.Panel} {
		first, err := c.U8()
		if err != nil {
			return mv, err
		}
		if first == 0xFF {
			*slot = nil
			continue
		}
		rest, err := c.Bytes(2)
		if err != nil {
			return mv, err
		}
		v := fmt.Sprintf("%d.%d.%d", first, rest[0], rest[1])
		*slot = &v
	}
	return mv, nil
}

// LambdaSensor is the optional ecoLAMBDA oxygen-sensor reading
// (spec §4.2.3 item 15).
type LambdaSensor struct {
	State  uint8
	Target uint8
	Level  float32 // raw level / 10
}

func (c *Cursor) decodeLambda() (*LambdaSensor, error) {
	state, err := c.U8()
	if err != nil {
		return nil, err
	}
	if state == 0xFF {
		return nil, nil
	}
	target, err := c.U8()
	if err != nil {
		return nil, err
	}
	level, err := c.U16()
	if err != nil {
		return nil, err
	}
	return &LambdaSensor{State: state, Target: target, Level: float32(level) / 10}, nil
}

// ThermostatSensor is one ecoSTER reading (spec §4.2.3 item 16).
type ThermostatSensor struct {
	Contacts    bool
	Schedule    bool
	State       uint8
	CurrentTemp float32
	TargetTemp  float32
}

func (c *Cursor) decodeThermostatSensors() ([]ThermostatSensor, int, error) {
	mask, err := c.U8()
	if err != nil {
		return nil, 0, err
	}
	if mask == 0xFF {
		return nil, 0, nil
	}
	n, err := c.U8()
	if err != nil {
		return nil, 0, err
	}
	out := make([]ThermostatSensor, 0, n)
	for i := 0; i < int(n); i++ {
		state, err := c.U8()
		if err != nil {
			return nil, 0, err
		}
		cur, err := c.F32()
		if err != nil {
			return nil, 0, err
		}
		target, err := c.F32()
		if err != nil {
			return nil, 0, err
		}
		if math.IsNaN(float64(cur)) || target <= 0 {
			continue
		}
		out = append(out, ThermostatSensor{
			Contacts:    mask&(1<<uint(i)) != 0,
			Schedule:    mask&(1<<uint(i+3)) != 0,
			State:       state,
			CurrentTemp: cur,
			TargetTemp:  target,
		})
	}
	return out, int(n), nil
}

// MixerSensor is one mixer-module reading (spec §4.2.3 item 17).
type MixerSensor struct {
	CurrentTemp float32
	TargetTemp  uint8
	PumpWorks   bool
}

func (c *Cursor) decodeMixerSensors() ([]MixerSensor, int, error) {
	n, err := c.U8()
	if err != nil {
		return nil, 0, err
	}
	out := make([]MixerSensor, 0, n)
	for i := 0; i < int(n); i++ {
		cur, err := c.F32()
		if err != nil {
			return nil, 0, err
		}
		target, err := c.U8()
		if err != nil {
			return nil, 0, err
		}
		if _, err := c.U8(); err != nil { // reserved
			return nil, 0, err
		}
		outputs, err := c.U8()
		if err != nil {
			return nil, 0, err
		}
		if _, err := c.U8(); err != nil { // reserved
			return nil, 0, err
		}
		if math.IsNaN(float64(cur)) {
			continue
		}
		out = append(out, MixerSensor{
			CurrentTemp: cur,
			TargetTemp:  target,
			PumpWorks:   outputs&0x01 != 0,
		})
	}
	return out, int(n), nil
}

// SensorData is the fully decoded MESSAGE_SENSOR_DATA payload
// (spec §4.2.3).
type SensorData struct {
	FrameVersions FrameVersions
	State         DeviceState
	Outputs       Outputs
	OutputFlags   OutputFlags
	Temperatures  map[string]float32
	Statuses      Statuses
	PendingAlerts []uint8

	FuelLevel        *uint8 // raw >= 101 already reinterpreted as raw-101
	Transmission     uint8
	FanPower         *float32
	BoilerLoad       *uint8
	BoilerPower      *float32
	FuelConsumption  *float32
	Thermostat       uint8
	Modules          ModuleVersions
	Lambda           *LambdaSensor
	Thermostats      []ThermostatSensor
	Mixers           []MixerSensor

	ThermostatsConnected int
	ThermostatsAvailable int
	MixersConnected      int
	MixersAvailable      int
}

// DecodeSensorData decodes a MESSAGE_SENSOR_DATA payload end to end.
func DecodeSensorData(message []byte) (*SensorData, error) {
	c := NewCursor(message)
	sd := &SensorData{}

	var err error
	if sd.FrameVersions, err = c.DecodeFrameVersions(); err != nil {
		return nil, err
	}

	state, err := c.U8()
	if err != nil {
		return nil, err
	}
	sd.State = DeviceState(state)

	if sd.Outputs, err = c.decodeOutputs(); err != nil {
		return nil, err
	}
	if sd.OutputFlags, err = c.decodeOutputFlags(); err != nil {
		return nil, err
	}
	if sd.Temperatures, err = c.decodeTemperatures(); err != nil {
		return nil, err
	}
	if sd.Statuses, err = c.decodeStatuses(); err != nil {
		return nil, err
	}
	if sd.PendingAlerts, err = c.decodePendingAlerts(); err != nil {
		return nil, err
	}

	fuelLevel, err := c.U8()
	if err != nil {
		return nil, err
	}
	if fuelLevel != 0xFF {
		v := fuelLevel
		if v >= 101 {
			// Firmware quirk preserved verbatim (spec §9 open question 1):
			// do not generalize beyond this one reinterpretation.
			v -= 101
		}
		sd.FuelLevel = &v
	}

	if sd.Transmission, err = c.U8(); err != nil {
		return nil, err
	}

	fanPower, err := c.F32()
	if err != nil {
		return nil, err
	}
	if !math.IsNaN(float64(fanPower)) {
		sd.FanPower = &fanPower
	}

	boilerLoad, err := c.U8()
	if err != nil {
		return nil, err
	}
	if boilerLoad != 0xFF {
		sd.BoilerLoad = &boilerLoad
	}

	boilerPower, err := c.F32()
	if err != nil {
		return nil, err
	}
	if !math.IsNaN(float64(boilerPower)) {
		sd.BoilerPower = &boilerPower
	}

	fuelConsumption, err := c.F32()
	if err != nil {
		return nil, err
	}
	if !math.IsNaN(float64(fuelConsumption)) {
		sd.FuelConsumption = &fuelConsumption
	}

	if sd.Thermostat, err = c.U8(); err != nil {
		return nil, err
	}
	if sd.Modules, err = c.decodeModules(); err != nil {
		return nil, err
	}
	if sd.Lambda, err = c.decodeLambda(); err != nil {
		return nil, err
	}

	therms, thermAvail, err := c.decodeThermostatSensors()
	if err != nil {
		return nil, err
	}
	sd.Thermostats = therms
	sd.ThermostatsAvailable = thermAvail
	sd.ThermostatsConnected = len(therms)

	mixers, mixerAvail, err := c.decodeMixerSensors()
	if err != nil {
		return nil, err
	}
	sd.Mixers = mixers
	sd.MixersAvailable = mixerAvail
	sd.MixersConnected = len(mixers)

	return sd, nil
}
