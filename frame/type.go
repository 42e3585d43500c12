package frame

import "fmt"

// Type is the closed set of frame-type codes defined by spec §6.2.
type Type uint8

const (
	RequestStopMaster             Type = 0x18
	RequestStartMaster            Type = 0x19
	RequestCheckDevice            Type = 0x30
	RequestEcomaxParameters       Type = 0x31
	RequestMixerParameters        Type = 0x32
	RequestSetEcomaxParameter     Type = 0x33
	RequestSetMixerParameter      Type = 0x34
	RequestAlerts                 Type = 0x36
	RequestSetThermostatParameter Type = 0x37
	RequestSetSchedule            Type = 0x38
	RequestUID                    Type = 0x39
	RequestPassword               Type = 0x3A
	RequestEcomaxControl          Type = 0x3B
	RequestThermostatParameters   Type = 0x3C
	RequestProgramVersion         Type = 0x40
	RequestDataSchema             Type = 0x55

	MessageRegulatorData Type = 0x08
	MessageSensorData    Type = 0x35

	ResponseDeviceAvailable       Type = 0xB0
	ResponseEcomaxParameters      Type = 0xB1
	ResponseMixerParameters       Type = 0xB2
	ResponseSetEcomaxParameter    Type = 0xB3
	ResponseSetMixerParameter     Type = 0xB4
	ResponseAlerts                Type = 0xB6
	ResponseSetThermostatParam    Type = 0xB7
	ResponseThermostatParameters  Type = 0xB8
	ResponseUID                   Type = 0xB9
	ResponsePassword              Type = 0xBA
	ResponseEcomaxControl         Type = 0xBB
	ResponseSetSchedule           Type = 0xBC
	ResponseProgramVersion        Type = 0xC0
	ResponseRegulatorDataSchema   Type = 0xD5
)

type category uint8

const (
	categoryUnknown category = iota
	categoryRequest
	categoryResponse
	categoryMessage
)

// names and categories is a static frame-type table, per the design note in
// spec §9 preferring "a static frame_type -> constructor table (array of
// function pointers / match on an enum)" over a runtime factory-by-string.
var table = map[Type]struct {
	name string
	cat  category
}{
	RequestStopMaster:             {"REQUEST_STOP_MASTER", categoryRequest},
	RequestStartMaster:            {"REQUEST_START_MASTER", categoryRequest},
	RequestCheckDevice:             {"REQUEST_CHECK_DEVICE", categoryRequest},
	RequestEcomaxParameters:        {"REQUEST_ECOMAX_PARAMETERS", categoryRequest},
	RequestMixerParameters:         {"REQUEST_MIXER_PARAMETERS", categoryRequest},
	RequestSetEcomaxParameter:      {"REQUEST_SET_ECOMAX_PARAMETER", categoryRequest},
	RequestSetMixerParameter:       {"REQUEST_SET_MIXER_PARAMETER", categoryRequest},
	RequestAlerts:                  {"REQUEST_ALERTS", categoryRequest},
	RequestSetThermostatParameter:  {"REQUEST_SET_THERMOSTAT_PARAMETER", categoryRequest},
	RequestSetSchedule:             {"REQUEST_SET_SCHEDULE", categoryRequest},
	RequestUID:                     {"REQUEST_UID", categoryRequest},
	RequestPassword:                {"REQUEST_PASSWORD", categoryRequest},
	RequestEcomaxControl:           {"REQUEST_ECOMAX_CONTROL", categoryRequest},
	RequestThermostatParameters:    {"REQUEST_THERMOSTAT_PARAMETERS", categoryRequest},
	RequestProgramVersion:          {"REQUEST_PROGRAM_VERSION", categoryRequest},
	RequestDataSchema:              {"REQUEST_DATA_SCHEMA", categoryRequest},

	MessageRegulatorData: {"MESSAGE_REGULATOR_DATA", categoryMessage},
	MessageSensorData:    {"MESSAGE_SENSOR_DATA", categoryMessage},

	ResponseDeviceAvailable:      {"RESPONSE_DEVICE_AVAILABLE", categoryResponse},
	ResponseEcomaxParameters:     {"RESPONSE_ECOMAX_PARAMETERS", categoryResponse},
	ResponseMixerParameters:      {"RESPONSE_MIXER_PARAMETERS", categoryResponse},
	ResponseSetEcomaxParameter:   {"RESPONSE_SET_ECOMAX_PARAMETER", categoryResponse},
	ResponseSetMixerParameter:    {"RESPONSE_SET_MIXER_PARAMETER", categoryResponse},
	ResponseAlerts:               {"RESPONSE_ALERTS", categoryResponse},
	ResponseSetThermostatParam:   {"RESPONSE_SET_THERMOSTAT_PARAMETER", categoryResponse},
	ResponseThermostatParameters: {"RESPONSE_THERMOSTAT_PARAMETERS", categoryResponse},
	ResponseUID:                  {"RESPONSE_UID", categoryResponse},
	ResponsePassword:             {"RESPONSE_PASSWORD", categoryResponse},
	ResponseEcomaxControl:        {"RESPONSE_ECOMAX_CONTROL", categoryResponse},
	ResponseSetSchedule:          {"RESPONSE_SET_SCHEDULE", categoryResponse},
	ResponseProgramVersion:       {"RESPONSE_PROGRAM_VERSION", categoryResponse},
	ResponseRegulatorDataSchema:  {"RESPONSE_REGULATOR_DATA_SCHEMA", categoryResponse},
}

func (t Type) String() string {
	if e, ok := table[t]; ok {
		return e.name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(t))
}

func (t Type) category() category {
	if e, ok := table[t]; ok {
		return e.cat
	}
	return categoryUnknown
}

// Known reports whether t is a member of the closed frame-type set.
func (t Type) Known() bool {
	_, ok := table[t]
	return ok
}

// RequestFor maps a response/message frame type observed in a frame-version
// table (spec §4.3.3) to the request frame type that must be issued to
// refresh it. Returns false for types with no corresponding request (e.g.
// frame types the master itself only ever sends, or pure push messages with
// no paired request).
func RequestFor(t Type) (Type, bool) {
	req, ok := versionRequest[t]
	return req, ok
}

var versionRequest = map[Type]Type{
	ResponseEcomaxParameters:     RequestEcomaxParameters,
	ResponseMixerParameters:      RequestMixerParameters,
	ResponseThermostatParameters: RequestThermostatParameters,
	ResponseAlerts:               RequestAlerts,
	ResponseUID:                  RequestUID,
	ResponsePassword:             RequestPassword,
	ResponseRegulatorDataSchema:  RequestDataSchema,
}
