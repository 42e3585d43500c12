package structures

// ParameterRecord is the wire form of one parameter slot: three equal-size
// little-endian unsigned integers, value | min_value | max_value
// (spec §4.2.5). A record whose bytes are all 0xFF is absent.
type ParameterRecord struct {
	Value, Min, Max uint32
	Absent          bool
}

func (c *Cursor) decodeParameterRecord(width int) (ParameterRecord, error) {
	raw, err := c.Bytes(width * 3)
	if err != nil {
		return ParameterRecord{}, err
	}
	if allFF(raw) {
		return ParameterRecord{Absent: true}, nil
	}
	return ParameterRecord{
		Value: readUintLE(raw[0*width : 1*width]),
		Min:   readUintLE(raw[1*width : 2*width]),
		Max:   readUintLE(raw[2*width : 3*width]),
	}, nil
}

func allFF(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

func readUintLE(b []byte) uint32 {
	var v uint32
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}

// EcomaxParametersResponse is the decoded RESPONSE_ECOMAX_PARAMETERS body:
// `[_, first_index, count] + count * record`, 1 byte per record field.
type EcomaxParametersResponse struct {
	FirstIndex int
	Parameters []ParameterRecord // index i corresponds to FirstIndex+i
}

// DecodeEcomaxParameters decodes a RESPONSE_ECOMAX_PARAMETERS body.
func DecodeEcomaxParameters(message []byte) (*EcomaxParametersResponse, error) {
	c := NewCursor(message)
	if _, err := c.U8(); err != nil { // reserved
		return nil, err
	}
	first, err := c.U8()
	if err != nil {
		return nil, err
	}
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	out := &EcomaxParametersResponse{FirstIndex: int(first)}
	for i := 0; i < int(count); i++ {
		rec, err := c.decodeParameterRecord(1)
		if err != nil {
			return nil, err
		}
		out.Parameters = append(out.Parameters, rec)
	}
	return out, nil
}

// MixerParameterSet is one mixer's block of parameter records.
type MixerParameterSet struct {
	MixerIndex int
	Parameters []ParameterRecord // index i corresponds to FirstIndex+i
}

// MixerParametersResponse is the decoded RESPONSE_MIXER_PARAMETERS body:
// `[_, first_index, parameters_per_mixer, mixer_count] +
// mixer_count * parameters_per_mixer * record`.
type MixerParametersResponse struct {
	FirstIndex        int
	ParametersPerMixer int
	Mixers            []MixerParameterSet
}

// DecodeMixerParameters decodes a RESPONSE_MIXER_PARAMETERS body.
func DecodeMixerParameters(message []byte) (*MixerParametersResponse, error) {
	c := NewCursor(message)
	if _, err := c.U8(); err != nil { // reserved
		return nil, err
	}
	first, err := c.U8()
	if err != nil {
		return nil, err
	}
	perMixer, err := c.U8()
	if err != nil {
		return nil, err
	}
	mixerCount, err := c.U8()
	if err != nil {
		return nil, err
	}

	out := &MixerParametersResponse{FirstIndex: int(first), ParametersPerMixer: int(perMixer)}
	for m := 0; m < int(mixerCount); m++ {
		set := MixerParameterSet{MixerIndex: m}
		for p := 0; p < int(perMixer); p++ {
			rec, err := c.decodeParameterRecord(1)
			if err != nil {
				return nil, err
			}
			set.Parameters = append(set.Parameters, rec)
		}
		out.Mixers = append(out.Mixers, set)
	}
	return out, nil
}

// ThermostatParameterSet is one thermostat's block of parameter records.
type ThermostatParameterSet struct {
	ThermostatIndex int
	Parameters      []ParameterRecord
}

// ThermostatParametersResponse is the decoded RESPONSE_THERMOSTAT_PARAMETERS
// body: a profile parameter, then per-thermostat blocks (spec §4.2.5). The
// per-parameter wire width (1 or 2 bytes) for each index is supplied by the
// caller (the device package's static parameter catalog), since the wire
// format itself carries no width tag.
//
// thermostatCount == 0 must short-circuit with no parameters decoded
// (spec §9 open question 3): dividing first/last index by a zero
// thermostat count is undefined.
func DecodeThermostatParameters(message []byte, thermostatCount int, widthOf func(localIndex int) int) (*ThermostatParametersResponse, error) {
	out := &ThermostatParametersResponse{}
	if thermostatCount == 0 {
		return out, nil
	}

	c := NewCursor(message)
	if _, err := c.U8(); err != nil { // reserved
		return nil, err
	}
	first, err := c.U8()
	if err != nil {
		return nil, err
	}
	last, err := c.U8()
	if err != nil {
		return nil, err
	}
	out.FirstIndex = int(first)
	out.LastIndex = int(last)
	perThermostat := (int(first) + int(last)) / thermostatCount

	profile, err := c.decodeParameterRecord(widthOf(0))
	if err != nil {
		return nil, err
	}
	out.Profile = profile

	for t := 0; t < thermostatCount; t++ {
		set := ThermostatParameterSet{ThermostatIndex: t}
		for p := 0; p < perThermostat; p++ {
			rec, err := c.decodeParameterRecord(widthOf(p + 1))
			if err != nil {
				return nil, err
			}
			set.Parameters = append(set.Parameters, rec)
		}
		out.Thermostats = append(out.Thermostats, set)
	}
	return out, nil
}

// ThermostatParametersResponse is the result of DecodeThermostatParameters.
type ThermostatParametersResponse struct {
	FirstIndex  int
	LastIndex   int
	Profile     ParameterRecord
	Thermostats []ThermostatParameterSet
}
