package frame

import "github.com/plumio/econet/structures"

// Message-category frame types carry unsolicited data the master never
// assembles itself; only decoders are registered here.
//
// MESSAGE_REGULATOR_DATA is the one exception: decoding its body requires
// a schema received earlier via RESPONSE_REGULATOR_DATA_SCHEMA, which this
// package has no way to track. Its decoder is deliberately left
// unregistered -- Frame.Decode returns a nil payload for it, and the
// protocol package calls structures.DecodeRegulatorData directly with the
// schema it has cached for the sending device.
func init() {
	RegisterDecoder(MessageSensorData, func(message []byte) (any, error) {
		return structures.DecodeSensorData(message)
	})
}
