package frame

import (
	"github.com/pkg/errors"

	"github.com/plumio/econet/structures"
)

func init() {
	RegisterDecoder(ResponseDeviceAvailable, func(message []byte) (any, error) {
		return structures.DecodeNetworkInfo(message)
	})
	RegisterEncoder(ResponseDeviceAvailable, func(payload any) ([]byte, error) {
		p, ok := payload.(structures.NetworkInfo)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want structures.NetworkInfo, got %T", payload)
		}
		return structures.EncodeNetworkInfo(p)
	})

	RegisterDecoder(ResponseEcomaxParameters, func(message []byte) (any, error) {
		return structures.DecodeEcomaxParameters(message)
	})

	RegisterDecoder(ResponseMixerParameters, func(message []byte) (any, error) {
		return structures.DecodeMixerParameters(message)
	})

	// RESPONSE_THERMOSTAT_PARAMETERS needs the live thermostat count and a
	// per-index width function from the device's parameter catalog, neither
	// of which this package has -- like MESSAGE_REGULATOR_DATA, the protocol
	// package calls structures.DecodeThermostatParameters directly instead
	// of going through the registry.

	RegisterDecoder(ResponseAlerts, func(message []byte) (any, error) {
		return structures.DecodeAlerts(message)
	})
	RegisterEncoder(ResponseAlerts, func(payload any) ([]byte, error) {
		p, ok := payload.([]structures.Alert)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want []structures.Alert, got %T", payload)
		}
		return structures.EncodeAlerts(p, 0), nil
	})

	RegisterDecoder(ResponseUID, func(message []byte) (any, error) {
		return structures.DecodeProductInfo(message)
	})
	// No encoder: the master only receives RESPONSE_UID. UnpackUID turns the
	// raw UID into its CRC-stamped base-32 form, and no packing counterpart
	// exists to reverse it.

	RegisterDecoder(ResponseProgramVersion, func(message []byte) (any, error) {
		return structures.DecodeProgramVersion(message)
	})
	RegisterEncoder(ResponseProgramVersion, func(payload any) ([]byte, error) {
		p, ok := payload.(structures.VersionInfo)
		if !ok {
			return nil, errors.Wrapf(ErrPayloadType, "want structures.VersionInfo, got %T", payload)
		}
		return structures.EncodeProgramVersion(p)
	})

	RegisterDecoder(ResponseRegulatorDataSchema, func(message []byte) (any, error) {
		return structures.DecodeRegulatorDataSchema(message)
	})
}
