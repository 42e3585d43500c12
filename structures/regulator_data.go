package structures

import (
	"fmt"

	"github.com/pkg/errors"
)

// SchemaEntry is one (id, type) pair of a regulator-data schema, as
// delivered out-of-band by a RESPONSE_REGULATOR_DATA_SCHEMA frame.
type SchemaEntry struct {
	ID   uint16
	Type DataType
}

// DecodeRegulatorDataSchema decodes a RESPONSE_REGULATOR_DATA_SCHEMA body:
// a u16-LE count of entries, then that many (type u8, id u16-LE) pairs.
func DecodeRegulatorDataSchema(message []byte) ([]SchemaEntry, error) {
	c := NewCursor(message)
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	entries := make([]SchemaEntry, 0, n)
	for i := 0; i < int(n); i++ {
		typ, err := c.U8()
		if err != nil {
			return nil, err
		}
		id, err := c.U16()
		if err != nil {
			return nil, err
		}
		entries = append(entries, SchemaEntry{ID: id, Type: DataType(typ)})
	}
	return entries, nil
}

// RegulatorDataVersion is the only frame version this decoder accepts
// (spec §4.2.4, §8 property 6).
const RegulatorDataVersion = "1.0"

// RegulatorData is the fully decoded MESSAGE_REGULATOR_DATA payload.
type RegulatorData struct {
	FrameVersions FrameVersions
	Values        map[uint16]any
}

// DecodeRegulatorData decodes a MESSAGE_REGULATOR_DATA payload against a
// previously-received schema (spec §4.2.4). It returns an error wrapping
// this package's ErrVersion when the embedded frame version is not "1.0".
func DecodeRegulatorData(message []byte, schema []SchemaEntry) (*RegulatorData, error) {
	c := NewCursor(message)
	if err := c.Skip(2); err != nil { // 2 reserved bytes
		return nil, err
	}

	lo, err := c.U8()
	if err != nil {
		return nil, err
	}
	hi, err := c.U8()
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%d.%d", hi, lo)
	if version != RegulatorDataVersion {
		return nil, errors.Wrapf(ErrVersion, "got %q", version)
	}

	fv, err := c.DecodeFrameVersions()
	if err != nil {
		return nil, err
	}

	values := make(map[uint16]any, len(schema))
	for _, entry := range schema {
		v, err := c.DecodeScalar(entry.Type)
		if err != nil {
			return nil, err
		}
		values[entry.ID] = v
	}

	return &RegulatorData{FrameVersions: fv, Values: values}, nil
}

// ErrVersion reports a regulator-data frame declaring an unsupported
// version (spec §4.2.4, §8 property 6).
var ErrVersion = errors.New("structures: unsupported regulator-data version")
