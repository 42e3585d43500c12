package structures

import "github.com/pkg/errors"

// DataType is the 1-byte type tag used by the regulator-data schema
// (spec §4.2.1).
type DataType uint8

const (
	TypeUndefined0 DataType = 0
	TypeInt8       DataType = 1
	TypeInt16      DataType = 2
	TypeInt32      DataType = 3
	TypeUint8      DataType = 4
	TypeUint16     DataType = 5
	TypeUint32     DataType = 6
	TypeFloat32    DataType = 7
	TypeUndefined8 DataType = 8
	TypeFloat64    DataType = 9
	TypeBool       DataType = 10
	TypeString11   DataType = 11
	TypeString12   DataType = 12
	TypeInt64      DataType = 13
	TypeUint64     DataType = 14
	TypeIPv4       DataType = 15
	TypeIPv6       DataType = 16
)

// ErrUnknownType reports a DataType tag outside the catalog in spec §4.2.1.
var ErrUnknownType = errors.New("structures: unknown scalar type tag")

// DecodeScalar reads one value of the given schema type tag from c,
// returning it boxed as any. Bool values participate in the running
// bit-index (spec §4.2.2); every other type flushes it first.
func (c *Cursor) DecodeScalar(t DataType) (any, error) {
	switch t {
	case TypeUndefined0, TypeUndefined8:
		return nil, nil
	case TypeInt8:
		return c.I8()
	case TypeInt16:
		return c.I16()
	case TypeInt32:
		return c.I32()
	case TypeUint8:
		return c.U8()
	case TypeUint16:
		return c.U16()
	case TypeUint32:
		return c.U32()
	case TypeFloat32:
		v, err := c.F32()
		return v, err
	case TypeFloat64:
		return c.F64()
	case TypeBool:
		return c.Bool()
	case TypeString11, TypeString12:
		return c.CString()
	case TypeInt64:
		return c.I64()
	case TypeUint64:
		return c.U64()
	case TypeIPv4:
		return c.IPv4()
	case TypeIPv6:
		return c.IPv6()
	default:
		return nil, errors.Wrapf(ErrUnknownType, "tag %d", t)
	}
}
