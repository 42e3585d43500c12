// Package frame implements the ecoNET wire framing: header layout, checksum,
// and the closed set of frame types exchanged between an ecoNET master and
// its addressable devices (ecoMAX controllers, ecoSTER thermostats, mixer
// modules).
//
// Wire layout:
//
//	offset  size  field
//	0       1     Start (0x68)
//	1       2     length, little-endian uint16, total frame length incl. Start/End
//	3       1     recipient
//	4       1     sender
//	5       1     sender type
//	6       1     econet version
//	7       1     frame type
//	8..     N     message payload
//	L-2     1     bcc (XOR of every preceding byte, including Start)
//	L-1     1     End (0x16)
package frame

import "fmt"

// Wire constants, see spec §4.1.1 and §6.1.
const (
	Start byte = 0x68
	End   byte = 0x16

	// HeaderSize covers Start, the 2-byte length, recipient, sender,
	// sender type and econet version -- everything before the frame-type byte.
	HeaderSize = 7

	// MinLength and MaxLength bound the accepted total frame length L.
	MinLength = 10
	MaxLength = 1000
)

// Addresses known to the protocol (spec §6.1).
const (
	AddressBroadcast byte = 0x00
	AddressEcoMAX    byte = 0x45
	AddressEcoSTER   byte = 0x51
	AddressMaster    byte = 0x56 // "ecoNET", this library's own address
)

// Conventional sender metadata used by this master.
const (
	SenderTypeMaster byte = 0x30
	EconetVersion    byte = 0x05
)

// Frame is the unit of wire transfer. Message is always the authoritative
// wire-level payload once a frame has been read off the bus; Payload, when
// non-nil, is the decoded structured view produced by Decode or consumed by
// Encode. Exactly one of the two needs to be populated at any time -- the
// other is derived lazily and deterministically.
type Frame struct {
	Recipient     byte
	Sender        byte
	SenderType    byte
	EconetVersion byte
	Type          Type

	Message []byte
	Payload any
}

// New builds an outgoing frame addressed to recipient, stamped with this
// master's conventional sender metadata.
func New(typ Type, recipient byte, payload any) *Frame {
	return &Frame{
		Recipient:     recipient,
		Sender:        AddressMaster,
		SenderType:    SenderTypeMaster,
		EconetVersion: EconetVersion,
		Type:          typ,
		Payload:       payload,
	}
}

// Length returns the total on-wire frame length L, given the current
// Message. Encode must be called first if Payload is authoritative instead.
func (f *Frame) Length() int {
	return HeaderSize + 1 + len(f.Message) + 1 + 1
}

// Encode serializes Payload into Message using the frame-type's registered
// encoder, replacing any previous Message. It is a no-op returning nil if
// the frame type has no registered encoder (response/message frame types
// the master never synthesizes).
func (f *Frame) Encode() error {
	enc, ok := encoders[f.Type]
	if !ok {
		return nil
	}
	msg, err := enc(f.Payload)
	if err != nil {
		return fmt.Errorf("frame: encode %s: %w", f.Type, err)
	}
	f.Message = msg
	return nil
}

// Decode parses Message into a typed Payload using the frame-type's
// registered decoder, caching the result on the frame and returning it.
// ErrUnknownFrame is returned for types with no registered handler at all;
// a type with no decoder (pure request, nothing to decode) yields a nil
// Payload and a nil error.
func (f *Frame) Decode() (any, error) {
	if f.Payload != nil {
		return f.Payload, nil
	}
	if _, ok := table[f.Type]; !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownFrame, byte(f.Type))
	}
	dec, ok := decoders[f.Type]
	if !ok {
		return nil, nil
	}
	payload, err := dec(f.Message)
	if err != nil {
		return nil, fmt.Errorf("frame: decode %s: %w", f.Type, err)
	}
	f.Payload = payload
	return payload, nil
}

// Bytes renders the complete on-wire frame, encoding Payload into Message
// first if Message is empty and a Payload is present.
func (f *Frame) Bytes() ([]byte, error) {
	if len(f.Message) == 0 && f.Payload != nil {
		if err := f.Encode(); err != nil {
			return nil, err
		}
	}

	l := f.Length()
	buf := make([]byte, l)
	buf[0] = Start
	buf[1] = byte(l)
	buf[2] = byte(l >> 8)
	buf[3] = f.Recipient
	buf[4] = f.Sender
	buf[5] = f.SenderType
	buf[6] = f.EconetVersion
	buf[7] = byte(f.Type)
	copy(buf[8:], f.Message)
	buf[l-2] = bcc(buf[:l-2])
	buf[l-1] = End
	return buf, nil
}

// bcc is the block-check-character: XOR of every byte given.
func bcc(data []byte) byte {
	var c byte
	for _, b := range data {
		c ^= b
	}
	return c
}

// IsRequest, IsResponse and IsMessage classify a frame type against the
// closed categories of spec §4.1.4: requests (optionally paired with a
// response), responses (terminal) and messages (unsolicited/pushed).
func (f *Frame) IsRequest() bool  { return f.Type.category() == categoryRequest }
func (f *Frame) IsResponse() bool { return f.Type.category() == categoryResponse }
func (f *Frame) IsMessage() bool  { return f.Type.category() == categoryMessage }
