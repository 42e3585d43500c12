package frame

// DecodeFunc turns a frame's raw Message bytes into a typed Payload.
type DecodeFunc func(message []byte) (any, error)

// EncodeFunc turns a typed Payload back into raw Message bytes.
type EncodeFunc func(payload any) ([]byte, error)

var (
	decoders = map[Type]DecodeFunc{}
	encoders = map[Type]EncodeFunc{}
)

// RegisterDecoder installs the decoder for a frame type. Called from init()
// in requests.go/responses.go/messages.go, mirroring the static
// frame-type -> handler table the design notes (spec §9) call for, without
// resorting to a runtime string-path factory.
func RegisterDecoder(t Type, fn DecodeFunc) { decoders[t] = fn }

// RegisterEncoder installs the encoder for a frame type.
func RegisterEncoder(t Type, fn EncodeFunc) { encoders[t] = fn }
