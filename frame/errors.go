package frame

import "errors"

// Sentinel errors for the frame codec, declared with plain errors.New in the
// style of the teacher's own errors.go and matched with errors.Is. The
// per-type codecs in requests.go and responses.go wrap their errors with
// github.com/pkg/errors.
var (
	// ErrChecksum reports that the received bcc did not match the computed one.
	ErrChecksum = errors.New("frame: checksum mismatch")

	// ErrRead reports a malformed frame: short header, short payload, or a
	// length outside [MinLength, MaxLength].
	ErrRead = errors.New("frame: malformed frame")

	// ErrUnknownFrame reports a frame_type byte outside the closed set in §6.2.
	ErrUnknownFrame = errors.New("frame: unknown frame type")

	// ErrVersion names an unsupported regulator-data frame version (spec
	// §4.2.4, §8 property 6). No code in this module returns it:
	// structures.DecodeRegulatorData reports structures.ErrVersion.
	ErrVersion = errors.New("frame: unsupported regulator-data version")

	// ErrData reports a frame whose decoded data is missing fields an
	// encoder needs to rebuild the wire message (spec §7, FrameDataError).
	ErrData = errors.New("frame: missing data for encode")
)
