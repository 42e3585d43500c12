package structures

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VersionInfo is the decoded/encoded RESPONSE_PROGRAM_VERSION body
// (spec §6.4): little-endian pack of
// (struct_tag, struct_version, device_id, processor_signature,
// major, minor, patch, sender).
type VersionInfo struct {
	StructTag           [2]byte
	StructVersion       uint8
	DeviceID            [2]byte
	ProcessorSignature  [3]byte
	Version             string // "major.minor.patch"
	Sender              uint8
}

var defaultVersionInfo = VersionInfo{
	StructTag:          [2]byte{0xFF, 0xFF},
	StructVersion:      5,
	DeviceID:           [2]byte{0x7A, 0x00},
	ProcessorSignature: [3]byte{0x00, 0x00, 0x00},
}

// NewVersionInfo fills in this master's conventional struct_tag/
// struct_version/device_id/processor_signature defaults.
func NewVersionInfo(version string, sender uint8) VersionInfo {
	v := defaultVersionInfo
	v.Version = version
	v.Sender = sender
	return v
}

// EncodeProgramVersion packs a VersionInfo per spec §6.4: "<2s B 2s 3s 3H B".
func EncodeProgramVersion(v VersionInfo) ([]byte, error) {
	major, minor, patch, err := splitVersion(v.Version)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 15)
	copy(buf[0:2], v.StructTag[:])
	buf[2] = v.StructVersion
	copy(buf[3:5], v.DeviceID[:])
	copy(buf[5:8], v.ProcessorSignature[:])
	binary.LittleEndian.PutUint16(buf[8:10], major)
	binary.LittleEndian.PutUint16(buf[10:12], minor)
	binary.LittleEndian.PutUint16(buf[12:14], patch)
	buf[14] = v.Sender
	return buf, nil
}

// DecodeProgramVersion is the inverse of EncodeProgramVersion.
func DecodeProgramVersion(message []byte) (VersionInfo, error) {
	var v VersionInfo
	if len(message) < 15 {
		return v, errors.Errorf("structures: program-version message too short: %d bytes", len(message))
	}
	copy(v.StructTag[:], message[0:2])
	v.StructVersion = message[2]
	copy(v.DeviceID[:], message[3:5])
	copy(v.ProcessorSignature[:], message[5:8])
	major := binary.LittleEndian.Uint16(message[8:10])
	minor := binary.LittleEndian.Uint16(message[10:12])
	patch := binary.LittleEndian.Uint16(message[12:14])
	v.Version = fmt.Sprintf("%d.%d.%d", major, minor, patch)
	v.Sender = message[14]
	return v, nil
}

func splitVersion(version string) (major, minor, patch uint16, err error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return 0, 0, 0, errors.Errorf("structures: invalid version %q", version)
	}
	nums := make([]uint16, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, errors.Wrapf(err, "structures: invalid version component %q", p)
		}
		nums[i] = uint16(n)
	}
	return nums[0], nums[1], nums[2], nil
}
