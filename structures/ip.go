package structures

import (
	"fmt"
	"net"
)

func formatIPv4(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

func formatIPv6(b []byte) string {
	return net.IP(b).String()
}

// packIPv4 is the write-side mirror used by encoders that synthesize a
// device-available response (spec §6.3).
func packIPv4(addr string) [4]byte {
	var out [4]byte
	ip := net.ParseIP(addr)
	if ip == nil {
		return out
	}
	v4 := ip.To4()
	if v4 == nil {
		return out
	}
	copy(out[:], v4)
	return out
}
