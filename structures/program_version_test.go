// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

// Property 11: program-version round-trip against an exact byte vector.
func TestEncodeProgramVersion(t *testing.T) {
	v := structures.NewVersionInfo("1.0.0", 0x56)

	wire, err := structures.EncodeProgramVersion(v)
	require.NoError(t, err)
	require.Equal(t,
		[]byte{0xFF, 0xFF, 0x05, 0x7A, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x56},
		wire,
	)

	decoded, err := structures.DecodeProgramVersion(wire)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", decoded.Version)
	require.Equal(t, uint8(0x56), decoded.Sender)
}
