// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

func regulatorPayload(t *testing.T, hi, lo byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0, 0}) // reserved
	buf.WriteByte(lo)
	buf.WriteByte(hi)
	buf.WriteByte(0) // frame-version table: 0 entries
	return buf.Bytes()
}

// Property 6: a regulator-data frame declaring an unsupported version is
// rejected.
func TestDecodeRegulatorDataVersionRejected(t *testing.T) {
	_, err := structures.DecodeRegulatorData(regulatorPayload(t, 2, 0), nil)
	require.ErrorIs(t, err, structures.ErrVersion)
}

func TestDecodeRegulatorDataSupportedVersion(t *testing.T) {
	rd, err := structures.DecodeRegulatorData(regulatorPayload(t, 1, 0), nil)
	require.NoError(t, err)
	require.Empty(t, rd.Values)
}
