// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

// Property 7: a single 0x55 byte decodes as eight alternating booleans,
// LSB first, and is consumed in exactly one byte.
func TestCursorBoolPacking(t *testing.T) {
	c := structures.NewCursor([]byte{0x55})

	want := []bool{true, false, true, false, true, false, true, false}
	for i, w := range want {
		v, err := c.Bool()
		require.NoErrorf(t, err, "bit %d", i)
		require.Equalf(t, w, v, "bit %d", i)
	}
	require.Equal(t, 1, c.Offset)
}
