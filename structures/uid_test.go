// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

// Property 10: UID vectors.
func TestUnpackUID(t *testing.T) {
	cases := []struct {
		hexRaw string
		want   string
	}{
		{"001600110D383338365539", "D251PAKR3GCPZ1K8G05G0"},
		{"002500300E191932135831", "CE71HB09J468P1ZZ00980"},
	}
	for _, tc := range cases {
		raw, err := hex.DecodeString(tc.hexRaw)
		require.NoError(t, err)
		require.Equal(t, tc.want, structures.UnpackUID(raw))
	}
}
