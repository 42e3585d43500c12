// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

// buildSensorData assembles a MESSAGE_SENSOR_DATA payload field by field, in
// DecodeSensorData's own order, so the fixture can't silently drift from the
// decoder it exercises.
func buildSensorData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteByte(0) // frame-version table: 0 entries

	buf.WriteByte(byte(structures.StateHeating))

	writeU32(&buf, 0) // outputs: heating pump off
	writeU32(&buf, 0) // output flags

	buf.WriteByte(1)             // 1 temperature
	buf.WriteByte(0)             // index 0 == "heating"
	writeF32(&buf, 22.38)        // heating_temp

	buf.WriteByte(41) // HeatingTarget
	buf.WriteByte(0)  // HeatingStatus
	buf.WriteByte(0)  // WaterHeaterTarget
	buf.WriteByte(0)  // WaterHeaterStatus

	buf.WriteByte(0) // 0 pending alerts

	buf.WriteByte(32) // fuel level (< 101, used as-is)

	buf.WriteByte(0) // transmission

	writeF32(&buf, float32(math.NaN())) // fan power absent

	buf.WriteByte(0xFF) // boiler load absent

	writeF32(&buf, float32(math.NaN())) // boiler power absent
	writeF32(&buf, float32(math.NaN())) // fuel consumption absent

	buf.WriteByte(0) // thermostat

	// modules: module A, then 5 absent slots
	buf.Write([]byte{18, 11, 58, 'K', 1})
	for i := 0; i < 5; i++ {
		buf.WriteByte(0xFF)
	}

	buf.WriteByte(0xFF) // lambda absent

	buf.WriteByte(0xFF) // thermostat sensors absent

	buf.WriteByte(1)           // 1 mixer
	writeF32(&buf, 35.0)       // current temp
	buf.WriteByte(40)          // target temp
	buf.WriteByte(0)           // reserved
	buf.WriteByte(0)           // outputs: pump off
	buf.WriteByte(0)           // reserved

	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeF32(buf *bytes.Buffer, v float32) {
	writeU32(buf, math.Float32bits(v))
}

// Property 5: a well-formed sensor-data payload decodes to the named
// reference values.
func TestDecodeSensorDataVector(t *testing.T) {
	sd, err := structures.DecodeSensorData(buildSensorData(t))
	require.NoError(t, err)

	require.Equal(t, structures.StateHeating, sd.State)
	require.InDelta(t, 22.38, sd.Temperatures["heating"], 0.01)
	require.Equal(t, uint8(41), sd.Statuses.HeatingTarget)
	require.False(t, sd.Outputs.HeatingPump)
	require.Equal(t, "18.11.58.K1", sd.Modules.ModuleA)
	require.Len(t, sd.Mixers, 1)
	require.Equal(t, uint8(40), sd.Mixers[0].TargetTemp)
	require.Empty(t, sd.PendingAlerts)
	require.NotNil(t, sd.FuelLevel)
	require.Equal(t, uint8(32), *sd.FuelLevel)
}
