// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package structures_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/structures"
)

// Property 12: SetOn toggles exactly the covered half-hour intervals, and
// rejects a range whose end precedes its start.
func TestScheduleIntervalsSetOn(t *testing.T) {
	var day structures.ScheduleIntervals
	require.NoError(t, day.SetOn("00:00", "01:00"))

	for i, on := range day {
		want := i == 0 || i == 1 || i == 2
		require.Equalf(t, want, on, "interval %d", i)
	}
}

func TestScheduleIntervalsSetOnInvalidRange(t *testing.T) {
	var day structures.ScheduleIntervals
	err := day.SetOn("01:00", "00:30")
	require.Error(t, err)
}
