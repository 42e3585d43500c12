// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import (
	"context"

	"github.com/plumio/econet/frame"
	"github.com/plumio/econet/structures"
)

// Schedule is a named weekly plan plus the two parameters that live
// alongside it in the owning device's event map (spec §3.5):
// "<name>_schedule_switch" (binary) and "<name>_schedule_parameter"
// (integer number).
type Schedule struct {
	Name   string
	Type   uint8 // wire schedule-type tag used when building REQUEST_SET_SCHEDULE
	Week   structures.ScheduleWeek
	Switch *SwitchParameter
	Param  *NumberParameter

	owner          writeQueue
	parameterWidth int
}

// NewSchedule wraps a decoded structures.ScheduleRecord as a device-owned
// Schedule, with its switch/parameter pair bound to owner's write queue.
func NewSchedule(name string, rec structures.ScheduleRecord, owner writeQueue, parameterWidth int) *Schedule {
	sw := NewSwitchParameter(name+"_schedule_switch", Description{Name: name + "_schedule_switch"}, owner, KindEcomax, 0, 0, rec.Switch)
	param := NewNumberParameter(name+"_schedule_parameter", Description{Name: name + "_schedule_parameter"}, owner, KindEcomax, 0, 0, rec.Parameter.Value, rec.Parameter.Min, rec.Parameter.Max)
	return &Schedule{
		Name: name, Type: uint8(rec.Index), Week: rec.Week,
		Switch: sw, Param: param,
		owner: owner, parameterWidth: parameterWidth,
	}
}

// Send builds and enqueues the REQUEST_SET_SCHEDULE snapshot for the
// current switch/parameter/week state (spec §4.4.2 step 5, Schedule case).
func (s *Schedule) Send() {
	value, min, max := s.Param.Values()
	req := frame.New(frame.RequestSetSchedule, frame.AddressEcoMAX, frame.ScheduleSetRequest{
		ScheduleType:   s.Type,
		Switch:         s.Switch.Semantic() != 0,
		Parameter:      structures.ParameterRecord{Value: value, Min: min, Max: max},
		Week:           s.Week,
		ParameterWidth: s.parameterWidth,
	})
	s.owner.enqueue(req)
}

// SetDay replaces one day of the week and re-sends the full snapshot.
func (s *Schedule) SetDay(ctx context.Context, weekday int, day structures.ScheduleIntervals) {
	if weekday < 0 || weekday > 6 {
		return
	}
	s.Week[weekday] = day
	s.Send()
}
