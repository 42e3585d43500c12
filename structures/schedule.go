package structures

// ScheduleIntervals is one day of a weekly schedule: 48 half-hour slots
// starting at 00:00 (spec §3.5).
type ScheduleIntervals [48]bool

// ScheduleWeek is Sunday-first, 7 days of 48 half-hour slots each
// (spec §3.5, §4.2.5: 42 bytes = 7 days * 6 bytes * 8 bits).
type ScheduleWeek [7]ScheduleIntervals

// ScheduleRecord is one decoded per-schedule wire block (spec §4.2.5):
// index, a binary switch, an integer parameter record, and the 42-byte
// weekly bitmap.
type ScheduleRecord struct {
	Index     int
	Switch    bool
	Parameter ParameterRecord
	Week      ScheduleWeek
}

const scheduleBitmapBytes = 42

func (c *Cursor) decodeScheduleDay() (ScheduleIntervals, error) {
	var day ScheduleIntervals
	b, err := c.Bytes(6)
	if err != nil {
		return day, err
	}
	for i := 0; i < 48; i++ {
		byteIdx := i / 8
		// MSB-first within each byte.
		bitIdx := 7 - (i % 8)
		day[i] = b[byteIdx]&(1<<uint(bitIdx)) != 0
	}
	return day, nil
}

func (c *Cursor) decodeScheduleRecord(parameterWidth int) (ScheduleRecord, error) {
	idx, err := c.U8()
	if err != nil {
		return ScheduleRecord{}, err
	}
	sw, err := c.U8()
	if err != nil {
		return ScheduleRecord{}, err
	}
	param, err := c.decodeParameterRecord(parameterWidth)
	if err != nil {
		return ScheduleRecord{}, err
	}

	rec := ScheduleRecord{Index: int(idx), Switch: sw == 1, Parameter: param}
	for d := 0; d < 7; d++ {
		day, err := c.decodeScheduleDay()
		if err != nil {
			return rec, err
		}
		rec.Week[d] = day
	}
	return rec, nil
}

// DecodeScheduleResponse decodes every schedule block present in a
// RESPONSE_SCHEDULES-style body, looping until the message is exhausted.
// Each record is (1 + 1 + 3*parameterWidth + 42) bytes.
func DecodeScheduleResponse(message []byte, parameterWidth int) ([]ScheduleRecord, error) {
	c := NewCursor(message)
	recordLen := 1 + 1 + 3*parameterWidth + scheduleBitmapBytes
	var out []ScheduleRecord
	for c.Remaining() >= recordLen {
		rec, err := c.decodeScheduleRecord(parameterWidth)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeScheduleRecord decodes exactly one schedule record, used by
// REQUEST_SET_SCHEDULE round-tripping where the body is always a single
// record rather than the repeated list RESPONSE_SCHEDULES carries.
func DecodeScheduleRecord(message []byte, parameterWidth int) (ScheduleRecord, error) {
	c := NewCursor(message)
	return c.decodeScheduleRecord(parameterWidth)
}

// EncodeScheduleRequest is the write-side mirror used to build a
// REQUEST_SET_SCHEDULE payload (spec §4.4.2 step 5, "Schedule" case):
// the full {type, switch, parameter, schedule} snapshot.
func EncodeScheduleRequest(scheduleType uint8, sw bool, param ParameterRecord, week ScheduleWeek, parameterWidth int) []byte {
	buf := make([]byte, 0, 1+1+3*parameterWidth+scheduleBitmapBytes)
	buf = append(buf, scheduleType)
	if sw {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, encodeParameterRecord(param, parameterWidth)...)
	for _, day := range week {
		buf = append(buf, encodeScheduleDay(day)...)
	}
	return buf
}

func encodeParameterRecord(p ParameterRecord, width int) []byte {
	buf := make([]byte, 3*width)
	if p.Absent {
		for i := range buf {
			buf[i] = 0xFF
		}
		return buf
	}
	writeUintLE(buf[0*width:1*width], p.Value)
	writeUintLE(buf[1*width:2*width], p.Min)
	writeUintLE(buf[2*width:3*width], p.Max)
	return buf
}

func writeUintLE(b []byte, v uint32) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

func encodeScheduleDay(day ScheduleIntervals) []byte {
	b := make([]byte, 6)
	for i := 0; i < 48; i++ {
		if !day[i] {
			continue
		}
		byteIdx := i / 8
		bitIdx := 7 - (i % 8)
		b[byteIdx] |= 1 << uint(bitIdx)
	}
	return b
}

// SetOn marks every interval in [start, end] as on, where start/end are
// "HH:MM" strings on a 30-minute grid. It panics-free validates that start
// is before or equal to end (spec §8 property 12: "01:00" to "00:30" is
// invalid and must be rejected).
func (day *ScheduleIntervals) SetOn(start, end string) error {
	s, err := parseHalfHour(start)
	if err != nil {
		return err
	}
	e, err := parseHalfHour(end)
	if err != nil {
		return err
	}
	if e < s {
		return errInvalidScheduleRange
	}
	for i := s; i <= e; i++ {
		day[i] = true
	}
	return nil
}
