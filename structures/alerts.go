package structures

// AlertTimestamp is a device alert's From/To time, exploded from a raw
// seconds counter using the controller's own simplified calendar: every
// month is 31 days and every year is 12 such months, not the Gregorian
// calendar. Do not feed this into time.Date.
type AlertTimestamp struct {
	Year, Month, Day, Hour, Minute, Second int
}

var alertTimestampIntervals = []int{32140800, 2678400, 86400, 3600, 60, 1}

func decodeAlertTimestamp(seconds uint32) AlertTimestamp {
	s := int(seconds)
	values := make([]int, len(alertTimestampIntervals))
	for i, unit := range alertTimestampIntervals {
		values[i] = s / unit
		s -= values[i] * unit
	}
	return AlertTimestamp{
		Year:   values[0] + 2000,
		Month:  values[1] + 1,
		Day:    values[2] + 1,
		Hour:   values[3],
		Minute: values[4],
		Second: values[5],
	}
}

// Alert is one decoded device alert (spec §4.2, RESPONSE_ALERTS): a code,
// the time it started, and -- if the alert has since cleared -- the time
// it ended.
type Alert struct {
	Code int
	From AlertTimestamp
	To   *AlertTimestamp
}

func decodeAlert(c *Cursor) (Alert, error) {
	code, err := c.U8()
	if err != nil {
		return Alert{}, err
	}
	fromRaw, err := c.U32()
	if err != nil {
		return Alert{}, err
	}
	toRaw, err := c.U32()
	if err != nil {
		return Alert{}, err
	}

	a := Alert{Code: int(code), From: decodeAlertTimestamp(fromRaw)}
	if toRaw != 0xFFFFFFFF {
		t := decodeAlertTimestamp(toRaw)
		a.To = &t
	}
	return a, nil
}

func encodeAlertTimestamp(t AlertTimestamp) uint32 {
	seconds := (t.Year - 2000) * alertTimestampIntervals[0]
	seconds += (t.Month - 1) * alertTimestampIntervals[1]
	seconds += (t.Day - 1) * alertTimestampIntervals[2]
	seconds += t.Hour * alertTimestampIntervals[3]
	seconds += t.Minute * alertTimestampIntervals[4]
	seconds += t.Second
	return uint32(seconds)
}

// EncodeAlerts is the write-side mirror of DecodeAlerts, used to build a
// RESPONSE_ALERTS body for tests and device emulation. start is the index
// of the first alert in the device's full alert history.
func EncodeAlerts(alerts []Alert, start uint8) []byte {
	buf := make([]byte, 3, 3+len(alerts)*9)
	buf[1] = start
	buf[2] = byte(len(alerts))
	for _, a := range alerts {
		buf = append(buf, byte(a.Code))
		from := make([]byte, 4)
		putUint32LE(from, encodeAlertTimestamp(a.From))
		buf = append(buf, from...)
		to := make([]byte, 4)
		if a.To != nil {
			putUint32LE(to, encodeAlertTimestamp(*a.To))
		} else {
			for i := range to {
				to[i] = 0xFF
			}
		}
		buf = append(buf, to...)
	}
	return buf
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// DecodeAlerts decodes a RESPONSE_ALERTS body: reserved(1), start(1),
// count(1), then count fixed-size (9-byte) alert records.
func DecodeAlerts(message []byte) ([]Alert, error) {
	c := NewCursor(message)
	if _, err := c.U8(); err != nil { // reserved
		return nil, err
	}
	start, err := c.U8()
	if err != nil {
		return nil, err
	}
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	_ = start // start index, informational: alerts are appended in wire order

	out := make([]Alert, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := decodeAlert(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
