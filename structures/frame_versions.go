package structures

// FrameVersions maps a raw frame-type byte to the version last advertised
// for it by a device (spec §4.2.6). Keyed on the raw byte rather than
// frame.Type to keep this package independent of the frame package (frame
// depends on structures to decode payloads, not the other way around).
type FrameVersions map[uint8]uint16

// DecodeFrameVersions reads the frame-version table embedded at the start
// of sensor-data and regulator-data payloads: a 1-byte count, then that many
// (frame_type uint8, version uint16-LE) triples.
func (c *Cursor) DecodeFrameVersions() (FrameVersions, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	fv := make(FrameVersions, n)
	for i := 0; i < int(n); i++ {
		typ, err := c.U8()
		if err != nil {
			return nil, err
		}
		ver, err := c.U16()
		if err != nil {
			return nil, err
		}
		fv[typ] = ver
	}
	return fv, nil
}
