package structures

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// errInvalidScheduleRange reports a SetOn call whose end precedes its start
// (spec §8 property 12).
var errInvalidScheduleRange = errors.New("structures: schedule end precedes start")

// parseHalfHour turns an "HH:MM" string on the 30-minute grid into an
// interval index 0..47 (spec §3.5: Sunday-first, 30-minute intervals).
func parseHalfHour(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, errors.Errorf("structures: invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrapf(err, "structures: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrapf(err, "structures: invalid minute in %q", s)
	}
	if h < 0 || h > 23 || (m != 0 && m != 30) {
		return 0, errors.Errorf("structures: invalid time %q", s)
	}
	idx := h*2 + m/30
	if idx > 47 {
		return 0, errors.Errorf("structures: time %q out of range", s)
	}
	return idx, nil
}
