// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import (
	"context"
	"math"
	"reflect"
	"sync"
	"time"
)

// Filter wraps a Callback with the behavior of one of the composable
// subscriber filters in spec §4.4.4. Filters compose by nesting:
// OnChange(Debounce(3, cb)).
type Filter func(Callback) Callback

const numberTolerance = 0.1

func valuesEqual(a, b any) bool {
	if pa, ok := a.(Parameter); ok {
		pb, ok := b.(Parameter)
		if !ok {
			return false
		}
		va, mina, maxa := pa.Values()
		vb, minb, maxb := pb.Values()
		return va == vb && mina == minb && maxa == maxb
	}

	fa, aIsNum := toFloat(a)
	fb, bIsNum := toFloat(b)
	if aIsNum && bIsNum {
		return math.Abs(fa-fb) <= numberTolerance
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// OnChange suppresses calls to next unless value has changed significantly
// from the previous call (spec §4.4.4 tolerance rules).
func OnChange(next Callback) Callback {
	var (
		mu   sync.Mutex
		have bool
		prev any
	)
	return func(ctx context.Context, value any) (any, error) {
		mu.Lock()
		changed := !have || !valuesEqual(prev, value)
		have = true
		prev = value
		mu.Unlock()

		if !changed {
			return value, nil
		}
		return next(ctx, value)
	}
}

// Debounce calls next only once every minCalls invocations (the intervening
// calls are swallowed but still update the pass-through value).
func Debounce(minCalls int, next Callback) Callback {
	if minCalls < 1 {
		minCalls = 1
	}
	var (
		mu    sync.Mutex
		count int
	)
	return func(ctx context.Context, value any) (any, error) {
		mu.Lock()
		count++
		fire := count >= minCalls
		if fire {
			count = 0
		}
		mu.Unlock()

		if !fire {
			return value, nil
		}
		return next(ctx, value)
	}
}

// Throttle calls next at most once per interval; calls within the window
// are swallowed.
func Throttle(interval time.Duration, next Callback) Callback {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func(ctx context.Context, value any) (any, error) {
		mu.Lock()
		now := time.Now()
		due := now.Sub(last) >= interval
		if due {
			last = now
		}
		mu.Unlock()

		if !due {
			return value, nil
		}
		return next(ctx, value)
	}
}

// Delta replaces each value with the difference from the previous one: for
// []any slices, the elements of the new slice that the previous one does
// not contain; for numeric types, arithmetic subtraction. Other values are
// forwarded unchanged. The first call is swallowed (there is no previous
// value to diff against).
func Delta(next Callback) Callback {
	var (
		mu   sync.Mutex
		have bool
		prev any
	)
	return func(ctx context.Context, value any) (any, error) {
		mu.Lock()
		p := prev
		hadPrev := have
		prev = value
		have = true
		mu.Unlock()

		if !hadPrev {
			return value, nil
		}

		if fa, ok := toFloat(value); ok {
			if fb, ok := toFloat(p); ok {
				return next(ctx, fa-fb)
			}
		}
		if listA, ok := value.([]any); ok {
			if listB, ok := p.([]any); ok {
				return next(ctx, diffLists(listA, listB))
			}
		}
		return next(ctx, value)
	}
}

func diffLists(a, b []any) []any {
	diff := make([]any, 0, len(a))
	seen := make(map[any]bool, len(b))
	for _, v := range b {
		seen[v] = true
	}
	for _, v := range a {
		if !seen[v] {
			diff = append(diff, v)
		}
	}
	return diff
}

// Aggregate sums numeric values observed within a window bounded by
// sampleSize or by elapsed time, then forwards the sum; non-numeric input
// is rejected with an error.
func Aggregate(window time.Duration, sampleSize int, next Callback) Callback {
	var (
		mu      sync.Mutex
		sum     float64
		samples int
		start   time.Time
	)
	return func(ctx context.Context, value any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return nil, errAggregateNonNumeric
		}

		mu.Lock()
		if samples == 0 {
			start = time.Now()
		}
		sum += f
		samples++
		flush := samples >= sampleSize || time.Since(start) >= window
		var out float64
		if flush {
			out = sum
			sum = 0
			samples = 0
		}
		mu.Unlock()

		if !flush {
			return value, nil
		}
		return next(ctx, out)
	}
}

var errAggregateNonNumeric = callbackError("device: aggregate filter requires a numeric value")

type callbackError string

func (e callbackError) Error() string { return string(e) }

// Custom calls next only when predicate(value) is true.
func Custom(predicate func(any) bool, next Callback) Callback {
	return func(ctx context.Context, value any) (any, error) {
		if !predicate(value) {
			return value, nil
		}
		return next(ctx, value)
	}
}

// Clamp restricts a numeric value to [min, max] before forwarding.
func Clamp(min, max float64, next Callback) Callback {
	return func(ctx context.Context, value any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return next(ctx, value)
		}
		if f < min {
			f = min
		}
		if f > max {
			f = max
		}
		return next(ctx, f)
	}
}

// Deadband suppresses calls where the value stays within tolerance of the
// last forwarded value.
func Deadband(tolerance float64, next Callback) Callback {
	var (
		mu   sync.Mutex
		have bool
		prev float64
	)
	return func(ctx context.Context, value any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return next(ctx, value)
		}

		mu.Lock()
		forward := !have || math.Abs(f-prev) > tolerance
		if forward {
			prev = f
			have = true
		}
		mu.Unlock()

		if !forward {
			return value, nil
		}
		return next(ctx, value)
	}
}
