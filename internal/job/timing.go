package job

import (
	"math"
	"math/bits"
	"time"
)

// scaleShift is the number of fractional bits in a time scale.
const scaleShift = 16

// scaleOne is a time scale of 1.0.
const scaleOne uint64 = 1 << scaleShift

// SetTimeScale sets the job's local time scale. Negative values clamp to 0,
// which freezes the job and everything below it.
func (j *Job) SetTimeScale(s float64) {
	if s <= 0 || math.IsNaN(s) {
		j.timeScale = 0
		return
	}
	j.timeScale = uint64(math.Round(s * float64(scaleOne)))
}

// TimeScale returns the job's local time scale.
func (j *Job) TimeScale() float64 {
	return float64(j.timeScale) / float64(scaleOne)
}

// GlobalTimeScale returns the product of the local scales from the root to j.
func (j *Job) GlobalTimeScale() float64 {
	return float64(j.globalScale()) / float64(scaleOne)
}

// globalScale composes the scales top-down so the fixed-point rounding is
// the same no matter which job asks.
func (j *Job) globalScale() uint64 {
	if j.parent == nil {
		return j.timeScale
	}
	return mulScale(j.parent.globalScale(), j.timeScale)
}

// SetDurationLimits bounds the length of a single tick. min is the shortest
// tick the job will run; it waits until it has accumulated that much. max is
// the longest; a longer cycle is split across ticks or dropped. Zero means
// unbounded. A min above a non-zero max is lowered to max.
func (j *Job) SetDurationLimits(min, max time.Duration) {
	if min < 0 {
		min = 0
	}
	if max < 0 {
		max = 0
	}
	if max > 0 && min > max {
		min = max
	}
	j.minDuration = min
	j.maxDuration = max
}

// DurationLimits returns the min and max tick durations.
func (j *Job) DurationLimits() (min, max time.Duration) {
	return j.minDuration, j.maxDuration
}

// SetTickRateLimits is SetDurationLimits expressed in ticks per second. The
// highest rate sets the shortest tick and the lowest rate the longest.
// minHz <= 0 and maxHz = +Inf mean unbounded.
func (j *Job) SetTickRateLimits(minHz, maxHz float64) {
	j.SetDurationLimits(hzToDuration(maxHz), hzToDuration(minHz))
}

// TickRateLimits returns the lowest and highest tick rates in Hz. An
// unbounded lowest rate is 0 and an unbounded highest rate is +Inf.
func (j *Job) TickRateLimits() (minHz, maxHz float64) {
	return durationToHz(j.maxDuration, 0), durationToHz(j.minDuration, math.Inf(1))
}

// SetMaxTicksPerCycle caps how many catch-up ticks one Cycle may run.
// Values below 1 are raised to 1.
func (j *Job) SetMaxTicksPerCycle(n int) {
	if n < 1 {
		n = 1
	}
	j.maxTicksPerCycle = n
}

// MaxTicksPerCycle returns the catch-up tick cap.
func (j *Job) MaxTicksPerCycle() int {
	return j.maxTicksPerCycle
}

// Accumulated returns time received but not yet consumed by a tick.
func (j *Job) Accumulated() time.Duration {
	return j.accumulated
}

// HzToDuration converts a tick rate to the matching tick duration. Zero,
// negative and infinite rates map to the unbounded duration 0.
func HzToDuration(hz float64) time.Duration {
	return hzToDuration(hz)
}

func hzToDuration(hz float64) time.Duration {
	if hz <= 0 || math.IsInf(hz, 0) || math.IsNaN(hz) {
		return 0
	}
	return time.Duration(float64(time.Second) / hz)
}

func durationToHz(d time.Duration, unbounded float64) float64 {
	if d <= 0 {
		return unbounded
	}
	return float64(time.Second) / float64(d)
}

// scaleDuration multiplies d by a 16.16 scale using a 128-bit intermediate
// so long durations do not overflow before the shift.
func scaleDuration(d time.Duration, scale uint64) time.Duration {
	if d <= 0 || scale == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(d), scale)
	if hi>>scaleShift != 0 {
		return math.MaxInt64
	}
	v := hi<<(64-scaleShift) | lo>>scaleShift
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(v)
}

// unscaleDuration is the inverse of scaleDuration.
func unscaleDuration(d time.Duration, scale uint64) time.Duration {
	if d <= 0 || scale == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(d), scaleOne)
	if hi >= scale {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, scale)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(q)
}

func mulScale(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return hi<<(64-scaleShift) | lo>>scaleShift
}
