// Package clock maps analog-clock position labels to angles on a seal ring.
//
// A ring has 24 canonical ticks, 15° apart, named like a clock face in
// 30-minute steps: "12:00", "12:30", "1:00", … "11:30". Angles are measured
// in degrees clockwise from the 12 o'clock position, so "12:00" is 0°,
// "3:00" is 90° and "6:00" is 180°. The same convention drives token
// placement and the start of the circular text.
//
// Upstream layouts spell single-digit hours both padded and unpadded
// ("09:00" and "9:00"); both resolve to the same tick.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TickCount is the number of canonical positions on a ring.
const TickCount = 24

// TickStep is the angular distance between neighbouring ticks, in degrees.
const TickStep = 360.0 / TickCount

var (
	labels [TickCount]string
	angles = make(map[string]float64, TickCount)
)

func init() {
	for i := range TickCount {
		hour := i / 2
		if hour == 0 {
			hour = 12
		}
		minute := (i % 2) * 30
		label := fmt.Sprintf("%d:%02d", hour, minute)
		deg := float64(i) * TickStep
		labels[i] = label
		angles[label] = deg
	}
}

// Labels returns the 24 canonical labels in clockwise order from 12:00.
func Labels() []string {
	out := make([]string, TickCount)
	copy(out, labels[:])
	return out
}

// AngleFor returns the angle of label in degrees clockwise from 12 o'clock.
// It reports false for labels that are not one of the 24 canonical ticks.
func AngleFor(label string) (float64, bool) {
	canon, ok := Canonical(label)
	if !ok {
		return 0, false
	}
	return angles[canon], true
}

// digits reports whether s is made only of ASCII digits. strconv.Atoi alone
// would also accept a sign.
func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Canonical returns the unpadded canonical spelling of label ("09:30" → "9:30").
// "0:00" and "00:30" are accepted as 12 o'clock.
func Canonical(label string) (string, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(label), ":")
	if !ok || len(m) != 2 || h == "" || len(h) > 2 || !digits(h) || !digits(m) {
		return "", false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 12 {
		return "", false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || (minute != 0 && minute != 30) {
		return "", false
	}
	if hour == 0 {
		hour = 12
	}
	canon := fmt.Sprintf("%d:%02d", hour, minute)
	if _, ok := angles[canon]; !ok {
		return "", false
	}
	return canon, true
}

// LabelFor returns the canonical label at deg, which must be a multiple of
// [TickStep] (any number of full turns is allowed).
func LabelFor(deg float64) (string, bool) {
	steps := deg / TickStep
	idx := math.Round(steps)
	if math.Abs(steps-idx) > 1e-9 {
		return "", false
	}
	i := int(idx) % TickCount
	if i < 0 {
		i += TickCount
	}
	return labels[i], true
}

// Tick returns the index (0..23) of the tick at label.
func Tick(label string) (int, bool) {
	deg, ok := AngleFor(label)
	if !ok {
		return 0, false
	}
	return int(math.Round(deg / TickStep)), true
}

// Point converts a clock angle on a circle of radius r around (cx, cy) into
// screen coordinates, where y grows downward.
func Point(cx, cy, r, deg float64) (x, y float64) {
	theta := (deg - 90) * math.Pi / 180
	return cx + r*math.Cos(theta), cy + r*math.Sin(theta)
}
