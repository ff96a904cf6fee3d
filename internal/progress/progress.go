// Package progress carries percent/message updates from the update pipeline
// to whoever renders them.
package progress

import "fmt"

// Event is one progress update. Percent is in [0, 100].
type Event struct {
	Percent int
	Message string
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%3d%% %s", e.Percent, e.Message)
}

// Func receives progress updates.
type Func func(percent int, message string)

// Nop discards updates.
func Nop(int, string) {}

// Clamp limits p to [0, 100].
func Clamp(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Bytes returns a progress callback for a download that maps bytes into the
// percent band [from, to]. It reports only when the integer percent moves,
// and reports nothing when the total size is unknown.
func Bytes(report Func, label string, from, to int) func(done, total int64) {
	last := -1
	return func(done, total int64) {
		if total <= 0 {
			return
		}
		frac := float64(done) / float64(total)
		if frac > 1 {
			frac = 1
		}
		p := from + int(float64(to-from)*frac)
		if p == last {
			return
		}
		last = p
		report(p, fmt.Sprintf("%s %.1f/%.1f MB", label, float64(done)/(1<<20), float64(total)/(1<<20)))
	}
}
