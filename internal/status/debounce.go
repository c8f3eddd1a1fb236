package status

import "strings"

// DefaultReplaceBatteryCycles is the number of consecutive polls the
// replace-battery flag must persist before it is allowed to escalate
// severity.
const DefaultReplaceBatteryCycles = 12

// Debouncer suppresses transient replace-battery flags. Some UPS models
// raise RB for a single poll during calibration or right after a power
// event; the flag is only honored once it has persisted for a configured
// number of consecutive cycles, and (optionally) never while a battery
// self-test is running, since self-tests routinely trip it.
//
// The counter is owned by the poll loop and mutated once per cycle; it is
// never persisted, so every process start begins at zero.
type Debouncer struct {
	threshold      int
	ignoreSelfTest bool
	count          int
}

// NewDebouncer returns a Debouncer requiring the flag to persist for
// threshold consecutive cycles. A threshold < 1 is treated as 1 (honor
// immediately). When ignoreSelfTest is true the flag is discounted entirely
// while a self-test is active.
func NewDebouncer(threshold int, ignoreSelfTest bool) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{threshold: threshold, ignoreSelfTest: ignoreSelfTest}
}

// Observe feeds one poll cycle's raw status into the debouncer and returns
// the effective status to classify: identical to raw once the flag has
// persisted long enough, otherwise raw with the replace-battery tokens
// stripped so classification falls through to the next severity.
func (d *Debouncer) Observe(raw string, selfTestActive bool) string {
	triggered := HasReplaceBatteryFlag(raw)
	suppressed := d.ignoreSelfTest && selfTestActive

	if triggered && !suppressed {
		d.count++
	} else {
		d.count = 0
	}

	if triggered && (suppressed || d.count < d.threshold) {
		return StripReplaceBatteryFlags(raw)
	}
	return raw
}

// Count returns the current consecutive-trigger count. Read-only outside
// the poll loop.
func (d *Debouncer) Count() int {
	return d.count
}

// SelfTestActive reports whether a UPS self-test appears to be running,
// based on the free-text ups.test.result value. This is a best-effort
// substring heuristic: NUT drivers report something like "In progress"
// while a test runs. The idle string "No test initiated" must not match,
// which is why only the progress wording is tested.
func SelfTestActive(testResult string) bool {
	return strings.Contains(strings.ToUpper(testResult), "IN PROGRESS")
}
