// Package status normalizes free-text UPS status strings into a stable,
// severity-ordered schema. NUT drivers report status as a space-separated set
// of short uppercase flag tokens (e.g. "OL CHRG", "OB DISCHRG LB") whose exact
// vocabulary drifts between vendors, so matching is deliberately permissive:
// each condition is recognized by substring families rather than a closed
// token set.
package status

import "strings"

// Condition is the numeric severity code carried in every outbound record.
// Codes 6..1 are ordered highest-to-lowest severity; Unknown is 9 to stay
// out of the severity range.
type Condition int

const (
	ShutdownImminent Condition = 6
	Overload         Condition = 5
	ReplaceBattery   Condition = 4
	LowBattery       Condition = 3
	OnBattery        Condition = 2
	Online           Condition = 1
	Unknown          Condition = 9
)

// String returns the canonical human-readable label for the condition.
func (c Condition) String() string {
	switch c {
	case ShutdownImminent:
		return "Shutdown imminent"
	case Overload:
		return "Overload"
	case ReplaceBattery:
		return "Replace battery"
	case LowBattery:
		return "Low battery"
	case OnBattery:
		return "On battery"
	case Online:
		return "Online"
	default:
		return "unknown"
	}
}

// rule pairs a condition with the predicate that recognizes it. Rules are
// scanned top-down in strictly descending severity, so a status string
// carrying multiple flags always resolves to the most severe one.
type rule struct {
	cond  Condition
	match func(s string) bool
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var rules = []rule{
	{ShutdownImminent, func(s string) bool { return containsAny(s, "FSD", "SHUTDOWN") }},
	{Overload, func(s string) bool { return containsAny(s, "OVER") }},
	{ReplaceBattery, HasReplaceBatteryFlag},
	{LowBattery, func(s string) bool { return containsAny(s, "LB", "LOW") }},
	{OnBattery, func(s string) bool { return containsAny(s, "OB", "ONBATT", "ON BATTERY") }},
	{Online, func(s string) bool { return containsAny(s, "OL", "ONLINE") }},
}

// Classify maps a raw ups.status string to its condition code and label.
// It is a total function: empty or unrecognized input yields Unknown.
func Classify(raw string) (Condition, string) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Unknown, Unknown.String()
	}
	for _, r := range rules {
		if r.match(s) {
			return r.cond, r.cond.String()
		}
	}
	return Unknown, Unknown.String()
}

// MainsState is the simplified on-mains signal: 1 on mains power, 0 on
// battery, -1 when the status string matches neither family.
type MainsState int

const (
	MainsUnknown MainsState = -1
	OnMains      MainsState = 1
	OffMains     MainsState = 0
)

// ClassifyMains reports whether the UPS is drawing from mains or battery.
// The on-battery family is checked first so a string carrying both flags
// reports the more severe state.
func ClassifyMains(raw string) MainsState {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case containsAny(s, "OB", "ONBATT", "ON BATTERY"):
		return OffMains
	case containsAny(s, "OL", "ONLINE"):
		return OnMains
	default:
		return MainsUnknown
	}
}

// ChargeState reports whether the battery is charging. Unset means the
// status string carried neither indicator; the field is then omitted from
// the outbound record entirely.
type ChargeState int

const (
	ChargeUnset ChargeState = -1
	Discharging ChargeState = 0
	Charging    ChargeState = 1
)

// ClassifyCharge extracts the charging indicator from a raw status string.
// DISCHRG is tested before CHRG because the former contains the latter.
func ClassifyCharge(raw string) ChargeState {
	s := strings.ToUpper(raw)
	switch {
	case strings.Contains(s, "DISCHRG"):
		return Discharging
	case strings.Contains(s, "CHRG"):
		return Charging
	default:
		return ChargeUnset
	}
}

// HasReplaceBatteryFlag reports whether s (already uppercased by callers in
// this package; Classify uppercases for you) carries a replace-battery token.
// A token counts if it equals "RB" or contains "REPLACE".
func HasReplaceBatteryFlag(s string) bool {
	for _, tok := range strings.Fields(strings.ToUpper(s)) {
		if tok == "RB" || strings.Contains(tok, "REPLACE") {
			return true
		}
	}
	return false
}

// StripReplaceBatteryFlags returns s with replace-battery tokens removed,
// preserving the remaining tokens so classification falls through to the
// next applicable severity instead of Unknown.
func StripReplaceBatteryFlags(s string) string {
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(s) {
		up := strings.ToUpper(tok)
		if up == "RB" || strings.Contains(up, "REPLACE") {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
