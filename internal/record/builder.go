package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/nutbridge/nut-udp-bridge/internal/status"
)

// SourceName is the fixed value of the "source" key in every record.
const SourceName = "ups"

// Builder produces Records stamped with a fixed host identity. The clock is
// injectable for tests and defaults to time.Now.
type Builder struct {
	host string
	now  func() time.Time
}

// NewBuilder returns a Builder reporting the given host name.
func NewBuilder(host string) *Builder {
	return &Builder{host: host, now: time.Now}
}

// Alive builds the full record for a successful poll cycle: classification
// results plus whatever enrichment fields the raw sample carries in
// parseable form.
func (b *Builder) Alive(cond status.Condition, label string, mains status.MainsState, charge status.ChargeState, sample map[string]string) *Record {
	rec := b.base(1, cond, label, mains)

	if charge != status.ChargeUnset {
		rec.BatteryCharging = intPtr(int(charge))
	}

	if v, ok := parseFloat(sample["battery.charge"]); ok {
		rec.BatteryPercent = &v
	}
	if rt, ok := parseInt(sample["battery.runtime"]); ok {
		rec.RuntimeTotalSec = intPtr(rt)
		rec.RuntimeTotalMin = intPtr((rt + 59) / 60)
		rec.RuntimeMin = intPtr(rt / 60)
		rec.RuntimeSec = intPtr(rt % 60)
	}
	if v, ok := parseFloat(sample["ups.load"]); ok {
		rec.LoadPercent = &v
	}
	if v, ok := parseFloat(sample["input.voltage"]); ok {
		rec.InputVoltage = &v
	}
	if v, ok := parseFloat(sample["battery.voltage"]); ok {
		rec.BatteryVoltage = &v
	}
	if v, ok := parseFloat(sample["input.voltage.nominal"]); ok {
		rec.InputVoltageNominal = &v
	}
	if v, ok := parseFloat(sample["battery.voltage.nominal"]); ok {
		rec.BatteryVoltageNominal = &v
	}
	if v, ok := parseFloat(sample["ups.realpower.nominal"]); ok {
		rec.RealpowerNominal = &v
	}

	rec.LastTransferReason = sample["input.transfer.reason"]
	rec.TestResult = sample["ups.test.result"]
	rec.DeviceModel = sample["device.model"]
	rec.DeviceSerial = sample["device.serial"]
	rec.DriverVersion = sample["driver.version"]

	return rec
}

// CommsError builds the alive=0 record for a failed poll cycle. The
// condition is Unknown because nothing fresh is known about the UPS.
func (b *Builder) CommsError(err error) *Record {
	rec := b.base(0, status.Unknown, status.Unknown.String(), status.MainsUnknown)
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// Dead builds the terminal record marking the bridge as no longer
// reporting, carrying the last known classification.
func (b *Builder) Dead(cond status.Condition, label string) *Record {
	return b.base(0, cond, label, status.MainsUnknown)
}

func (b *Builder) base(alive int, cond status.Condition, label string, mains status.MainsState) *Record {
	return &Record{
		Source:        SourceName,
		Timestamp:     b.now().Unix(),
		Host:          b.host,
		Alive:         alive,
		ConditionCode: int(cond),
		OnMains:       int(mains),
		StatusText:    strings.ToLower(strings.TrimSpace(label)),
	}
}

func intPtr(v int) *int { return &v }

// parseFloat parses a raw NUT value leniently: plain decimal first, then a
// retry that treats a comma as the decimal separator and drops trailing unit
// text (e.g. "230,4 V"). Failure reports ok=false; callers omit the field.
func parseFloat(v string) (float64, bool) {
	txt := strings.TrimSpace(v)
	if txt == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(txt, 64); err == nil {
		return f, true
	}
	fields := strings.Fields(strings.ReplaceAll(txt, ",", "."))
	if len(fields) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInt parses a raw NUT value as an integer, accepting decimal notation
// ("4890.00") by truncation and tolerating trailing unit text.
func parseInt(v string) (int, bool) {
	txt := strings.TrimSpace(v)
	if txt == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(txt, 64); err == nil {
		return int(f), true
	}
	fields := strings.Fields(txt)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}
