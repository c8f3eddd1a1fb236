package record

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutbridge/nut-udp-bridge/internal/status"
)

func testBuilder() *Builder {
	b := NewBuilder("nas-01")
	b.now = func() time.Time { return time.Unix(1700000000, 0) }
	return b
}

func TestAlive_FullEnrichment(t *testing.T) {
	sample := map[string]string{
		"ups.status":              "OL CHRG",
		"battery.charge":          "90",
		"battery.runtime":         "125",
		"ups.load":                "8",
		"input.voltage":           "241",
		"battery.voltage":         "24",
		"input.voltage.nominal":   "230",
		"battery.voltage.nominal": "24",
		"ups.realpower.nominal":   "900",
		"input.transfer.reason":   "input voltage out of range",
		"ups.test.result":         "Done and passed",
		"device.model":            "CP1500EPFCLCD",
		"device.serial":           "CRXKS2000211",
		"driver.version":          "2.8.1",
	}

	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.Charging, sample)

	assert.Equal(t, "ups", rec.Source)
	assert.Equal(t, int64(1700000000), rec.Timestamp)
	assert.Equal(t, "nas-01", rec.Host)
	assert.Equal(t, 1, rec.Alive)
	assert.Equal(t, 1, rec.ConditionCode)
	assert.Equal(t, 1, rec.OnMains)
	assert.Equal(t, "online", rec.StatusText)
	assert.Empty(t, rec.Error)

	require.NotNil(t, rec.BatteryCharging)
	assert.Equal(t, 1, *rec.BatteryCharging)
	require.NotNil(t, rec.BatteryPercent)
	assert.Equal(t, 90.0, *rec.BatteryPercent)
	require.NotNil(t, rec.LoadPercent)
	assert.Equal(t, 8.0, *rec.LoadPercent)
	require.NotNil(t, rec.InputVoltage)
	assert.Equal(t, 241.0, *rec.InputVoltage)
	assert.Equal(t, "CP1500EPFCLCD", rec.DeviceModel)
	assert.Equal(t, "CRXKS2000211", rec.DeviceSerial)
	assert.Equal(t, "2.8.1", rec.DriverVersion)
	assert.Equal(t, "Done and passed", rec.TestResult)
}

func TestAlive_RuntimeDerivation(t *testing.T) {
	// 125 seconds: ceiling 3 minutes, floor 2 minutes, 5 seconds remainder.
	sample := map[string]string{"battery.runtime": "125"}
	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.ChargeUnset, sample)

	require.NotNil(t, rec.RuntimeTotalSec)
	assert.Equal(t, 125, *rec.RuntimeTotalSec)
	require.NotNil(t, rec.RuntimeTotalMin)
	assert.Equal(t, 3, *rec.RuntimeTotalMin)
	require.NotNil(t, rec.RuntimeMin)
	assert.Equal(t, 2, *rec.RuntimeMin)
	require.NotNil(t, rec.RuntimeSec)
	assert.Equal(t, 5, *rec.RuntimeSec)
}

func TestAlive_RuntimeExactMinute(t *testing.T) {
	sample := map[string]string{"battery.runtime": "120"}
	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.ChargeUnset, sample)

	require.NotNil(t, rec.RuntimeTotalMin)
	assert.Equal(t, 2, *rec.RuntimeTotalMin)
	assert.Equal(t, 2, *rec.RuntimeMin)
	assert.Equal(t, 0, *rec.RuntimeSec)
}

func TestAlive_OmitsMissingAndUnparseable(t *testing.T) {
	sample := map[string]string{
		"battery.charge": "not-a-number",
		"ups.load":       "",
	}
	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.ChargeUnset, sample)

	assert.Nil(t, rec.BatteryPercent, "unparseable value must be absent, not zero")
	assert.Nil(t, rec.LoadPercent)
	assert.Nil(t, rec.RuntimeTotalSec)
	assert.Nil(t, rec.InputVoltage)
	assert.Nil(t, rec.BatteryCharging, "unset charge state must be absent")

	// The wire payload must not carry the keys at all.
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "battery_percent")
	assert.NotContains(t, string(data), "battery_charging")
	assert.NotContains(t, string(data), "runtime_total_sec")
	assert.NotContains(t, string(data), "null")
}

func TestAlive_DischargingFlagIsZeroNotAbsent(t *testing.T) {
	rec := testBuilder().Alive(status.OnBattery, "On battery", status.OffMains, status.Discharging, map[string]string{})

	require.NotNil(t, rec.BatteryCharging)
	assert.Equal(t, 0, *rec.BatteryCharging)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"battery_charging":0`)
}

func TestAlive_LenientNumericParsing(t *testing.T) {
	sample := map[string]string{
		"battery.charge":  "90,5",     // comma decimal separator
		"input.voltage":   "230.4 V",  // trailing unit text
		"battery.runtime": "4890.00",  // decimal notation for an integer
		"ups.load":        "8 percent",
	}
	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.ChargeUnset, sample)

	require.NotNil(t, rec.BatteryPercent)
	assert.Equal(t, 90.5, *rec.BatteryPercent)
	require.NotNil(t, rec.InputVoltage)
	assert.Equal(t, 230.4, *rec.InputVoltage)
	require.NotNil(t, rec.RuntimeTotalSec)
	assert.Equal(t, 4890, *rec.RuntimeTotalSec)
	require.NotNil(t, rec.LoadPercent)
	assert.Equal(t, 8.0, *rec.LoadPercent)
}

func TestCommsError(t *testing.T) {
	rec := testBuilder().CommsError(errors.New("upsc timed out after 3s"))

	assert.Equal(t, 0, rec.Alive)
	assert.Equal(t, int(status.Unknown), rec.ConditionCode)
	assert.Equal(t, -1, rec.OnMains)
	assert.Equal(t, "unknown", rec.StatusText)
	assert.Equal(t, "upsc timed out after 3s", rec.Error)
	assert.Nil(t, rec.BatteryPercent)
}

func TestDead_CarriesLastKnownState(t *testing.T) {
	rec := testBuilder().Dead(status.OnBattery, "on battery")

	assert.Equal(t, 0, rec.Alive)
	assert.Equal(t, int(status.OnBattery), rec.ConditionCode)
	assert.Equal(t, -1, rec.OnMains)
	assert.Equal(t, "on battery", rec.StatusText)
	assert.Empty(t, rec.Error)
}

func TestRecord_WireShape(t *testing.T) {
	rec := testBuilder().Alive(status.Online, "Online", status.OnMains, status.Charging,
		map[string]string{"battery.charge": "90"})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "ups", decoded["source"])
	assert.Equal(t, float64(1), decoded["alive"])
	assert.Equal(t, float64(1), decoded["condition_code"])
	assert.Equal(t, float64(1), decoded["on_mains"])
	assert.Equal(t, float64(90), decoded["battery_percent"])
	assert.NotContains(t, decoded, "error")
	assert.NotContains(t, decoded, "load_percent")
}
