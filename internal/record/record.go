// Package record assembles the flat JSON records sent downstream each poll
// cycle. The schema is a wire contract: required keys are always present,
// enrichment keys are entirely absent (never null) when the raw sample is
// missing them or their value does not parse.
package record

// Record is one outbound datagram payload. Pointer fields are enrichment:
// nil means "not reported this cycle" and the key is omitted from the JSON.
type Record struct {
	Source        string `json:"source"`
	Timestamp     int64  `json:"timestamp"`
	Host          string `json:"host"`
	Alive         int    `json:"alive"`
	ConditionCode int    `json:"condition_code"`
	OnMains       int    `json:"on_mains"`
	StatusText    string `json:"status_text"`
	Error         string `json:"error,omitempty"`

	BatteryCharging *int     `json:"battery_charging,omitempty"`
	BatteryPercent  *float64 `json:"battery_percent,omitempty"`
	RuntimeTotalSec *int     `json:"runtime_total_sec,omitempty"`
	RuntimeTotalMin *int     `json:"runtime_total_min,omitempty"`
	RuntimeMin      *int     `json:"runtime_min,omitempty"`
	RuntimeSec      *int     `json:"runtime_sec,omitempty"`
	LoadPercent     *float64 `json:"load_percent,omitempty"`
	InputVoltage    *float64 `json:"input_voltage,omitempty"`
	BatteryVoltage  *float64 `json:"battery_voltage,omitempty"`

	InputVoltageNominal   *float64 `json:"input_voltage_nominal,omitempty"`
	BatteryVoltageNominal *float64 `json:"battery_voltage_nominal,omitempty"`
	RealpowerNominal      *float64 `json:"realpower_nominal,omitempty"`
	LastTransferReason    string   `json:"last_transfer_reason,omitempty"`
	TestResult            string   `json:"ups_test_result,omitempty"`
	DeviceModel           string   `json:"device_model,omitempty"`
	DeviceSerial          string   `json:"device_serial,omitempty"`
	DriverVersion         string   `json:"driver_version,omitempty"`
}
