// Package validate interprets solve outcomes against steady-state
// operating limits and orchestrates the scenario validation pipeline,
// for a single scenario and across a sequence of time offsets.
package validate

import "fmt"

// Band is the allowed per-unit voltage magnitude range.
type Band struct {
	Min float64
	Max float64
}

// DefaultBand is the fixed 0.95-1.05 p.u. operating band.
func DefaultBand() Band {
	return Band{Min: 0.95, Max: 1.05}
}

// Contains reports whether the magnitude sits inside the band,
// boundaries included.
func (b Band) Contains(vm float64) bool {
	return vm >= b.Min && vm <= b.Max
}

// String renders the band the way violations report it, e.g.
// "0.95-1.05 p.u.".
func (b Band) String() string {
	return fmt.Sprintf("%.2f-%.2f p.u.", b.Min, b.Max)
}

// VoltageViolation records a bus whose solved voltage magnitude fell
// outside the operating band.
type VoltageViolation struct {
	Bus     string  `json:"bus"`
	Voltage float64 `json:"voltage"`
	Limit   string  `json:"limit"`
}

// ThermalViolation records a branch whose solved current strictly
// exceeded its normal thermal rating.
type ThermalViolation struct {
	Branch  string  `json:"branch"`
	Current float64 `json:"current"`
	Limit   float64 `json:"limit"`
}

// PowerFlow carries the aggregate totals of a converged solve.
type PowerFlow struct {
	TotalLosses     float64 `json:"total_losses"`
	TotalGeneration float64 `json:"total_generation"`
	TotalLoad       float64 `json:"total_load"`
}

// Result is the outcome of validating one scenario. Immutable after
// construction.
type Result struct {
	Success           bool               `json:"success"`
	Converged         bool               `json:"convergence"`
	VoltageViolations []VoltageViolation `json:"voltage_violations"`
	ThermalViolations []ThermalViolation `json:"thermal_violations"`
	PowerFlow         PowerFlow          `json:"power_flow"`
}

// Step is one entry in a time-series timeline.
type Step struct {
	Time      float64 `json:"time"`
	Success   bool    `json:"success"`
	Converged bool    `json:"convergence"`
}

// TimedVoltageViolation tags a voltage violation with the time offset
// of the step that produced it.
type TimedVoltageViolation struct {
	VoltageViolation
	Time float64 `json:"time"`
}

// TimedThermalViolation tags a thermal violation with the time offset
// of the step that produced it.
type TimedThermalViolation struct {
	ThermalViolation
	Time float64 `json:"time"`
}

// TimeSeriesResult accumulates per-step outcomes and the union of all
// violations across a time-series validation, in step order.
type TimeSeriesResult struct {
	Success           bool                    `json:"success"`
	Steps             []Step                  `json:"time_steps"`
	VoltageViolations []TimedVoltageViolation `json:"voltage_violations"`
	ThermalViolations []TimedThermalViolation `json:"thermal_violations"`
}
