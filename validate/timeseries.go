package validate

import (
	"context"
	"fmt"
	"math"

	"github.com/Rojas-Binny/GridGen/grid"
)

// ValidateTimeSeries validates the base scenario across an ordered
// sequence of time offsets. Offsets need not be unique or monotonic;
// they are processed and reported exactly in the order given, and each
// step is validated independently (no caching across repeated offsets).
//
// Each step derives a fresh scenario value from the base: producer
// active-power setpoints scale by 1 + 0.1·sin(t) and consumer setpoints
// by 1 + 0.1·cos(t), a simple stand-in for diurnal variation. The base
// scenario is never mutated.
//
// A failing step aborts the whole call: the caller receives the error
// and no partial results.
func (v *Validator) ValidateTimeSeries(ctx context.Context, base *grid.Scenario, offsets []float64) (*TimeSeriesResult, error) {
	res := &TimeSeriesResult{
		Success:           true,
		Steps:             make([]Step, 0, len(offsets)),
		VoltageViolations: []TimedVoltageViolation{},
		ThermalViolations: []TimedThermalViolation{},
	}

	for _, t := range offsets {
		stepResult, err := v.Validate(ctx, scenarioAtOffset(base, t))
		if err != nil {
			return nil, fmt.Errorf("time step %g: %w", t, err)
		}

		res.Steps = append(res.Steps, Step{
			Time:      t,
			Success:   stepResult.Success,
			Converged: stepResult.Converged,
		})
		if !stepResult.Success {
			res.Success = false
		}

		for _, vv := range stepResult.VoltageViolations {
			res.VoltageViolations = append(res.VoltageViolations, TimedVoltageViolation{
				VoltageViolation: vv,
				Time:             t,
			})
		}
		for _, tv := range stepResult.ThermalViolations {
			res.ThermalViolations = append(res.ThermalViolations, TimedThermalViolation{
				ThermalViolation: tv,
				Time:             t,
			})
		}
	}

	return res, nil
}

// scenarioAtOffset builds the perturbed scenario for one time offset as
// a pure value; the base and its slices are left untouched.
func scenarioAtOffset(base *grid.Scenario, t float64) *grid.Scenario {
	s := base.Clone()
	for i := range s.Devices {
		switch s.Devices[i].Kind {
		case grid.Producer:
			s.Devices[i].P *= 1 + 0.1*math.Sin(t)
		case grid.Consumer:
			s.Devices[i].P *= 1 + 0.1*math.Cos(t)
		}
	}
	return s
}
