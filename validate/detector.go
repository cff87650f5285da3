package validate

import "github.com/Rojas-Binny/GridGen/solver"

// Detect scans a solve outcome against the voltage band and the
// per-branch thermal ratings.
//
// A non-converged outcome short-circuits: its raw voltage and current
// values are not physically meaningful, so both violation lists stay
// empty, the power-flow totals stay zero, and Success is false.
//
// Violations are appended in the outcome's own enumeration order; no
// sorting or deduplication is applied, so identical inputs yield
// identical results.
func Detect(out *solver.Outcome, band Band) *Result {
	res := &Result{
		Converged:         out.Converged,
		VoltageViolations: []VoltageViolation{},
		ThermalViolations: []ThermalViolation{},
	}
	if !out.Converged {
		return res
	}

	for _, b := range out.Buses {
		if !band.Contains(b.Vm) {
			res.VoltageViolations = append(res.VoltageViolations, VoltageViolation{
				Bus:     b.UID,
				Voltage: b.Vm,
				Limit:   band.String(),
			})
		}
	}

	for _, br := range out.Branches {
		// Strict excess only: a branch loaded exactly at its rating is
		// within limits.
		if br.Current > br.NormalRating {
			res.ThermalViolations = append(res.ThermalViolations, ThermalViolation{
				Branch:  br.UID,
				Current: br.Current,
				Limit:   br.NormalRating,
			})
		}
	}

	// Totals are reported even when the solve is converged-but-violating.
	res.PowerFlow = PowerFlow{
		TotalLosses:     out.Totals.Losses,
		TotalGeneration: out.Totals.Generation,
		TotalLoad:       out.Totals.Load,
	}

	res.Success = len(res.VoltageViolations) == 0 && len(res.ThermalViolations) == 0
	return res
}
