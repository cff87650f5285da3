// Package solver defines the boundary to the external power-flow
// engine: the session capability the engine must expose, the structured
// outcome of one solve, and the adapter that drives a session over a
// compiled circuit description.
package solver

import (
	"errors"
	"fmt"
)

// ErrSolveFailure is the sentinel for any engine invocation error
// (model rejected, crash, timeout). It is distinct from mere
// non-convergence, which is a legitimate outcome and not an error.
var ErrSolveFailure = errors.New("solve failed")

// BusState is one bus's solved voltage phasor.
type BusState struct {
	UID string
	Vm  float64 // magnitude, p.u.
	Va  float64 // angle, degrees
}

// BranchState is one branch's solved current against its rating.
type BranchState struct {
	UID          string
	Current      float64
	NormalRating float64
}

// Totals are the aggregate power-flow figures for a converged solve.
type Totals struct {
	Losses     float64
	Generation float64
	Load       float64
}

// Outcome is the structured result of one solve invocation. When
// Converged is false the per-element slices and totals carry no
// meaning and are left empty.
type Outcome struct {
	Converged bool
	Buses     []BusState
	Branches  []BranchState
	Totals    Totals
}

// Session is a handle on one engine instance. The engine is stateful:
// compiling a circuit description replaces whatever was loaded before
// (the description itself opens with a reset statement), and the read
// methods report on the most recent solve. Enumeration order of
// BusStates and BranchStates must be reproducible for identical inputs.
type Session interface {
	// Compile loads the circuit description at path into the engine.
	Compile(path string) error
	// Solve runs the power-flow iteration on the compiled circuit.
	Solve() error
	// Converged reports whether the last solve reached a stable solution.
	Converged() bool
	// BusStates returns per-bus voltage phasors from the last solve.
	BusStates() []BusState
	// BranchStates returns per-branch currents and ratings from the last solve.
	BranchStates() []BranchState
	// Totals returns aggregate losses, generation, and load.
	Totals() Totals
}

// Run compiles and solves the circuit description at scriptPath,
// translating the session's native result into an Outcome. Engine
// errors surface as ErrSolveFailure; they are never folded into a
// "no violations" result. Non-convergence yields an Outcome with
// Converged=false and no per-element data.
//
// Run blocks for the duration of the solve; callers needing timeouts
// must wrap the invocation externally.
func Run(session Session, scriptPath string) (*Outcome, error) {
	if err := session.Compile(scriptPath); err != nil {
		return nil, fmt.Errorf("%w: compile: %v", ErrSolveFailure, err)
	}
	if err := session.Solve(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolveFailure, err)
	}

	if !session.Converged() {
		return &Outcome{Converged: false}, nil
	}

	return &Outcome{
		Converged: true,
		Buses:     session.BusStates(),
		Branches:  session.BranchStates(),
		Totals:    session.Totals(),
	}, nil
}
