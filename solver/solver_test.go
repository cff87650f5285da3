package solver

import (
	"errors"
	"testing"
)

// fakeSession scripts a session's behavior for the Run adapter.
type fakeSession struct {
	compileErr error
	solveErr   error
	converged  bool
	buses      []BusState
	branches   []BranchState
	totals     Totals

	compiledPath string
	solveCalled  bool
}

func (f *fakeSession) Compile(path string) error {
	f.compiledPath = path
	return f.compileErr
}
func (f *fakeSession) Solve() error {
	f.solveCalled = true
	return f.solveErr
}
func (f *fakeSession) Converged() bool           { return f.converged }
func (f *fakeSession) BusStates() []BusState     { return f.buses }
func (f *fakeSession) BranchStates() []BranchState { return f.branches }
func (f *fakeSession) Totals() Totals            { return f.totals }

func TestRun_Converged(t *testing.T) {
	sess := &fakeSession{
		converged: true,
		buses:     []BusState{{UID: "Bus1", Vm: 1.0}},
		branches:  []BranchState{{UID: "Line1-2", Current: 120, NormalRating: 300}},
		totals:    Totals{Losses: 1.2, Generation: 100, Load: 98.8},
	}

	out, err := Run(sess, "/tmp/circuit.dss")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if sess.compiledPath != "/tmp/circuit.dss" {
		t.Errorf("compiled path = %q", sess.compiledPath)
	}
	if !sess.solveCalled {
		t.Error("Solve was never called")
	}
	if !out.Converged {
		t.Error("Converged = false, want true")
	}
	if len(out.Buses) != 1 || len(out.Branches) != 1 {
		t.Errorf("got %d buses, %d branches", len(out.Buses), len(out.Branches))
	}
	if out.Totals != sess.totals {
		t.Errorf("Totals = %+v, want %+v", out.Totals, sess.totals)
	}
}

func TestRun_NotConverged(t *testing.T) {
	sess := &fakeSession{
		converged: false,
		buses:     []BusState{{UID: "Bus1", Vm: 0.2}},
		branches:  []BranchState{{UID: "Line1-2", Current: 999, NormalRating: 300}},
	}

	out, err := Run(sess, "/tmp/circuit.dss")
	if err != nil {
		t.Fatalf("non-convergence must not be an error, got %v", err)
	}
	if out.Converged {
		t.Error("Converged = true, want false")
	}
	if len(out.Buses) != 0 || len(out.Branches) != 0 {
		t.Error("per-element data leaked out of an unconverged solve")
	}
}

func TestRun_CompileError(t *testing.T) {
	sess := &fakeSession{compileErr: errors.New("bad script")}

	out, err := Run(sess, "/tmp/circuit.dss")
	if out != nil {
		t.Errorf("got outcome %+v, want nil", out)
	}
	if !errors.Is(err, ErrSolveFailure) {
		t.Errorf("error %v does not match ErrSolveFailure", err)
	}
	if sess.solveCalled {
		t.Error("Solve called after Compile failed")
	}
}

func TestRun_SolveError(t *testing.T) {
	sess := &fakeSession{solveErr: errors.New("engine crashed")}

	_, err := Run(sess, "/tmp/circuit.dss")
	if !errors.Is(err, ErrSolveFailure) {
		t.Errorf("error %v does not match ErrSolveFailure", err)
	}
}
