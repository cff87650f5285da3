package virtual

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rojas-Binny/GridGen/circuit"
	"github.com/Rojas-Binny/GridGen/grid"
	"github.com/Rojas-Binny/GridGen/solver"
)

func writeScript(t *testing.T, statements ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circuit.dss")
	if err := os.WriteFile(path, []byte(strings.Join(statements, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestSession_CompileAndSolve(t *testing.T) {
	path := writeScript(t,
		"Clear",
		"New Circuit.Scenario",
		"Set DefaultBaseFrequency=60",
		"New Bus.Bus1 BasekV=230 kV=1 Angle=0",
		"New Bus.Bus2 BasekV=230 kV=0.98 Angle=-2.5",
		"New Line.Line1-2 Bus1=Bus1 Bus2=Bus2 R1=0.01 X1=0.1 B1=0.02 NormAmps=300 EmergAmps=400",
		"New Generator.Gen1 Bus1=Bus1 kW=100 kvar=10",
		"New Load.Load1 Bus1=Bus2 kW=98 kvar=8",
	)

	sess := New()
	if err := sess.Compile(path); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := sess.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sess.Converged() {
		t.Fatal("Converged = false, want true")
	}

	buses := sess.BusStates()
	if len(buses) != 2 || buses[0].UID != "Bus1" || buses[1].UID != "Bus2" {
		t.Fatalf("bus states = %+v", buses)
	}
	if buses[1].Vm != 0.98 || buses[1].Va != -2.5 {
		t.Errorf("Bus2 phasor = (%g, %g), want (0.98, -2.5)", buses[1].Vm, buses[1].Va)
	}

	branches := sess.BranchStates()
	if len(branches) != 1 {
		t.Fatalf("branch states = %+v", branches)
	}
	wantCurrent := 98.0 / 0.98
	if math.Abs(branches[0].Current-wantCurrent) > 1e-9 {
		t.Errorf("branch current = %g, want %g", branches[0].Current, wantCurrent)
	}
	if branches[0].NormalRating != 300 {
		t.Errorf("branch rating = %g, want 300", branches[0].NormalRating)
	}

	tot := sess.Totals()
	if tot.Generation != 100 || tot.Load != 98 {
		t.Errorf("totals = %+v, want gen 100 load 98", tot)
	}
	wantLosses := wantCurrent * wantCurrent * 0.01
	if math.Abs(tot.Losses-wantLosses) > 1e-9 {
		t.Errorf("losses = %g, want %g", tot.Losses, wantLosses)
	}
}

func TestSession_NonConvergence(t *testing.T) {
	path := writeScript(t,
		"Clear",
		"New Circuit.Scenario",
		"New Bus.Bus1 BasekV=230 kV=0 Angle=0",
	)

	sess := New()
	if err := sess.Compile(path); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := sess.Solve(); err != nil {
		t.Fatalf("a zero-voltage operating point is non-convergence, not an error: %v", err)
	}
	if sess.Converged() {
		t.Error("Converged = true, want false")
	}
	if len(sess.BusStates()) != 0 || len(sess.BranchStates()) != 0 {
		t.Error("state reported for an unconverged solve")
	}
}

func TestSession_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		stmt string
	}{
		{"unknown statement", "Render everything"},
		{"unknown class", "New Widget.W1 kW=1"},
		{"missing attribute", "New Bus.Bus1 BasekV=230 Angle=0"},
		{"bad attribute value", "New Bus.Bus1 BasekV=230 kV=abc Angle=0"},
		{"bare attribute", "New Generator.Gen1 Bus1=Bus1 kW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, "Clear", tt.stmt)
			sess := New()
			if err := sess.Compile(path); err == nil {
				t.Errorf("Compile accepted %q", tt.stmt)
			}
		})
	}
}

func TestSession_SolveWithoutCompile(t *testing.T) {
	if err := New().Solve(); err == nil {
		t.Error("Solve without a compiled circuit must fail")
	}
}

func TestSession_UndeclaredBus(t *testing.T) {
	path := writeScript(t,
		"Clear",
		"New Bus.Bus1 BasekV=230 kV=1 Angle=0",
		"New Load.Load1 Bus1=Ghost kW=10 kvar=1",
	)

	sess := New()
	if err := sess.Compile(path); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := sess.Solve(); err == nil {
		t.Error("Solve accepted a device on an undeclared bus")
	}
}

// The session must accept exactly what the circuit builder emits.
func TestSession_RoundTripBuiltScript(t *testing.T) {
	s := &grid.Scenario{
		ID: "scn-rt",
		Buses: []grid.Bus{
			{UID: "Bus1", BaseKV: 230, Vm: 1.0},
			{UID: "Bus2", BaseKV: 230, Vm: 0.99, Va: -1},
		},
		Lines: []grid.Branch{
			{UID: "Line1-2", Kind: grid.Line, FromBus: "Bus1", ToBus: "Bus2",
				R: 0.01, X: 0.1, B: 0.02, RateNormal: 300, RateEmergency: 400},
		},
		Devices: []grid.Device{
			{UID: "Gen1", Bus: "Bus1", Kind: grid.Producer, P: 50, Q: 5},
			{UID: "Load1", Bus: "Bus2", Kind: grid.Consumer, P: 49, Q: 4},
		},
	}
	m, err := grid.Normalize(s)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	script, err := circuit.Build(m, circuit.DefaultSettings())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer script.Close()

	out, err := solver.Run(New(), script.Path())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Converged {
		t.Fatal("round-tripped solve did not converge")
	}
	if len(out.Buses) != 2 || len(out.Branches) != 1 {
		t.Errorf("got %d buses, %d branches", len(out.Buses), len(out.Branches))
	}
	if out.Totals.Generation != 50 || out.Totals.Load != 49 {
		t.Errorf("totals = %+v", out.Totals)
	}
}
