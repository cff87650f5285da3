package validate

import (
	"reflect"
	"testing"

	"github.com/Rojas-Binny/GridGen/solver"
)

func convergedOutcome() *solver.Outcome {
	return &solver.Outcome{
		Converged: true,
		Buses: []solver.BusState{
			{UID: "Bus1", Vm: 1.0},
			{UID: "Bus2", Vm: 0.98},
		},
		Branches: []solver.BranchState{
			{UID: "Line1-2", Current: 120, NormalRating: 300},
		},
		Totals: solver.Totals{Losses: 1.2, Generation: 100, Load: 98.8},
	}
}

func TestDetect_AllWithinLimits(t *testing.T) {
	res := Detect(convergedOutcome(), DefaultBand())

	if !res.Success {
		t.Error("Success = false, want true")
	}
	if !res.Converged {
		t.Error("Converged = false, want true")
	}
	if len(res.VoltageViolations) != 0 || len(res.ThermalViolations) != 0 {
		t.Errorf("violations reported for an in-band outcome: %+v", res)
	}
	if res.VoltageViolations == nil || res.ThermalViolations == nil {
		t.Error("violation slices must be empty, not nil")
	}
	want := PowerFlow{TotalLosses: 1.2, TotalGeneration: 100, TotalLoad: 98.8}
	if res.PowerFlow != want {
		t.Errorf("PowerFlow = %+v, want %+v", res.PowerFlow, want)
	}
}

func TestDetect_VoltageBand(t *testing.T) {
	tests := []struct {
		name     string
		vm       float64
		violates bool
	}{
		{"below band", 0.94, true},
		{"at lower boundary", 0.95, false},
		{"nominal", 1.0, false},
		{"at upper boundary", 1.05, false},
		{"above band", 1.06, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := convergedOutcome()
			out.Buses = []solver.BusState{{UID: "Bus1", Vm: tt.vm}}
			res := Detect(out, DefaultBand())

			if got := len(res.VoltageViolations) > 0; got != tt.violates {
				t.Fatalf("vm=%g: violation=%v, want %v", tt.vm, got, tt.violates)
			}
			if tt.violates {
				v := res.VoltageViolations[0]
				if v.Bus != "Bus1" || v.Voltage != tt.vm {
					t.Errorf("violation = %+v", v)
				}
				if v.Limit != "0.95-1.05 p.u." {
					t.Errorf("Limit = %q, want %q", v.Limit, "0.95-1.05 p.u.")
				}
				if res.Success {
					t.Error("Success = true despite a voltage violation")
				}
			}
		})
	}
}

func TestDetect_ThermalStrictExcess(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		violates bool
	}{
		{"well under rating", 200, false},
		{"exactly at rating", 300, false},
		{"just over rating", 300.001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := convergedOutcome()
			out.Branches = []solver.BranchState{{UID: "Line1-2", Current: tt.current, NormalRating: 300}}
			res := Detect(out, DefaultBand())

			if got := len(res.ThermalViolations) > 0; got != tt.violates {
				t.Fatalf("current=%g: violation=%v, want %v", tt.current, got, tt.violates)
			}
			if tt.violates {
				v := res.ThermalViolations[0]
				if v.Branch != "Line1-2" || v.Current != tt.current || v.Limit != 300 {
					t.Errorf("violation = %+v", v)
				}
			}
		})
	}
}

func TestDetect_NonConverged(t *testing.T) {
	out := &solver.Outcome{Converged: false}
	res := Detect(out, DefaultBand())

	if res.Success {
		t.Error("Success = true for a non-converged solve")
	}
	if res.Converged {
		t.Error("Converged = true, want false")
	}
	if len(res.VoltageViolations) != 0 || len(res.ThermalViolations) != 0 {
		t.Error("violations reported for a non-converged solve")
	}
	if res.VoltageViolations == nil || res.ThermalViolations == nil {
		t.Error("violation slices must be empty, not nil")
	}
	if (res.PowerFlow != PowerFlow{}) {
		t.Errorf("PowerFlow = %+v, want zero", res.PowerFlow)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	out := convergedOutcome()
	out.Buses = append(out.Buses, solver.BusState{UID: "Bus3", Vm: 1.1})
	out.Branches = append(out.Branches, solver.BranchState{UID: "Xfmr1", Current: 500, NormalRating: 250})

	first := Detect(out, DefaultBand())
	second := Detect(out, DefaultBand())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated detection diverged:\n%+v\nvs\n%+v", first, second)
	}
}

func TestBand_String(t *testing.T) {
	if got := DefaultBand().String(); got != "0.95-1.05 p.u." {
		t.Errorf("String() = %q", got)
	}
	if got := (Band{Min: 0.9, Max: 1.1}).String(); got != "0.90-1.10 p.u." {
		t.Errorf("String() = %q", got)
	}
}
