package grid

import (
	"errors"
	"strings"
	"testing"
)

func validScenario(t *testing.T) *Scenario {
	t.Helper()
	s, err := LoadScenario(strings.NewReader(sampleScenarioJSON))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	return s
}

func TestNormalize(t *testing.T) {
	s := validScenario(t)

	m, err := Normalize(s)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if m.ScenarioID != "scn-1" || m.BaseMVA != 100 {
		t.Errorf("header = (%q, %g), want (scn-1, 100)", m.ScenarioID, m.BaseMVA)
	}
	if len(m.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(m.Branches))
	}
	if m.Branches[0].Kind != Line || m.Branches[1].Kind != Transformer {
		t.Error("branches not ordered lines first, transformers second")
	}
	if len(m.Producers) != 1 || len(m.Consumers) != 1 {
		t.Errorf("got %d producers, %d consumers, want 1 each", len(m.Producers), len(m.Consumers))
	}

	b, ok := m.Bus("Bus2")
	if !ok || b.Vm != 0.98 {
		t.Errorf("Bus lookup = (%+v, %v), want Bus2 with vm 0.98", b, ok)
	}
	if m.HasBus("Bus99") {
		t.Error("HasBus reported a bus that does not exist")
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scenario)
		want   string // substring of the error message
	}{
		{
			name:   "no buses",
			mutate: func(s *Scenario) { s.Buses = nil },
			want:   "no buses",
		},
		{
			name:   "empty bus uid",
			mutate: func(s *Scenario) { s.Buses[0].UID = "" },
			want:   "missing uid",
		},
		{
			name:   "duplicate bus uid",
			mutate: func(s *Scenario) { s.Buses[1].UID = s.Buses[0].UID },
			want:   "duplicate uid",
		},
		{
			name:   "line with identical endpoints",
			mutate: func(s *Scenario) { s.Lines[0].ToBus = s.Lines[0].FromBus },
			want:   "fr_bus and to_bus",
		},
		{
			name:   "line dangling fr_bus",
			mutate: func(s *Scenario) { s.Lines[0].FromBus = "Nowhere" },
			want:   `unknown bus "Nowhere"`,
		},
		{
			name:   "transformer dangling to_bus",
			mutate: func(s *Scenario) { s.Transformers[0].ToBus = "Nowhere" },
			want:   `unknown bus "Nowhere"`,
		},
		{
			name:   "duplicate branch uid across kinds",
			mutate: func(s *Scenario) { s.Transformers[0].UID = s.Lines[0].UID },
			want:   "duplicate uid",
		},
		{
			name:   "zero normal rating",
			mutate: func(s *Scenario) { s.Lines[0].RateNormal = 0 },
			want:   "mva_ub_nom",
		},
		{
			name:   "negative emergency rating",
			mutate: func(s *Scenario) { s.Lines[0].RateEmergency = -1 },
			want:   "mva_ub_em",
		},
		{
			name:   "device empty uid",
			mutate: func(s *Scenario) { s.Devices[0].UID = "" },
			want:   "missing uid",
		},
		{
			name:   "device duplicate uid",
			mutate: func(s *Scenario) { s.Devices[1].UID = s.Devices[0].UID },
			want:   "duplicate uid",
		},
		{
			name:   "device dangling bus",
			mutate: func(s *Scenario) { s.Devices[0].Bus = "Nowhere" },
			want:   `unknown bus "Nowhere"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario(t)
			tt.mutate(s)

			_, err := Normalize(s)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedScenario) {
				t.Errorf("error %v does not match ErrMalformedScenario", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNormalize_NilScenario(t *testing.T) {
	_, err := Normalize(nil)
	if !errors.Is(err, ErrMalformedScenario) {
		t.Errorf("Normalize(nil) = %v, want ErrMalformedScenario", err)
	}
}
