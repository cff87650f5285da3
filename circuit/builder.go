// Package circuit renders a normalized grid model into the ordered
// element statements consumed by the power-flow engine, staged through
// a disposable script file scoped to a single solve.
package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rojas-Binny/GridGen/grid"
)

// Settings are the global solve settings emitted ahead of any circuit
// element.
type Settings struct {
	BaseFrequency        float64
	VoltageBases         []float64
	MaxIterations        int
	MaxControlIterations int
}

// DefaultSettings mirrors the engine defaults for a transmission-plus-
// distribution study: 60 Hz, 115/12.47 kV bases, 100-iteration caps.
func DefaultSettings() Settings {
	return Settings{
		BaseFrequency:        60,
		VoltageBases:         []float64{115, 12.47},
		MaxIterations:        100,
		MaxControlIterations: 100,
	}
}

// Statements renders the model into engine statements in the fixed
// order the solve contract requires: circuit reset, global settings,
// buses, branches (lines then transformers), producers, consumers.
// Buses are always declared before any branch or device that references
// them; the output is byte-identical across calls for the same input.
func Statements(m *grid.Model, set Settings) []string {
	out := make([]string, 0, 6+len(m.Buses)+len(m.Branches)+len(m.Producers)+len(m.Consumers))

	out = append(out,
		"Clear",
		"New Circuit.Scenario",
		fmt.Sprintf("Set DefaultBaseFrequency=%s", ftoa(set.BaseFrequency)),
		fmt.Sprintf("Set VoltageBases=[%s]", joinFloats(set.VoltageBases)),
		fmt.Sprintf("Set MaxControlIterations=%d", set.MaxControlIterations),
		fmt.Sprintf("Set MaxIterations=%d", set.MaxIterations),
	)

	for _, b := range m.Buses {
		out = append(out, fmt.Sprintf("New Bus.%s BasekV=%s kV=%s Angle=%s",
			b.UID, ftoa(b.BaseKV), ftoa(b.Vm), ftoa(b.Va)))
	}

	for _, br := range m.Branches {
		class := "Line"
		if br.Kind == grid.Transformer {
			class = "Transformer"
		}
		out = append(out, fmt.Sprintf("New %s.%s Bus1=%s Bus2=%s R1=%s X1=%s B1=%s NormAmps=%s EmergAmps=%s",
			class, br.UID, br.FromBus, br.ToBus,
			ftoa(br.R), ftoa(br.X), ftoa(br.B),
			ftoa(br.RateNormal), ftoa(br.RateEmergency)))
	}

	for _, d := range m.Producers {
		out = append(out, fmt.Sprintf("New Generator.%s Bus1=%s kW=%s kvar=%s",
			d.UID, d.Bus, ftoa(d.P), ftoa(d.Q)))
	}

	for _, d := range m.Consumers {
		out = append(out, fmt.Sprintf("New Load.%s Bus1=%s kW=%s kvar=%s",
			d.UID, d.Bus, ftoa(d.P), ftoa(d.Q)))
	}

	return out
}

// Build writes the rendered statements to a fresh temporary script file
// and returns the handle. The caller owns the script and must Close it
// on every exit path; Close removes the file.
func Build(m *grid.Model, set Settings) (*Script, error) {
	return newScript(Statements(m, set))
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinFloats(vs []float64) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, ftoa(v))
	}
	return strings.Join(parts, ", ")
}
