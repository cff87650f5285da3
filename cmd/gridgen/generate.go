package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rojas-Binny/GridGen/grid"
)

// sampleSpec parameterizes one generated sample scenario. The set
// mirrors the fixtures used to exercise the validation pipeline: two
// healthy systems, one with out-of-band bus voltages, one with an
// undersized line.
type sampleSpec struct {
	id          string
	name        string
	description string

	buses     int
	producers int
	consumers int

	voltage        float64 // flat per-unit profile unless invalidVoltage
	invalidVoltage bool    // alternate buses at 0.92 / 1.07 p.u.
	lineCapacity   float64
	pGen           float64 // producer active-power setpoint, p.u.
	pLoad          float64 // consumer active-power setpoint, p.u.

	metadata map[string]string
}

var samples = []sampleSpec{
	{
		id:           "valid_balanced_system",
		name:         "Small Balanced System",
		description:  "A small, balanced 3-bus system with 2 generators and 1 load",
		buses:        3,
		producers:    2,
		consumers:    1,
		voltage:      1.0,
		lineCapacity: 300,
		pGen:         1.0,
		pLoad:        1.5,
		metadata: map[string]string{
			"reliability_level": "high",
			"congestion_level":  "low",
			"voltage_profile":   "flat",
		},
	},
	{
		id:           "valid_medium_system",
		name:         "Medium Balanced System",
		description:  "A medium-sized, balanced 4-bus system with 2 generators and 2 loads",
		buses:        4,
		producers:    2,
		consumers:    2,
		voltage:      1.0,
		lineCapacity: 300,
		pGen:         1.5,
		pLoad:        1.2,
		metadata: map[string]string{
			"reliability_level": "high",
			"congestion_level":  "low",
			"voltage_profile":   "flat",
		},
	},
	{
		id:             "invalid_voltage_violations",
		name:           "System with Voltage Violations",
		description:    "A 5-bus system with voltages outside the 0.95-1.05 p.u. band",
		buses:          5,
		producers:      1,
		consumers:      4,
		voltage:        1.0,
		invalidVoltage: true,
		lineCapacity:   300,
		pGen:           1.0,
		pLoad:          1.2,
		metadata: map[string]string{
			"reliability_level": "low",
			"congestion_level":  "high",
			"voltage_profile":   "irregular",
		},
	},
	{
		id:           "invalid_thermal_overload",
		name:         "System with Thermal Overload",
		description:  "A 3-bus system whose line ratings are below the load they carry",
		buses:        3,
		producers:    1,
		consumers:    2,
		voltage:      1.0,
		lineCapacity: 0.5,
		pGen:         2.0,
		pLoad:        1.5,
		metadata: map[string]string{
			"reliability_level": "low",
			"congestion_level":  "high",
			"voltage_profile":   "flat",
		},
	},
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	for _, sample := range samples {
		scenario := buildSample(sample)
		path := filepath.Join(dir, sample.id+".json")

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		if err := grid.EncodeScenario(f, scenario); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

// buildSample constructs a ring-topology scenario from the sample
// parameters:
// sequential buses joined by lines, producers on the first buses,
// consumers spread across the rest.
func buildSample(sample sampleSpec) *grid.Scenario {
	s := &grid.Scenario{
		ID:          sample.id,
		Name:        sample.name,
		Description: sample.description,
		BaseMVA:     100,
		Metadata:    sample.metadata,
	}

	for i := 0; i < sample.buses; i++ {
		vm := sample.voltage
		if sample.invalidVoltage && i > 0 {
			if i%2 == 0 {
				vm = 0.92
			} else {
				vm = 1.07
			}
		}
		s.Buses = append(s.Buses, grid.Bus{
			UID:    fmt.Sprintf("Bus%d", i+1),
			BaseKV: 230,
			Vm:     vm,
			Va:     0,
		})
	}

	// One line per bus; the last wraps back to Bus1 to close the ring.
	for i := 0; i < sample.buses; i++ {
		to := i + 2
		if to > sample.buses {
			to = 1
		}
		s.Lines = append(s.Lines, grid.Branch{
			UID:           fmt.Sprintf("Line%d-%d", i+1, to),
			Kind:          grid.Line,
			FromBus:       fmt.Sprintf("Bus%d", i+1),
			ToBus:         fmt.Sprintf("Bus%d", to),
			R:             0.01,
			X:             0.1,
			B:             0.02,
			RateNormal:    sample.lineCapacity,
			RateEmergency: sample.lineCapacity + 100,
		})
	}

	for i := 0; i < sample.producers; i++ {
		s.Devices = append(s.Devices, grid.Device{
			UID:  fmt.Sprintf("Gen%d", i+1),
			Bus:  fmt.Sprintf("Bus%d", i+1),
			Kind: grid.Producer,
			P:    sample.pGen,
			Q:    0.1,
			PMax: 1.5,
			PMin: 0.2,
		})
	}

	for i := 0; i < sample.consumers; i++ {
		bus := sample.producers + i + 1
		if bus > sample.buses {
			bus = sample.buses
		}
		s.Devices = append(s.Devices, grid.Device{
			UID:  fmt.Sprintf("Load%d", i+1),
			Bus:  fmt.Sprintf("Bus%d", bus),
			Kind: grid.Consumer,
			P:    sample.pLoad,
			Q:    0.08,
		})
	}

	return s
}
