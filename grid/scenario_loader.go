package grid

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Wire shapes for the scenario JSON contract. Kept unexported so the
// domain types are free to evolve independently of the file format.
type scenarioJSON struct {
	ScenarioID  string            `json:"scenario_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Network     networkJSON       `json:"network"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type networkJSON struct {
	BaseMVA      float64      `json:"base_mva"`
	Buses        []busJSON    `json:"bus"`
	ACLines      []branchJSON `json:"ac_line"`
	Transformers []branchJSON `json:"two_winding_transformer,omitempty"`
	Devices      []deviceJSON `json:"simple_dispatchable_device"`
}

type busJSON struct {
	UID         string         `json:"uid"`
	BaseNomVolt float64        `json:"base_nom_volt"`
	Initial     busStatusJSON  `json:"initial_status"`
}

type busStatusJSON struct {
	Vm float64 `json:"vm"`
	Va float64 `json:"va"`
}

type branchJSON struct {
	UID      string  `json:"uid"`
	FrBus    string  `json:"fr_bus"`
	ToBus    string  `json:"to_bus"`
	R        float64 `json:"r"`
	X        float64 `json:"x"`
	B        float64 `json:"b"`
	MVAUbNom float64 `json:"mva_ub_nom"`
	MVAUbEm  float64 `json:"mva_ub_em"`
}

type deviceJSON struct {
	UID        string           `json:"uid"`
	Bus        string           `json:"bus"`
	DeviceType string           `json:"device_type"`
	PUb        float64          `json:"p_ub,omitempty"`
	PLb        float64          `json:"p_lb,omitempty"`
	Initial    deviceStatusJSON `json:"initial_status"`
}

type deviceStatusJSON struct {
	P float64 `json:"p"`
	Q float64 `json:"q"`
}

// LoadScenario decodes a scenario from r into domain types.
//
// It fails on JSON errors and on device kind tags outside the closed
// producer/consumer set; referential validation (dangling bus refs,
// duplicate uids, rating bounds) is Normalize's job.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	s := &Scenario{
		ID:          payload.ScenarioID,
		Name:        payload.Name,
		Description: payload.Description,
		BaseMVA:     payload.Network.BaseMVA,
		Metadata:    payload.Metadata,
	}

	s.Buses = make([]Bus, 0, len(payload.Network.Buses))
	for _, b := range payload.Network.Buses {
		s.Buses = append(s.Buses, Bus{
			UID:    b.UID,
			BaseKV: b.BaseNomVolt,
			Vm:     b.Initial.Vm,
			Va:     b.Initial.Va,
		})
	}

	s.Lines = make([]Branch, 0, len(payload.Network.ACLines))
	for _, l := range payload.Network.ACLines {
		s.Lines = append(s.Lines, branchFromJSON(l, Line))
	}

	s.Transformers = make([]Branch, 0, len(payload.Network.Transformers))
	for _, x := range payload.Network.Transformers {
		s.Transformers = append(s.Transformers, branchFromJSON(x, Transformer))
	}

	s.Devices = make([]Device, 0, len(payload.Network.Devices))
	for _, d := range payload.Network.Devices {
		kind, err := deviceKindFromString(d.DeviceType)
		if err != nil {
			return nil, err
		}
		s.Devices = append(s.Devices, Device{
			UID:  d.UID,
			Bus:  d.Bus,
			Kind: kind,
			P:    d.Initial.P,
			Q:    d.Initial.Q,
			PMax: d.PUb,
			PMin: d.PLb,
		})
	}

	return s, nil
}

// LoadScenarioFile is a convenience wrapper around LoadScenario.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScenarioFile: %w", err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// EncodeScenario writes the scenario back out in the wire format, with
// stable two-space indentation. Used by the sample scenario generator.
func EncodeScenario(w io.Writer, s *Scenario) error {
	payload := scenarioJSON{
		ScenarioID:  s.ID,
		Name:        s.Name,
		Description: s.Description,
		Metadata:    s.Metadata,
		Network: networkJSON{
			BaseMVA:      s.BaseMVA,
			Buses:        make([]busJSON, 0, len(s.Buses)),
			ACLines:      make([]branchJSON, 0, len(s.Lines)),
			Transformers: make([]branchJSON, 0, len(s.Transformers)),
			Devices:      make([]deviceJSON, 0, len(s.Devices)),
		},
	}

	for _, b := range s.Buses {
		payload.Network.Buses = append(payload.Network.Buses, busJSON{
			UID:         b.UID,
			BaseNomVolt: b.BaseKV,
			Initial:     busStatusJSON{Vm: b.Vm, Va: b.Va},
		})
	}
	for _, l := range s.Lines {
		payload.Network.ACLines = append(payload.Network.ACLines, branchToJSON(l))
	}
	for _, x := range s.Transformers {
		payload.Network.Transformers = append(payload.Network.Transformers, branchToJSON(x))
	}
	for _, d := range s.Devices {
		payload.Network.Devices = append(payload.Network.Devices, deviceJSON{
			UID:        d.UID,
			Bus:        d.Bus,
			DeviceType: d.Kind.String(),
			PUb:        d.PMax,
			PLb:        d.PMin,
			Initial:    deviceStatusJSON{P: d.P, Q: d.Q},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("EncodeScenario: %w", err)
	}
	return nil
}

func branchFromJSON(j branchJSON, kind BranchKind) Branch {
	return Branch{
		UID:           j.UID,
		Kind:          kind,
		FromBus:       j.FrBus,
		ToBus:         j.ToBus,
		R:             j.R,
		X:             j.X,
		B:             j.B,
		RateNormal:    j.MVAUbNom,
		RateEmergency: j.MVAUbEm,
	}
}

func branchToJSON(b Branch) branchJSON {
	return branchJSON{
		UID:      b.UID,
		FrBus:    b.FromBus,
		ToBus:    b.ToBus,
		R:        b.R,
		X:        b.X,
		B:        b.B,
		MVAUbNom: b.RateNormal,
		MVAUbEm:  b.RateEmergency,
	}
}

func deviceKindFromString(s string) (DeviceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "producer":
		return Producer, nil
	case "consumer":
		return Consumer, nil
	default:
		return 0, malformed("simple_dispatchable_device", "", "unknown device_type %q", s)
	}
}
