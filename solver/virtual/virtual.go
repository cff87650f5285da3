// Package virtual provides an in-process solver session with the same
// contract as the external power-flow engine. It re-parses the compiled
// circuit script and produces a deterministic flat-start estimate: bus
// voltages are taken at their declared operating point and branch
// currents from the power drawn at the receiving bus. It backs the CLI
// and integration tests when no real engine is attached.
package virtual

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Rojas-Binny/GridGen/solver"
)

type busElement struct {
	uid    string
	baseKV float64
	vm     float64
	va     float64
}

type branchElement struct {
	uid      string
	bus1     string
	bus2     string
	r        float64
	normAmps float64
}

type deviceElement struct {
	uid string
	bus string
	kw  float64
}

// Session is a virtual power-flow engine instance. Compile replaces the
// loaded circuit; Solve computes the estimate the read methods report.
// Not safe for concurrent use, matching the single-session engine model.
type Session struct {
	buses    []busElement
	branches []branchElement
	gens     []deviceElement
	loads    []deviceElement

	compiled  bool
	solved    bool
	converged bool

	busStates    []solver.BusState
	branchStates []solver.BranchState
	totals       solver.Totals
}

// New returns a session with no circuit loaded.
func New() *Session {
	return &Session{}
}

// Compile reads the circuit script at path and rebuilds the element
// tables. Any statement outside the known vocabulary is a compile
// error.
func (s *Session) Compile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("virtual: open script: %w", err)
	}
	defer f.Close()

	s.reset()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := s.apply(line); err != nil {
			s.reset()
			return fmt.Errorf("virtual: line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		s.reset()
		return fmt.Errorf("virtual: read script: %w", err)
	}

	s.compiled = true
	return nil
}

// Solve estimates the steady state of the compiled circuit. Returns an
// error when no circuit is loaded or an element references an
// undeclared bus; an operating point with a non-positive bus voltage is
// reported as non-convergence, not an error.
func (s *Session) Solve() error {
	if !s.compiled {
		return fmt.Errorf("virtual: no circuit compiled")
	}

	vmByBus := make(map[string]float64, len(s.buses))
	for _, b := range s.buses {
		vmByBus[b.uid] = b.vm
	}

	for _, br := range s.branches {
		if _, ok := vmByBus[br.bus1]; !ok {
			return fmt.Errorf("virtual: branch %s references undeclared bus %s", br.uid, br.bus1)
		}
		if _, ok := vmByBus[br.bus2]; !ok {
			return fmt.Errorf("virtual: branch %s references undeclared bus %s", br.uid, br.bus2)
		}
	}
	for _, d := range append(append([]deviceElement(nil), s.gens...), s.loads...) {
		if _, ok := vmByBus[d.bus]; !ok {
			return fmt.Errorf("virtual: device %s references undeclared bus %s", d.uid, d.bus)
		}
	}

	s.solved = true
	s.converged = true
	for _, b := range s.buses {
		if b.vm <= 0 {
			s.converged = false
		}
	}
	if !s.converged {
		s.busStates = nil
		s.branchStates = nil
		s.totals = solver.Totals{}
		return nil
	}

	s.busStates = make([]solver.BusState, 0, len(s.buses))
	for _, b := range s.buses {
		s.busStates = append(s.busStates, solver.BusState{UID: b.uid, Vm: b.vm, Va: b.va})
	}

	loadByBus := make(map[string]float64, len(s.loads))
	for _, d := range s.loads {
		loadByBus[d.bus] += d.kw
	}

	losses := 0.0
	s.branchStates = make([]solver.BranchState, 0, len(s.branches))
	for _, br := range s.branches {
		// Flat-start estimate: the branch carries the power drawn at its
		// receiving bus at that bus's voltage.
		current := loadByBus[br.bus2] / vmByBus[br.bus2]
		if current < 0 {
			current = -current
		}
		losses += current * current * br.r
		s.branchStates = append(s.branchStates, solver.BranchState{
			UID:          br.uid,
			Current:      current,
			NormalRating: br.normAmps,
		})
	}

	gen, load := 0.0, 0.0
	for _, d := range s.gens {
		gen += d.kw
	}
	for _, d := range s.loads {
		load += d.kw
	}
	s.totals = solver.Totals{Losses: losses, Generation: gen, Load: load}

	return nil
}

// Converged reports the result of the last Solve.
func (s *Session) Converged() bool { return s.solved && s.converged }

// BusStates returns per-bus phasors in declaration order.
func (s *Session) BusStates() []solver.BusState { return s.busStates }

// BranchStates returns per-branch currents in declaration order.
func (s *Session) BranchStates() []solver.BranchState { return s.branchStates }

// Totals returns aggregate losses, generation, and load.
func (s *Session) Totals() solver.Totals { return s.totals }

func (s *Session) reset() {
	*s = Session{}
}

func (s *Session) apply(line string) error {
	switch {
	case line == "Clear":
		s.reset()
		return nil
	case strings.HasPrefix(line, "Set "):
		// Global settings (frequency, bases, iteration caps) do not
		// change the flat-start estimate; accept and ignore.
		if !strings.Contains(line[4:], "=") {
			return fmt.Errorf("bad Set statement %q", line)
		}
		return nil
	case strings.HasPrefix(line, "New "):
		return s.applyNew(line[4:])
	default:
		return fmt.Errorf("unknown statement %q", line)
	}
}

func (s *Session) applyNew(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return fmt.Errorf("empty New statement")
	}
	class, uid, ok := strings.Cut(fields[0], ".")
	if !ok || uid == "" {
		return fmt.Errorf("bad element name %q", fields[0])
	}

	attrs := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("bad attribute %q", f)
		}
		attrs[k] = v
	}

	num := func(key string) (float64, error) {
		raw, ok := attrs[key]
		if !ok {
			return 0, fmt.Errorf("%s.%s missing %s", class, uid, key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s.%s: bad %s value %q", class, uid, key, raw)
		}
		return v, nil
	}

	switch class {
	case "Circuit":
		return nil
	case "Bus":
		baseKV, err := num("BasekV")
		if err != nil {
			return err
		}
		vm, err := num("kV")
		if err != nil {
			return err
		}
		va, err := num("Angle")
		if err != nil {
			return err
		}
		s.buses = append(s.buses, busElement{uid: uid, baseKV: baseKV, vm: vm, va: va})
		return nil
	case "Line", "Transformer":
		r, err := num("R1")
		if err != nil {
			return err
		}
		normAmps, err := num("NormAmps")
		if err != nil {
			return err
		}
		s.branches = append(s.branches, branchElement{
			uid:      uid,
			bus1:     attrs["Bus1"],
			bus2:     attrs["Bus2"],
			r:        r,
			normAmps: normAmps,
		})
		return nil
	case "Generator":
		kw, err := num("kW")
		if err != nil {
			return err
		}
		s.gens = append(s.gens, deviceElement{uid: uid, bus: attrs["Bus1"], kw: kw})
		return nil
	case "Load":
		kw, err := num("kW")
		if err != nil {
			return err
		}
		s.loads = append(s.loads, deviceElement{uid: uid, bus: attrs["Bus1"], kw: kw})
		return nil
	default:
		return fmt.Errorf("unknown element class %q", class)
	}
}
