package grid

// Model is the normalized, cross-referenced view of a scenario's
// network: typed collections in deterministic order (scenario input
// order, lines ahead of transformers) with an index over bus uids.
// A Model is immutable once built for a given solve.
type Model struct {
	ScenarioID string
	BaseMVA    float64

	Buses     []Bus
	Branches  []Branch // lines first, then transformers
	Producers []Device
	Consumers []Device

	busIndex map[string]int
}

// Bus looks up a bus by uid.
func (m *Model) Bus(uid string) (Bus, bool) {
	i, ok := m.busIndex[uid]
	if !ok {
		return Bus{}, false
	}
	return m.Buses[i], true
}

// HasBus reports whether the model contains a bus with the given uid.
func (m *Model) HasBus(uid string) bool {
	_, ok := m.busIndex[uid]
	return ok
}

// Normalize validates and indexes a raw scenario into a Model, or fails
// with a MalformedScenarioError naming the offending entity. A partial
// network (dangling bus reference, duplicate uid, non-positive rating)
// is rejected here, before any circuit description is allocated, so the
// external solver never receives an unsolvable topology.
func Normalize(s *Scenario) (*Model, error) {
	if s == nil {
		return nil, malformed("scenario", "", "nil scenario")
	}
	if len(s.Buses) == 0 {
		return nil, malformed("bus", "", "scenario has no buses")
	}

	m := &Model{
		ScenarioID: s.ID,
		BaseMVA:    s.BaseMVA,
		Buses:      make([]Bus, 0, len(s.Buses)),
		Branches:   make([]Branch, 0, len(s.Lines)+len(s.Transformers)),
		busIndex:   make(map[string]int, len(s.Buses)),
	}

	for _, b := range s.Buses {
		if b.UID == "" {
			return nil, malformed("bus", "", "missing uid")
		}
		if _, exists := m.busIndex[b.UID]; exists {
			return nil, malformed("bus", b.UID, "duplicate uid")
		}
		m.busIndex[b.UID] = len(m.Buses)
		m.Buses = append(m.Buses, b)
	}

	branchUIDs := make(map[string]struct{}, cap(m.Branches))
	addBranch := func(br Branch) error {
		entity := br.Kind.String()
		if br.UID == "" {
			return malformed(entity, "", "missing uid")
		}
		if _, exists := branchUIDs[br.UID]; exists {
			return malformed(entity, br.UID, "duplicate uid")
		}
		if br.FromBus == br.ToBus {
			return malformed(entity, br.UID, "fr_bus and to_bus are both %q", br.FromBus)
		}
		if !m.HasBus(br.FromBus) {
			return malformed(entity, br.UID, "fr_bus references unknown bus %q", br.FromBus)
		}
		if !m.HasBus(br.ToBus) {
			return malformed(entity, br.UID, "to_bus references unknown bus %q", br.ToBus)
		}
		if br.RateNormal <= 0 {
			return malformed(entity, br.UID, "mva_ub_nom must be positive, got %g", br.RateNormal)
		}
		if br.RateEmergency <= 0 {
			return malformed(entity, br.UID, "mva_ub_em must be positive, got %g", br.RateEmergency)
		}
		branchUIDs[br.UID] = struct{}{}
		m.Branches = append(m.Branches, br)
		return nil
	}

	for _, l := range s.Lines {
		if err := addBranch(l); err != nil {
			return nil, err
		}
	}
	for _, x := range s.Transformers {
		if err := addBranch(x); err != nil {
			return nil, err
		}
	}

	deviceUIDs := make(map[string]struct{}, len(s.Devices))
	for _, d := range s.Devices {
		if d.UID == "" {
			return nil, malformed("simple_dispatchable_device", "", "missing uid")
		}
		if _, exists := deviceUIDs[d.UID]; exists {
			return nil, malformed("simple_dispatchable_device", d.UID, "duplicate uid")
		}
		if !m.HasBus(d.Bus) {
			return nil, malformed("simple_dispatchable_device", d.UID, "references unknown bus %q", d.Bus)
		}
		deviceUIDs[d.UID] = struct{}{}
		switch d.Kind {
		case Producer:
			m.Producers = append(m.Producers, d)
		case Consumer:
			m.Consumers = append(m.Consumers, d)
		default:
			return nil, malformed("simple_dispatchable_device", d.UID, "unknown device kind %d", int(d.Kind))
		}
	}

	return m, nil
}
