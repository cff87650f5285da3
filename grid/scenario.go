package grid

// DeviceKind classifies a dispatchable device as either a source or a
// sink of active power. It is a closed enum constructed at scenario load
// time so that downstream consumers (the circuit builder in particular)
// never have to compare raw tag strings.
type DeviceKind int

const (
	// Producer injects power into its bus (generator element).
	Producer DeviceKind = iota
	// Consumer draws power from its bus (load element).
	Consumer
)

func (k DeviceKind) String() string {
	switch k {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	default:
		return "unknown"
	}
}

// Bus is a network node with a voltage state.
type Bus struct {
	UID    string
	BaseKV float64 // nominal base voltage, kV
	Vm     float64 // initial voltage magnitude, p.u.
	Va     float64 // initial voltage angle, degrees
}

// BranchKind distinguishes AC lines from two-winding transformers.
// Both share the same electrical parameter set; the builder emits them
// as different element classes.
type BranchKind int

const (
	Line BranchKind = iota
	Transformer
)

func (k BranchKind) String() string {
	if k == Transformer {
		return "two_winding_transformer"
	}
	return "ac_line"
}

// Branch is a line or transformer connecting two buses, carrying current
// subject to a thermal limit.
type Branch struct {
	UID     string
	Kind    BranchKind
	FromBus string
	ToBus   string

	R float64 // series resistance
	X float64 // series reactance
	B float64 // shunt susceptance

	RateNormal    float64 // normal thermal rating
	RateEmergency float64 // emergency thermal rating
}

// Device is a simple dispatchable device attached to a single bus.
// PMax/PMin are only meaningful for producers.
type Device struct {
	UID  string
	Bus  string
	Kind DeviceKind

	P float64 // active power setpoint
	Q float64 // reactive power setpoint

	PMax float64
	PMin float64
}

// Scenario is one complete, self-consistent description of network
// topology and operating setpoints to be validated. It is consumed
// read-only by the validation pipeline; per-time-step variants are
// produced as fresh values via Clone.
type Scenario struct {
	ID          string
	Name        string
	Description string

	BaseMVA      float64
	Buses        []Bus
	Lines        []Branch
	Transformers []Branch
	Devices      []Device

	Metadata map[string]string
}

// Clone returns a deep copy of the scenario. Callers may mutate the copy
// freely without aliasing the original's slices or metadata map.
func (s *Scenario) Clone() *Scenario {
	if s == nil {
		return nil
	}
	out := *s
	out.Buses = append([]Bus(nil), s.Buses...)
	out.Lines = append([]Branch(nil), s.Lines...)
	out.Transformers = append([]Branch(nil), s.Transformers...)
	out.Devices = append([]Device(nil), s.Devices...)
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
