package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcome labels for the validations counter.
const (
	OutcomeValid        = "valid"
	OutcomeViolations   = "violations"
	OutcomeNonConverged = "non_converged"
	OutcomeMalformed    = "malformed_scenario"
	OutcomeSolveFailure = "solve_failure"
)

// Violation kind labels for the violations counter.
const (
	ViolationVoltage = "voltage"
	ViolationThermal = "thermal"
)

// ValidationCollector bundles Prometheus metrics for the validation
// pipeline and provides a ready-made HTTP handler to expose them.
type ValidationCollector struct {
	gatherer prometheus.Gatherer

	Validations   *prometheus.CounterVec
	Violations    *prometheus.CounterVec
	SolveDuration prometheus.Histogram

	ScenarioBuses    prometheus.Gauge
	ScenarioBranches prometheus.Gauge
	ScenarioDevices  prometheus.Gauge
}

// NewValidationCollector registers validation metrics against the
// provided registerer, defaulting to the global Prometheus registry
// when nil.
func NewValidationCollector(reg prometheus.Registerer) (*ValidationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridgen_validations_total",
		Help: "Total number of scenario validations, labeled by outcome.",
	}, []string{"outcome"})
	validations, err := registerCounterVec(reg, validations, "gridgen_validations_total")
	if err != nil {
		return nil, err
	}

	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridgen_violations_total",
		Help: "Total number of limit violations detected, labeled by kind.",
	}, []string{"kind"})
	violations, err = registerCounterVec(reg, violations, "gridgen_violations_total")
	if err != nil {
		return nil, err
	}

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridgen_solve_duration_seconds",
		Help:    "Duration of external power-flow solves in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	solveDuration, err = registerHistogram(reg, solveDuration, "gridgen_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	buses, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridgen_scenario_buses",
		Help: "Number of buses in the most recently validated scenario.",
	}), "gridgen_scenario_buses")
	if err != nil {
		return nil, err
	}
	branches, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridgen_scenario_branches",
		Help: "Number of branches in the most recently validated scenario.",
	}), "gridgen_scenario_branches")
	if err != nil {
		return nil, err
	}
	devices, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridgen_scenario_devices",
		Help: "Number of dispatchable devices in the most recently validated scenario.",
	}), "gridgen_scenario_devices")
	if err != nil {
		return nil, err
	}

	return &ValidationCollector{
		gatherer:         gatherer,
		Validations:      validations,
		Violations:       violations,
		SolveDuration:    solveDuration,
		ScenarioBuses:    buses,
		ScenarioBranches: branches,
		ScenarioDevices:  devices,
	}, nil
}

// ObserveValidation records the outcome of one validation call.
func (c *ValidationCollector) ObserveValidation(outcome string) {
	if c == nil || c.Validations == nil {
		return
	}
	c.Validations.WithLabelValues(outcome).Inc()
}

// ObserveSolve records the duration of one solver invocation.
func (c *ValidationCollector) ObserveSolve(d time.Duration) {
	if c == nil || c.SolveDuration == nil {
		return
	}
	c.SolveDuration.Observe(d.Seconds())
}

// AddViolations accumulates detected violation counts by kind.
func (c *ValidationCollector) AddViolations(voltage, thermal int) {
	if c == nil || c.Violations == nil {
		return
	}
	if voltage > 0 {
		c.Violations.WithLabelValues(ViolationVoltage).Add(float64(voltage))
	}
	if thermal > 0 {
		c.Violations.WithLabelValues(ViolationThermal).Add(float64(thermal))
	}
}

// SetScenarioCounts drives the scenario size gauges from the
// normalized model.
func (c *ValidationCollector) SetScenarioCounts(buses, branches, devices int) {
	if c == nil {
		return
	}
	if c.ScenarioBuses != nil {
		c.ScenarioBuses.Set(float64(buses))
	}
	if c.ScenarioBranches != nil {
		c.ScenarioBranches.Set(float64(branches))
	}
	if c.ScenarioDevices != nil {
		c.ScenarioDevices.Set(float64(devices))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ValidationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
