package validate

import (
	"context"
	"errors"
	"time"

	"github.com/Rojas-Binny/GridGen/circuit"
	"github.com/Rojas-Binny/GridGen/grid"
	"github.com/Rojas-Binny/GridGen/internal/logging"
	"github.com/Rojas-Binny/GridGen/internal/observability"
	"github.com/Rojas-Binny/GridGen/solver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Validator drives the single-scenario validation pipeline:
// normalize, build circuit, solve, detect violations. It holds the one
// solver session and runs the stages in strict sequence; nothing is
// retained across calls beyond the session itself.
type Validator struct {
	session  solver.Session
	settings circuit.Settings
	band     Band
	log      logging.Logger
	metrics  *observability.ValidationCollector
	tracer   trace.Tracer
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) Option {
	return func(v *Validator) { v.log = log }
}

// WithMetrics attaches a prometheus collector.
func WithMetrics(c *observability.ValidationCollector) Option {
	return func(v *Validator) { v.metrics = c }
}

// WithBand overrides the default voltage operating band.
func WithBand(b Band) Option {
	return func(v *Validator) { v.band = b }
}

// WithSettings overrides the global solve settings emitted into every
// circuit description.
func WithSettings(s circuit.Settings) Option {
	return func(v *Validator) { v.settings = s }
}

// New constructs a Validator over the provided solver session.
func New(session solver.Session, opts ...Option) *Validator {
	v := &Validator{
		session:  session,
		settings: circuit.DefaultSettings(),
		band:     DefaultBand(),
		log:      logging.Noop(),
		tracer:   otel.Tracer("gridgen/validate"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the full pipeline on one scenario. The scenario is
// consumed read-only. Callers receive either a complete Result or an
// error naming the failing stage: grid.ErrMalformedScenario before any
// circuit resource exists, solver.ErrSolveFailure from the engine.
// Non-convergence is not an error; it comes back as a Result with
// Converged=false.
func (v *Validator) Validate(ctx context.Context, s *grid.Scenario) (*Result, error) {
	ctx, log := logging.WithRunLogger(ctx, v.log)

	// A nil scenario still flows through Normalize below so it is
	// reported as malformed rather than panicking here.
	scenarioID := ""
	if s != nil {
		scenarioID = s.ID
	}
	ctx, span := v.tracer.Start(ctx, "validate.scenario",
		trace.WithAttributes(attribute.String("scenario.id", scenarioID)))
	defer span.End()

	model, err := grid.Normalize(s)
	if err != nil {
		v.metrics.ObserveValidation(observability.OutcomeMalformed)
		log.Warn(ctx, "scenario rejected", logging.String("error", err.Error()))
		return nil, err
	}
	v.metrics.SetScenarioCounts(len(model.Buses), len(model.Branches), len(model.Producers)+len(model.Consumers))

	script, err := circuit.Build(model, v.settings)
	if err != nil {
		v.metrics.ObserveValidation(observability.OutcomeSolveFailure)
		return nil, err
	}
	defer script.Close()

	start := time.Now()
	out, err := solver.Run(v.session, script.Path())
	v.metrics.ObserveSolve(time.Since(start))
	if err != nil {
		v.metrics.ObserveValidation(observability.OutcomeSolveFailure)
		log.Error(ctx, "solve failed", logging.String("error", err.Error()))
		return nil, err
	}

	res := Detect(out, v.band)
	v.observeResult(res)

	log.Info(ctx, "scenario validated",
		logging.String("scenario_id", s.ID),
		logging.Any("success", res.Success),
		logging.Any("converged", res.Converged),
		logging.Int("voltage_violations", len(res.VoltageViolations)),
		logging.Int("thermal_violations", len(res.ThermalViolations)),
	)
	span.SetAttributes(
		attribute.Bool("result.success", res.Success),
		attribute.Bool("result.converged", res.Converged),
		attribute.Int("result.voltage_violations", len(res.VoltageViolations)),
		attribute.Int("result.thermal_violations", len(res.ThermalViolations)),
	)

	return res, nil
}

func (v *Validator) observeResult(res *Result) {
	switch {
	case !res.Converged:
		v.metrics.ObserveValidation(observability.OutcomeNonConverged)
	case res.Success:
		v.metrics.ObserveValidation(observability.OutcomeValid)
	default:
		v.metrics.ObserveValidation(observability.OutcomeViolations)
	}
	v.metrics.AddViolations(len(res.VoltageViolations), len(res.ThermalViolations))
}

// IsMalformed reports whether err came from scenario normalization.
func IsMalformed(err error) bool {
	return errors.Is(err, grid.ErrMalformedScenario)
}

// IsSolveFailure reports whether err came from the external engine.
func IsSolveFailure(err error) bool {
	return errors.Is(err, solver.ErrSolveFailure)
}
