package prediction

import (
	"context"
	"time"

	"github.com/hongminglow/valuation-be/internal/features"
	"github.com/hongminglow/valuation-be/internal/models"
)

// Outcome labels for Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDummy   = "dummy"
)

// Status describes what the service is serving predictions from.
type Status struct {
	DummyMode   bool
	ModelLoaded bool
	// Columns is nil when the schema is unknown.
	Columns   []string
	ModelPath string
}

// Estimator prices a client field map on a route.
type Estimator interface {
	Estimate(ctx context.Context, route Route, fields models.Fields) (Result, error)
	Status() Status
}

// Recorder observes prediction outcomes.
type Recorder interface {
	ObservePrediction(route, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObservePrediction(string, string, time.Duration) {}

// Engine normalizes fields against the schema and runs a real model.
type Engine struct {
	predictor Predictor
	schema    features.Schema
	modelPath string
	recorder  Recorder
}

// NewEngine builds an Engine. A nil recorder disables metrics.
func NewEngine(predictor Predictor, schema features.Schema, modelPath string, recorder Recorder) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{
		predictor: predictor,
		schema:    schema,
		modelPath: modelPath,
		recorder:  recorder,
	}
}

func (e *Engine) Estimate(ctx context.Context, route Route, fields models.Fields) (Result, error) {
	start := time.Now()
	vec := features.Normalize(e.schema, fields)

	amount, err := e.predictor.Predict(ctx, vec)
	if err != nil {
		e.recorder.ObservePrediction(route.Name, OutcomeFailure, time.Since(start))
		return Result{}, &PredictionError{Route: route.Name, Err: err}
	}

	e.recorder.ObservePrediction(route.Name, OutcomeSuccess, time.Since(start))
	return route.Convert(amount), nil
}

func (e *Engine) Status() Status {
	var columns []string
	if len(e.schema) > 0 {
		columns = e.schema.Names()
	}
	return Status{
		ModelLoaded: true,
		Columns:     columns,
		ModelPath:   e.modelPath,
	}
}
