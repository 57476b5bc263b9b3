package prediction

import (
	"context"

	"github.com/hongminglow/valuation-be/internal/models"
)

// DummySource tags canned results.
const DummySource = "DUMMY_TEST"

// Dummy answers every request with a fixed result and never loads a model.
type Dummy struct {
	modelPath string
	recorder  Recorder
}

// NewDummy builds the smoke-test estimator.
func NewDummy(modelPath string, recorder Recorder) *Dummy {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dummy{modelPath: modelPath, recorder: recorder}
}

func (d *Dummy) Estimate(_ context.Context, route Route, _ models.Fields) (Result, error) {
	d.recorder.ObservePrediction(route.Name, OutcomeDummy, 0)
	return Result{
		PriceUSD: 111,
		PriceINR: 222,
		Currency: Currency,
		Source:   DummySource,
	}, nil
}

func (d *Dummy) Status() Status {
	return Status{DummyMode: true, ModelPath: d.modelPath}
}

var (
	_ Estimator = (*Engine)(nil)
	_ Estimator = (*Dummy)(nil)
)
