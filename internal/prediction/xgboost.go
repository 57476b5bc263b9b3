package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dmitryikh/leaves"

	"github.com/hongminglow/valuation-be/internal/features"
)

// Model is the inference surface of a loaded tree ensemble.
// *leaves.Ensemble satisfies it and is safe for concurrent reads.
type Model interface {
	PredictSingle(fvals []float64, nEstimators int) float64
	NFeatures() int
}

// XGBoostPredictor encodes vectors for a gradient boosted tree model.
type XGBoostPredictor struct {
	model   Model
	columns map[string]features.Column
}

// LoadXGBoost reads an XGBoost binary model from path.
func LoadXGBoost(path string, schema features.Schema) (*XGBoostPredictor, error) {
	ensemble, err := leaves.XGEnsembleFromFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("load xgboost model %s: %w", path, err)
	}
	if len(schema) > 0 && len(schema) != ensemble.NFeatures() {
		return nil, fmt.Errorf("schema lists %d columns but model expects %d", len(schema), ensemble.NFeatures())
	}
	return NewXGBoostPredictor(ensemble, schema), nil
}

// NewXGBoostPredictor wraps an already loaded model.
func NewXGBoostPredictor(model Model, schema features.Schema) *XGBoostPredictor {
	columns := make(map[string]features.Column, len(schema))
	for _, c := range schema {
		columns[c.Name] = c
	}
	return &XGBoostPredictor{model: model, columns: columns}
}

// Predict encodes vec and runs the ensemble. Shape and type problems are
// returned as errors; a panic inside the model is recovered into one.
func (p *XGBoostPredictor) Predict(ctx context.Context, vec features.Vector) (out float64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fvals, err := p.encode(vec)
	if err != nil {
		return 0, err
	}
	if want := p.model.NFeatures(); len(fvals) != want {
		return 0, fmt.Errorf("feature shape mismatch, expected: %d, got %d", want, len(fvals))
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = 0, fmt.Errorf("model panicked: %v", r)
		}
	}()

	out = p.model.PredictSingle(fvals, 0)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, errors.New("model returned a non-finite value")
	}
	return out, nil
}

func (p *XGBoostPredictor) encode(vec features.Vector) ([]float64, error) {
	fvals := make([]float64, len(vec.Values))
	for i, v := range vec.Values {
		name := vec.Columns[i]
		col, known := p.columns[name]

		switch {
		case v.IsMissing():
			fvals[i] = math.NaN()
		case known && col.Categorical():
			level := v.Str
			if v.Kind == features.Number {
				level = strconv.FormatFloat(v.Num, 'f', -1, 64)
			}
			idx, ok := col.CategoryIndex(level)
			if !ok {
				return nil, fmt.Errorf("column %q: unknown category %q", name, level)
			}
			fvals[i] = float64(idx)
		case v.Kind == features.Number:
			fvals[i] = v.Num
		default:
			f, err := strconv.ParseFloat(v.Str, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q: could not convert %q to a number", name, v.Str)
			}
			fvals[i] = f
		}
	}
	return fvals, nil
}
