// Package prediction turns normalized feature vectors into currency-converted
// price estimates.
package prediction

import (
	"context"

	"github.com/hongminglow/valuation-be/internal/features"
)

// Predictor runs the regression model on one row.
type Predictor interface {
	Predict(ctx context.Context, vec features.Vector) (float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, vec features.Vector) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, vec features.Vector) (float64, error) {
	return f(ctx, vec)
}
