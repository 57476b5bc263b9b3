package prediction

import (
	"errors"
	"fmt"
)

// ErrPredictionFailed matches every model failure.
var ErrPredictionFailed = errors.New("prediction failed")

// PredictionError carries the model's message for a failed route.
type PredictionError struct {
	Route string
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Route, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func (e *PredictionError) Is(target error) bool {
	return target == ErrPredictionFailed
}
