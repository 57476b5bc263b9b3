package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/valuation-be/internal/features"
	"github.com/hongminglow/valuation-be/internal/models"
)

type observation struct {
	route, outcome string
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []observation
}

func (r *fakeRecorder) ObservePrediction(route, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{route, outcome})
}

func fields(t *testing.T, body string) models.Fields {
	t.Helper()
	var f models.Fields
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	return f
}

var engineSchema = features.Schema{{Name: "area"}, {Name: "city"}}

func TestEngine_EstimateNormalizesAndConverts(t *testing.T) {
	var got features.Vector
	predictor := PredictorFunc(func(_ context.Context, vec features.Vector) (float64, error) {
		got = vec
		return 1000, nil
	})
	rec := &fakeRecorder{}
	e := NewEngine(predictor, engineSchema, "model.bin", rec)

	res, err := e.Estimate(context.Background(), PrimaryRoute, fields(t, `{"city": "Pune", "extra": 1, "area": "NA"}`))
	require.NoError(t, err)

	assert.Equal(t, Result{PriceUSD: 1000, PriceINR: 83000, Currency: "INR", Source: "GO_BACKEND"}, res)
	assert.Equal(t, []string{"area", "city"}, got.Columns)
	assert.True(t, got.Values[0].IsMissing())
	assert.Equal(t, []observation{{"predict", OutcomeSuccess}}, rec.seen)
}

func TestEngine_PredictorFailureIsPredictionError(t *testing.T) {
	predictor := PredictorFunc(func(context.Context, features.Vector) (float64, error) {
		return 0, errors.New(`column "city": unknown category "Atlantis"`)
	})
	rec := &fakeRecorder{}
	e := NewEngine(predictor, engineSchema, "model.bin", rec)

	_, err := e.Estimate(context.Background(), LocalRoute, fields(t, `{"city": "Atlantis"}`))
	require.ErrorIs(t, err, ErrPredictionFailed)

	var perr *PredictionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "predict_local", perr.Route)
	assert.Contains(t, perr.Error(), "Atlantis")
	assert.Equal(t, []observation{{"predict_local", OutcomeFailure}}, rec.seen)
}

func TestEngine_Status(t *testing.T) {
	e := NewEngine(PredictorFunc(nil), engineSchema, "model.bin", nil)
	assert.Equal(t, Status{ModelLoaded: true, Columns: []string{"area", "city"}, ModelPath: "model.bin"}, e.Status())

	noSchema := NewEngine(PredictorFunc(nil), nil, "model.bin", nil)
	assert.Nil(t, noSchema.Status().Columns)
}

func TestDummy_AlwaysCanned(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewDummy("model.bin", rec)
	want := Result{PriceUSD: 111, PriceINR: 222, Currency: "INR", Source: "DUMMY_TEST"}

	for _, route := range []Route{PrimaryRoute, LocalRoute} {
		res, err := d.Estimate(context.Background(), route, nil)
		require.NoError(t, err)
		assert.Equal(t, want, res)
	}

	status := d.Status()
	assert.True(t, status.DummyMode)
	assert.False(t, status.ModelLoaded)
	assert.Len(t, rec.seen, 2)
}

func TestEngine_ConcurrentEstimates(t *testing.T) {
	predictor := PredictorFunc(func(_ context.Context, vec features.Vector) (float64, error) {
		return float64(vec.Len()), nil
	})
	e := NewEngine(predictor, engineSchema, "model.bin", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Estimate(context.Background(), PrimaryRoute, nil)
			assert.NoError(t, err)
			assert.Equal(t, 2.0, res.PriceUSD)
		}()
	}
	wg.Wait()
}
