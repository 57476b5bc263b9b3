package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/http/request"
	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/middleware"
	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/prediction"
)

// PredictHandler serves both prediction routes.
type PredictHandler struct {
	estimator prediction.Estimator
}

// NewPredictHandler creates the handler.
func NewPredictHandler(estimator prediction.Estimator) *PredictHandler {
	return &PredictHandler{estimator: estimator}
}

// Predict is the API-key protected primary route.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.readFields(w, r)
	if !ok {
		return
	}

	res, err := h.estimator.Estimate(r.Context(), prediction.PrimaryRoute, fields)
	if err != nil {
		h.fail(w, r, "Prediction error: ", err)
		return
	}

	if key, ok := middleware.APIKeyFrom(r.Context()); ok {
		zerolog.Ctx(r.Context()).Debug().Int64("api_key_id", key.ID).Str("source", res.Source).Msg("prediction served")
	}
	respond.JSON(w, http.StatusOK, res)
}

// PredictLocal is the unauthenticated route used to tell servers apart in
// integration tests.
func (h *PredictHandler) PredictLocal(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.readFields(w, r)
	if !ok {
		return
	}

	route := prediction.LocalRoute
	res, err := h.estimator.Estimate(r.Context(), route, fields)
	if err != nil {
		h.fail(w, r, "Model prediction failed: ", err)
		return
	}

	fx := route.RateFloat()
	if h.estimator.Status().DummyMode {
		fx = 0
	}
	respond.JSON(w, http.StatusOK, dto.LocalPredictResponse{
		PriceUSD: res.PriceUSD,
		PriceINR: res.PriceINR,
		Currency: res.Currency,
		Server:   res.Source,
		Endpoint: "/predict_local",
		FXUsed:   fx,
	})
}

// readFields decodes the request body. In dummy mode the body is ignored.
func (h *PredictHandler) readFields(w http.ResponseWriter, r *http.Request) (models.Fields, bool) {
	if h.estimator.Status().DummyMode {
		return nil, true
	}

	var req dto.PredictRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.FeaturesByName, true
}

func (h *PredictHandler) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	var perr *prediction.PredictionError
	if errors.As(err, &perr) {
		zerolog.Ctx(r.Context()).Warn().Err(perr.Err).Str("route", perr.Route).Msg("prediction failed")
		respond.Error(w, http.StatusInternalServerError, prefix+perr.Err.Error())
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("prediction failed")
	respond.Error(w, http.StatusInternalServerError, prefix+err.Error())
}
