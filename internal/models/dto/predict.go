package dto

import "github.com/hongminglow/valuation-be/internal/models"

type PredictRequest struct {
	FeaturesByName models.Fields `json:"features_by_name" validate:"required"`
}

// LocalPredictResponse is the wire shape of /predict_local, which names the
// serving process and the rate it applied.
type LocalPredictResponse struct {
	PriceUSD float64 `json:"price_usd"`
	PriceINR float64 `json:"price_inr"`
	Currency string  `json:"currency"`
	Server   string  `json:"server"`
	Endpoint string  `json:"endpoint"`
	FXUsed   float64 `json:"fx_used"`
}

type ColumnsResponse struct {
	Columns []string `json:"columns"`
}
