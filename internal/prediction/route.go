package prediction

import "github.com/shopspring/decimal"

// Currency of every converted amount.
const Currency = "INR"

// Route is a conversion profile for one prediction endpoint.
type Route struct {
	Name   string
	Rate   decimal.Decimal
	Round  bool
	Source string
}

var (
	// PrimaryRoute serves /predict.
	PrimaryRoute = Route{
		Name:   "predict",
		Rate:   decimal.RequireFromString("83.0"),
		Round:  true,
		Source: "GO_BACKEND",
	}
	// LocalRoute serves /predict_local and leaves amounts unrounded.
	LocalRoute = Route{
		Name:   "predict_local",
		Rate:   decimal.RequireFromString("91.23"),
		Round:  false,
		Source: "LOCAL_BACKEND",
	}
)

// Result is a priced prediction.
type Result struct {
	PriceUSD float64 `json:"price_usd"`
	PriceINR float64 `json:"price_inr"`
	Currency string  `json:"currency"`
	Source   string  `json:"source"`
}

// Convert applies the route's rate to a model output, rounding both amounts to
// two places half away from zero when the route asks for it.
func (r Route) Convert(amount float64) Result {
	usd := decimal.NewFromFloat(amount)
	inr := usd.Mul(r.Rate)
	if r.Round {
		usd = usd.Round(2)
		inr = inr.Round(2)
	}
	return Result{
		PriceUSD: usd.InexactFloat64(),
		PriceINR: inr.InexactFloat64(),
		Currency: Currency,
		Source:   r.Source,
	}
}

// RateFloat returns the conversion rate as a float for responses.
func (r Route) RateFloat() float64 {
	return r.Rate.InexactFloat64()
}
