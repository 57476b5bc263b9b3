package dto

import "github.com/hongminglow/valuation-be/internal/models"

type ReportRequest struct {
	Title     *string       `json:"title"`
	Valuation models.Fields `json:"valuation"`
	Features  models.Fields `json:"features"`
	Notes     *string       `json:"notes"`
}
