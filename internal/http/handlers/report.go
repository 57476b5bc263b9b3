package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/http/request"
	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/report"
)

const reportFilename = "estate-luxe-valuation-report.pdf"

// ReportHandler renders PDF valuation reports.
type ReportHandler struct {
	renderer *report.Renderer
}

// NewReportHandler creates the handler.
func NewReportHandler(renderer *report.Renderer) *ReportHandler {
	return &ReportHandler{renderer: renderer}
}

func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.ReportRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	in := report.Request{
		Valuation: req.Valuation,
		Features:  req.Features,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}

	doc, err := h.renderer.Render(in)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render report failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	zerolog.Ctx(r.Context()).Debug().Int("pages", doc.Pages).Int("bytes", len(doc.Bytes)).Msg("report rendered")
	respond.Attachment(w, "application/pdf", reportFilename, doc.Bytes)
}
