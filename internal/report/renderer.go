// Package report renders valuation reports as PDF documents.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/hongminglow/valuation-be/internal/models"
)

// DefaultTitle is used when a request has no title.
const DefaultTitle = "Property Valuation Report"

// Layout in points, measured from the top-left corner of a Letter page.
const (
	pageHeight    = 792.0
	headerX       = 72.0
	bodyX         = 80.0
	topMargin     = 72.0
	bottomMargin  = 80.0
	notesReserve  = 120.0
	firstSectionY = 120.0
	fontFamily    = "Helvetica"
)

// Request holds the optional report sections.
type Request struct {
	Title     string
	Valuation models.Fields
	Features  models.Fields
	Notes     string
}

// Document is a rendered report.
type Document struct {
	Bytes []byte
	Pages int
}

// Renderer lays out reports. It holds no per-request state.
type Renderer struct {
	now      func() time.Time
	compress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock fixes the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithCompression toggles content stream compression.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// NewRenderer returns a Renderer with compression on and the wall clock.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now, compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// page wraps the document and the running cursor.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (p *page) text(x float64, s string) {
	p.pdf.Text(x, p.y, p.tr(s))
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(fontFamily, style, size)
}

// newPage continues on a fresh page. fpdf carries the current font over.
func (p *page) newPage() {
	p.pdf.AddPage()
	p.y = topMargin
}

func (p *page) pastMargin(reserve float64) bool {
	return p.y > pageHeight-reserve
}

// Render writes the title block followed by every non-empty section.
func (r *Renderer) Render(req Request) (Document, error) {
	now := r.now().UTC()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(r.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(now)

	title := req.Title
	if title == "" {
		title = DefaultTitle
	}
	pdf.SetTitle(title, true)

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()

	p.font("B", 18)
	p.y = topMargin
	p.text(headerX, title)
	p.font("", 10)
	p.y = topMargin + 20
	p.text(headerX, "Generated: "+now.Format("2006-01-02 15:04")+" UTC")
	p.y = firstSectionY

	if len(req.Valuation) > 0 {
		p.font("B", 12)
		p.text(headerX, "Valuation:")
		p.y += 18
		p.font("", 10)
		for _, f := range req.Valuation {
			p.text(bodyX, f.Key+": "+formatValue(f.Value))
			p.y += 14
			if p.pastMargin(bottomMargin) {
				p.newPage()
			}
		}
	}

	if len(req.Features) > 0 {
		p.y += 6
		p.font("B", 12)
		p.text(headerX, "Property Details:")
		p.y += 18
		p.font("", 10)
		for i, f := range req.Features {
			if i > 0 && p.pastMargin(bottomMargin) {
				p.newPage()
			}
			p.text(bodyX, f.Key+": "+formatValue(f.Value))
			p.y += 12
		}
	}

	if req.Notes != "" {
		p.y += 12
		if p.pastMargin(notesReserve) {
			p.newPage()
		}
		p.font("B", 12)
		p.text(headerX, "Notes:")
		p.y += 16
		p.font("", 10)
		for _, line := range splitLines(req.Notes) {
			if p.pastMargin(bottomMargin) {
				p.newPage()
			}
			p.text(bodyX, line)
			p.y += 12
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render report: %w", err)
	}
	return Document{Bytes: buf.Bytes(), Pages: pdf.PageCount()}, nil
}

// splitLines breaks on \n, \r\n and \r. A single trailing line break does not
// produce an empty final line.
func splitLines(s string) []string {
	s = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
