package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"receipt-mailer/config"
	"receipt-mailer/internal/model"

	"github.com/divan/num2words"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

const (
	fontFamily        = "Helvetica"
	fontSize          = 10.0
	lineHeight        = 12.0 // pt between wrapped baselines
	defaultWidthRatio = 0.6
)

// metadataDate pins the PDF creation/modification metadata so identical
// inputs produce byte-identical receipts.
var metadataDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// FieldPosition places one field on the template page. Coordinates are
// fractions of the page size; MaxWidth is in points (0 means 60% of the
// page width).
type FieldPosition struct {
	XPct     float64 `json:"x_pct"`
	YPct     float64 `json:"y_pct"`
	MaxWidth float64 `json:"max_width"`
}

// Layout is the position spec file. Origin "top-left" flips the vertical
// axis; anything else means bottom-left.
type Layout struct {
	Origin string                   `json:"origin"`
	Fields map[string]FieldPosition `json:"fields"`
}

func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions %s: %w", path, err)
	}
	layout := &Layout{}
	if err := json.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("parse positions %s: %w", path, err)
	}
	for key, pos := range layout.Fields {
		if pos.XPct < 0 || pos.XPct > 1 || pos.YPct < 0 || pos.YPct > 1 {
			return nil, fmt.Errorf("position for %q out of range: percentages must be within [0,1]", key)
		}
	}
	return layout, nil
}

// Renderer stamps normalized field values over a copy of the template
// page and writes one merged single-page PDF per student.
type Renderer struct {
	templatePath string
	cfg          *config.Run
	layout       *Layout
}

func New(templatePath string, cfg *config.Run, layout *Layout) *Renderer {
	return &Renderer{templatePath: templatePath, cfg: cfg, layout: layout}
}

func (r *Renderer) Render(s model.StudentPayment, outputPath string) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(metadataDate)
	pdf.SetModificationDate(metadataDate)

	imp, tpl, pageW, pageH, err := r.importTemplate(pdf)
	if err != nil {
		return err
	}

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: pageW, Ht: pageH})
	imp.UseImportedTemplate(pdf, tpl, 0, 0, pageW, pageH)
	pdf.SetFont(fontFamily, "", fontSize)

	fields := []struct {
		key   string
		value string
	}{
		{"receipt_number", s.ReceiptNumber},
		{"date", s.Date},
		{"received_from", s.Name},
		{"amount", s.Amount},
		{"amount_words", r.amountWords(s)},
		{"payment_method", s.PaymentMethod},
		{"contribution_period", r.cfg.Semester},
		{"authorized_by", r.cfg.FromName},
	}
	for _, f := range fields {
		r.place(pdf, pageW, pageH, f.key, f.value)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("write receipt %s: %w", outputPath, err)
	}
	return nil
}

// importTemplate brings page 1 of the template into pdf and reports its
// MediaBox size. A fresh importer per call keeps template object names
// stable, so identical renders stay byte-identical. gofpdi panics on
// unreadable input, hence the recover.
func (r *Renderer) importTemplate(pdf *fpdf.Fpdf) (imp *gofpdi.Importer, tpl int, w, h float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			imp, tpl, w, h = nil, 0, 0, 0
			err = fmt.Errorf("read pdf template %s: %v", r.templatePath, p)
		}
	}()
	imp = gofpdi.NewImporter()
	tpl = imp.ImportPage(pdf, r.templatePath, 1, "/MediaBox")
	box, ok := imp.GetPageSizes()[1]["/MediaBox"]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return nil, 0, 0, 0, errors.New("pdf template has no pages")
	}
	return imp, tpl, box["w"], box["h"], nil
}

// place word-wraps value to the field's max width and draws the lines at
// descending baselines. Fields absent from the layout are skipped.
func (r *Renderer) place(pdf *fpdf.Fpdf, pageW, pageH float64, key, value string) {
	pos, ok := r.layout.Fields[key]
	if !ok {
		return
	}
	maxWidth := pos.MaxWidth
	if maxWidth <= 0 {
		maxWidth = pageW * defaultWidthRatio
	}
	x := pageW * pos.XPct
	y := baselineY(r.layout.Origin, pageH, pos.YPct)
	for _, line := range pdf.SplitText(value, maxWidth) {
		pdf.Text(x, y, line)
		y += lineHeight
	}
}

// baselineY converts the spec's y percentage to fpdf's top-down
// coordinate. The position spec defaults to a bottom-left origin.
func baselineY(origin string, pageH, yPct float64) float64 {
	if origin == "top-left" {
		return pageH * yPct
	}
	return pageH - pageH*yPct
}

// amountWords prefers the configured amount_words and otherwise spells
// out the numeric amount with the currency code.
func (r *Renderer) amountWords(s model.StudentPayment) string {
	if r.cfg.AmountWords != "" {
		return r.cfg.AmountWords
	}
	if s.AmountValue == nil {
		return ""
	}
	words := num2words.Convert(int(math.Round(*s.AmountValue)))
	if words == "" {
		return ""
	}
	words = strings.ToUpper(words[:1]) + words[1:]
	return words + " " + r.cfg.Currency
}
