package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/go-pdf/fpdf"
)

// =============================================================================
// PDF Generator
// =============================================================================

// Layout constants in points (Letter page, 50pt margins, matching the
// paper checklist the reports replace).
const (
	pageMargin = 50.0

	logoMaxWidth  = 220.0
	logoMaxHeight = 90.0
	imagePadding  = 18.0

	galleryImageMaxHeight = 300.0

	// Minimum remaining vertical space required before starting each
	// gallery block; anything less forces a page break.
	categoryHeaderSpace = 80.0
	itemHeaderSpace     = 60.0
	photoBlockSpace     = 340.0
)

// PDFGenerator generates checklist PDF reports.
type PDFGenerator struct {
	pageWidth    float64
	pageHeight   float64
	margin       float64
	contentWidth float64
	logger       *slog.Logger
}

// NewPDFGenerator creates a new PDF generator with default settings.
func NewPDFGenerator(logger *slog.Logger) *PDFGenerator {
	pageWidth := 612.0 // Letter width in pt
	return &PDFGenerator{
		pageWidth:    pageWidth,
		pageHeight:   792.0, // Letter height in pt
		margin:       pageMargin,
		contentWidth: pageWidth - (2 * pageMargin),
		logger:       logger,
	}
}

// Generate creates the checklist PDF and writes it to the provided writer.
// Per-asset failures (logo, individual photos) degrade gracefully; any
// other generation error fails the whole call with no partial output.
func (g *PDFGenerator) Generate(ctx context.Context, data *ChecklistData, w io.Writer) (int64, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")

	pdf.SetTitle("Home Watch Checklist - "+data.ClientName, true)
	pdf.SetCreator("Home Watch CRM", true)
	pdf.SetMargins(g.margin, g.margin, g.margin)
	pdf.SetAutoPageBreak(true, g.margin)
	pdf.AddPage()

	g.addHeader(pdf, data)
	g.addVisitSummary(pdf, data)
	g.addChecklistBody(pdf, data)
	g.addTemperatures(pdf, data)
	g.addComments(pdf, data)

	if len(data.Photos) > 0 {
		g.addPhotoGallery(pdf, data)
	}

	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf generation error: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("pdf output error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Header
// =============================================================================

func (g *PDFGenerator) addHeader(pdf *fpdf.Fpdf, data *ChecklistData) {
	if len(data.Logo) > 0 {
		if !g.drawCenteredImage(pdf, "logo", data.Logo, logoMaxWidth, logoMaxHeight, imagePadding) {
			g.logger.Warn("checklist PDF could not embed logo image")
		}
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(g.contentWidth, 22, "Basic Home Watch Checklist", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(g.contentWidth, 12, "PROPERTY INSPECTIONS & SERVICES", "", 1, "C", false, 0, "")
	pdf.CellFormat(g.contentWidth, 12, "Phone: "+data.CompanyPhone, "", 1, "C", false, 0, "")
	pdf.CellFormat(g.contentWidth, 12, "Email: "+data.CompanyEmail, "", 1, "C", false, 0, "")
	pdf.Ln(10)
}

// =============================================================================
// Visit Summary
// =============================================================================

func (g *PDFGenerator) addVisitSummary(pdf *fpdf.Fpdf, data *ChecklistData) {
	pdf.SetFont("Helvetica", "", 12)

	visitDate := FormatVisitDate(data.VisitDate)
	if visitDate == "" {
		visitDate = "Not recorded"
	}

	lines := []string{
		"Client Name: " + data.ClientName,
		"Address: " + data.Address,
		"Date of Arrival: " + visitDate,
		"Inspector: " + data.Inspector,
	}
	if data.ClientPhone != "" {
		lines = append(lines, "Client Phone: "+data.ClientPhone)
	}
	if data.ClientEmail != "" {
		lines = append(lines, "Client Email: "+data.ClientEmail)
	}

	for _, line := range lines {
		pdf.MultiCell(g.contentWidth, 15, line, "", "L", false)
	}
	pdf.Ln(8)
}

// =============================================================================
// Checklist Body
// =============================================================================

func (g *PDFGenerator) addChecklistBody(pdf *fpdf.Fpdf, data *ChecklistData) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(g.contentWidth, 14, "Exterior / Interior Checklist", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(g.contentWidth, 11,
		"Visual review and ensure mechanicals are in working order. Status values: DONE, ISSUE, N/A, UNCHECKED.",
		"", "L", false)
	pdf.Ln(6)

	grouped, ordered := domain.GroupItemsByCategory(data.Items)

	for _, categoryKey := range ordered {
		pdf.SetFont("Helvetica", "U", 12)
		pdf.CellFormat(g.contentWidth, 15, domain.FormatCategoryLabel(categoryKey), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		for _, item := range grouped[categoryKey] {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(g.contentWidth, 13, fmt.Sprintf("[%s] %s", item.Status.Label(), item.ItemText), "", "L", false)
			if notes := domain.StringValue(item.Notes); notes != "" {
				pdf.SetFont("Helvetica", "", 9)
				pdf.SetTextColor(85, 85, 85)
				pdf.SetX(g.margin + 12)
				pdf.MultiCell(g.contentWidth-12, 11, "Notes: "+notes, "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(2)
		}
		pdf.Ln(5)
	}
}

// =============================================================================
// Temperatures
// =============================================================================

// zoneDisplay maps temperature zones to their report labels.
var zoneDisplay = map[domain.TemperatureZone]string{
	domain.ZoneGarage:      "Garage / Storage",
	domain.ZoneMainFloor:   "Main Floor",
	domain.ZoneSecondFloor: "2nd Floor / 2nd Zone",
	domain.ZoneThirdFloor:  "3rd Floor",
}

func (g *PDFGenerator) addTemperatures(pdf *fpdf.Fpdf, data *ChecklistData) {
	// The section only appears when at least one zone has a reading;
	// present zones then show all four rows.
	if !data.Meta.HasTemperatures() {
		return
	}

	pdf.SetFont("Helvetica", "U", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(g.contentWidth, 15, "Interior Temperature Levels", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	for _, zone := range domain.Zones {
		value := "Not recorded"
		if v := data.Meta.Temperature(zone); v != nil {
			value = *v
		}
		pdf.CellFormat(g.contentWidth, 13, fmt.Sprintf("%s: %s", zoneDisplay[zone], value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// =============================================================================
// Comments
// =============================================================================

func (g *PDFGenerator) addComments(pdf *fpdf.Fpdf, data *ChecklistData) {
	pdf.SetFont("Helvetica", "U", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(g.contentWidth, 15, "Comments and Photos", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(85, 85, 85)
	pdf.MultiCell(g.contentWidth, 11,
		fmt.Sprintf("PROPERTY INSPECTIONS & SERVICES - Phone: %s - Email: %s", data.CompanyPhone, data.CompanyEmail),
		"", "L", false)
	pdf.Ln(3)

	comments := strings.TrimSpace(data.Comments)
	if comments == "" {
		comments = "None provided."
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(g.contentWidth, 13, comments, "", "L", false)
}

// =============================================================================
// Photo Gallery
// =============================================================================

func (g *PDFGenerator) addPhotoGallery(pdf *fpdf.Fpdf, data *ChecklistData) {
	// The gallery manages its own page breaks so the title can repeat on
	// every continuation page.
	pdf.SetAutoPageBreak(false, 0)
	defer pdf.SetAutoPageBreak(true, g.margin)

	galleryTitle := func() {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(g.contentWidth, 20, "Inspection Photos", "", 1, "C", false, 0, "")
		pdf.Ln(10)
	}

	ensureSpace := func(required float64) {
		if pdf.GetY()+required > g.pageHeight-g.margin {
			pdf.AddPage()
			galleryTitle()
		}
	}

	pdf.AddPage()
	galleryTitle()

	grouped := make(map[string][]GalleryPhoto)
	present := make(map[string]bool)
	var firstSeen []string
	for _, photo := range data.Photos {
		key := photo.CategoryKey
		if key == "" {
			key = domain.DefaultCategory
		}
		if !present[key] {
			present[key] = true
			firstSeen = append(firstSeen, key)
		}
		grouped[key] = append(grouped[key], photo)
	}

	photoIndex := 0
	for _, categoryKey := range domain.OrderCategories(present, firstSeen) {
		ensureSpace(categoryHeaderSpace)

		pdf.SetFont("Helvetica", "U", 13)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(g.contentWidth, 16, domain.FormatCategoryLabel(categoryKey), "", 1, "L", false, 0, "")
		pdf.Ln(5)

		// Group by item label in first-seen order within the category.
		byItem := make(map[string][]GalleryPhoto)
		var itemOrder []string
		for _, photo := range grouped[categoryKey] {
			label := photo.ItemLabel
			if label == "" {
				label = "Checklist Item"
			}
			if _, ok := byItem[label]; !ok {
				itemOrder = append(itemOrder, label)
			}
			byItem[label] = append(byItem[label], photo)
		}

		for _, itemLabel := range itemOrder {
			ensureSpace(itemHeaderSpace)
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(g.contentWidth, 14, itemLabel, "", 1, "L", false, 0, "")
			pdf.Ln(3)

			for _, photo := range byItem[itemLabel] {
				ensureSpace(photoBlockSpace)
				photoIndex++
				name := fmt.Sprintf("photo-%d", photoIndex)
				if !g.drawCenteredImage(pdf, name, photo.Content, g.contentWidth, galleryImageMaxHeight, imagePadding) {
					g.logger.Warn("checklist PDF failed to embed inspection photo", "filename", photo.Filename)
					pdf.SetFont("Helvetica", "", 9)
					pdf.SetTextColor(185, 28, 28)
					pdf.CellFormat(g.contentWidth, 12, "Unable to display this photo in the PDF.", "", 1, "L", false, 0, "")
					pdf.Ln(6)
					pdf.SetTextColor(0, 0, 0)
				}
			}

			pdf.Ln(4)
		}

		pdf.Ln(8)
	}
}

// =============================================================================
// Image Helpers
// =============================================================================

// fpdfImageType maps a decoded image format to the type tag fpdf expects.
// Only formats fpdf can embed are listed; anything else is rejected
// before registration so a bad asset can't poison the document.
func fpdfImageType(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	}
	return ""
}

// drawCenteredImage embeds an image centered in the content area, scaled
// to fit within widthLimit x heightLimit without upscaling. Returns false
// when the image cannot be decoded or embedded; the document stays valid
// either way.
func (g *PDFGenerator) drawCenteredImage(pdf *fpdf.Fpdf, name string, content []byte, widthLimit, heightLimit, padding float64) bool {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return false
	}
	imageType := fpdfImageType(format)
	if imageType == "" {
		return false
	}

	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(content))
	if info == nil || pdf.Err() {
		// Clear the sticky error so one bad asset doesn't poison the
		// rest of the document.
		pdf.ClearError()
		return false
	}

	maxWidth := widthLimit
	if g.contentWidth < maxWidth {
		maxWidth = g.contentWidth
	}

	// Pixel dimensions are treated as points at 72dpi; only the aspect
	// ratio matters for the fit.
	w := float64(cfg.Width)
	h := float64(cfg.Height)
	scale := maxWidth / w
	if s := heightLimit / h; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}

	targetWidth := w * scale
	targetHeight := h * scale
	x := g.margin + (g.contentWidth-targetWidth)/2
	y := pdf.GetY()

	pdf.ImageOptions(name, x, y, targetWidth, targetHeight, false, opts, 0, "")
	if pdf.Err() {
		pdf.ClearError()
		return false
	}
	pdf.SetY(y + targetHeight + padding)
	return true
}
