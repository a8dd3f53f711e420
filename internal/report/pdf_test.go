package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tinyPNG returns a minimal valid PNG for embedding tests.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func strPtr(s string) *string {
	return &s
}

func sampleData() *ChecklistData {
	return &ChecklistData{
		ClientName:   "Pat Smith",
		Address:      "12 Palm Way",
		Inspector:    "Alex Rivera",
		VisitDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CompanyPhone: "239.572.2025",
		CompanyEmail: "info@239homeservices.com",
		Comments:     "Pool pump humming",
		Items: []domain.ChecklistItem{
			{Category: "exterior", ItemText: "Front door", Status: domain.ItemStatusDone},
			{Category: "exterior", ItemText: "Roof line", Status: domain.ItemStatusIssue, Notes: strPtr("Loose tile")},
			{Category: "interior", ItemText: "A/C running", Status: domain.ItemStatusDone},
		},
	}
}

func TestGenerate_ProducesPDF(t *testing.T) {
	g := NewPDFGenerator(testLogger())

	var buf bytes.Buffer
	n, err := g.Generate(context.Background(), sampleData(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should start with a PDF header")
}

func TestGenerate_NoLogoStillRenders(t *testing.T) {
	g := NewPDFGenerator(testLogger())
	data := sampleData()
	data.Logo = nil

	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), data, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerate_WithGallery(t *testing.T) {
	g := NewPDFGenerator(testLogger())
	data := sampleData()
	data.Photos = []GalleryPhoto{
		{
			Filename:    "door.png",
			Content:     tinyPNG(t),
			ContentType: "image/png",
			CategoryKey: "exterior",
			ItemLabel:   "Front door",
		},
	}

	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), data, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerate_CorruptPhotoDegradesGracefully(t *testing.T) {
	g := NewPDFGenerator(testLogger())
	data := sampleData()
	data.Photos = []GalleryPhoto{
		{Filename: "broken.jpg", Content: []byte("definitely not an image"), CategoryKey: "exterior", ItemLabel: "Front door"},
		{Filename: "fine.png", Content: tinyPNG(t), CategoryKey: "exterior", ItemLabel: "Front door"},
	}

	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), data, &buf)
	require.NoError(t, err, "one bad asset must not fail the document")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerate_CorruptLogoDegradesGracefully(t *testing.T) {
	g := NewPDFGenerator(testLogger())
	data := sampleData()
	data.Logo = []byte("not a real image")

	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), data, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerate_TemperatureSection(t *testing.T) {
	g := NewPDFGenerator(testLogger())
	data := sampleData()
	data.Meta = domain.ChecklistMeta{GarageTemp: strPtr("78")}

	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), data, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFormatVisitDate(t *testing.T) {
	assert.Equal(t, "", FormatVisitDate(time.Time{}))
	assert.Equal(t, "1/15/2026", FormatVisitDate(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12/3/2025", FormatVisitDate(time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)))
}
