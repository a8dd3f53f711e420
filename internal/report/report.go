// Package report generates checklist PDF reports.
package report

import (
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
)

// =============================================================================
// Report Data
// =============================================================================

// GalleryPhoto is a resolved image attachment destined for the report's
// photo gallery, tagged with its checklist item for grouping.
type GalleryPhoto struct {
	Filename    string
	Content     []byte
	ContentType string
	CategoryKey string
	ItemLabel   string
}

// ChecklistData aggregates everything the renderer needs for one report.
// Snapshot fields come from the checklist's metadata blob with live
// client/property rows as fallback; callers resolve that priority before
// rendering.
type ChecklistData struct {
	ClientName  string // falls back to "Not specified"
	Address     string // falls back to "Not provided"
	Inspector   string // falls back to "Not recorded"
	VisitDate   time.Time
	ClientPhone string // optional
	ClientEmail string // optional

	CompanyPhone string
	CompanyEmail string

	Comments string
	Meta     domain.ChecklistMeta

	Items  []domain.ChecklistItem
	Photos []GalleryPhoto

	// Logo holds the company logo image bytes; nil when the asset could
	// not be read, in which case the header renders without it.
	Logo []byte
}

// FormatVisitDate renders a visit date the way the reports and email
// subjects do: US locale date, no time.
func FormatVisitDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1/2/2006")
}
