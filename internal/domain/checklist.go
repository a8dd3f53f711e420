// Package domain contains the core types for the home watch CRM.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Checklist Item Status
// =============================================================================

// ItemStatus is the recorded outcome for a single checklist line.
type ItemStatus string

const (
	ItemStatusDone      ItemStatus = "done"
	ItemStatusIssue     ItemStatus = "issue"
	ItemStatusNA        ItemStatus = "na"
	ItemStatusUnchecked ItemStatus = "unchecked"
)

// statusLabels maps statuses to their display labels in reports.
var statusLabels = map[ItemStatus]string{
	ItemStatusDone:      "DONE",
	ItemStatusIssue:     "ISSUE",
	ItemStatusNA:        "N/A",
	ItemStatusUnchecked: "UNCHECKED",
}

// Label returns the upper-cased display label for a status.
// Unknown or empty statuses display as UNCHECKED.
func (s ItemStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[ItemStatusUnchecked]
}

// Valid reports whether s is one of the recognized statuses.
func (s ItemStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// =============================================================================
// Categories
// =============================================================================

// CategoryOrder is the fixed display priority for known checklist
// categories. Unrecognized categories render after these, in first-seen
// order.
var CategoryOrder = []string{"exterior", "interior", "security", "lanai_pool", "final"}

// DefaultCategory is used when an item carries no category tag.
const DefaultCategory = "general"

// FormatCategoryLabel turns a category key into its display label.
func FormatCategoryLabel(key string) string {
	if key == "" {
		return "General"
	}
	if key == "lanai_pool" {
		return "Lanai / Pool"
	}
	segments := strings.Split(key, "_")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = strings.ToUpper(seg[:1]) + seg[1:]
	}
	return strings.Join(segments, " ")
}

// OrderCategories returns the keys of present, arranged canonically:
// known categories first in CategoryOrder, then the rest in the order
// they appear in firstSeen.
func OrderCategories(present map[string]bool, firstSeen []string) []string {
	ordered := make([]string, 0, len(present))
	known := make(map[string]bool, len(CategoryOrder))
	for _, key := range CategoryOrder {
		known[key] = true
		if present[key] {
			ordered = append(ordered, key)
		}
	}
	appended := make(map[string]bool)
	for _, key := range firstSeen {
		if present[key] && !known[key] && !appended[key] {
			ordered = append(ordered, key)
			appended[key] = true
		}
	}
	return ordered
}

// =============================================================================
// Records
// =============================================================================

// Checklist is one inspection visit. The Notes column carries the
// JSON-encoded metadata blob (see ChecklistMeta).
type Checklist struct {
	ID         uuid.UUID
	PropertyID *uuid.UUID
	UserID     *uuid.UUID
	VisitDate  *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveVisitDate returns the visit date, falling back to the creation
// time when no visit date was recorded.
func (c *Checklist) EffectiveVisitDate() time.Time {
	if c.VisitDate != nil {
		return *c.VisitDate
	}
	return c.CreatedAt
}

// ChecklistItem is one line entry on a checklist.
type ChecklistItem struct {
	ID          uuid.UUID
	ChecklistID uuid.UUID
	Category    string
	ItemText    string
	Status      ItemStatus
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Photos      []ChecklistPhoto
}

// CategoryKey returns the item's category tag, or DefaultCategory when
// none was recorded.
func (i *ChecklistItem) CategoryKey() string {
	if i.Category == "" {
		return DefaultCategory
	}
	return i.Category
}

// ChecklistPhoto is a photo attached to a checklist item. StoragePath is
// either a "bucket/object/path" locator or an absolute URL.
type ChecklistPhoto struct {
	ID              uuid.UUID
	ChecklistItemID uuid.UUID
	StoragePath     string
	CreatedAt       time.Time
}

// ChecklistAggregate is a checklist joined with its property, the
// property's client, and its items with photos.
type ChecklistAggregate struct {
	Checklist Checklist
	Property  *Property
	Client    *Client
	Items     []ChecklistItem
}

// GroupItemsByCategory groups items by category key and returns the
// category keys in canonical order. Within a category, items are sorted by
// label text.
func GroupItemsByCategory(items []ChecklistItem) (map[string][]ChecklistItem, []string) {
	grouped := make(map[string][]ChecklistItem)
	present := make(map[string]bool)
	var firstSeen []string
	for _, item := range items {
		key := item.CategoryKey()
		if !present[key] {
			present[key] = true
			firstSeen = append(firstSeen, key)
		}
		grouped[key] = append(grouped[key], item)
	}
	for key := range grouped {
		group := grouped[key]
		sort.Slice(group, func(a, b int) bool {
			return group[a].ItemText < group[b].ItemText
		})
	}
	return grouped, OrderCategories(present, firstSeen)
}
