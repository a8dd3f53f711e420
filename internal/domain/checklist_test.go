package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusLabel(t *testing.T) {
	tests := []struct {
		status ItemStatus
		want   string
	}{
		{ItemStatusDone, "DONE"},
		{ItemStatusIssue, "ISSUE"},
		{ItemStatusNA, "N/A"},
		{ItemStatusUnchecked, "UNCHECKED"},
		{ItemStatus(""), "UNCHECKED"},
		{ItemStatus("garbage"), "UNCHECKED"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.Label(), "status %q", tt.status)
	}
}

func TestItemStatusValid(t *testing.T) {
	assert.True(t, ItemStatusDone.Valid())
	assert.True(t, ItemStatusNA.Valid())
	assert.False(t, ItemStatus("").Valid())
	assert.False(t, ItemStatus("DONE").Valid())
}

func TestFormatCategoryLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "General"},
		{"exterior", "Exterior"},
		{"lanai_pool", "Lanai / Pool"},
		{"unknown_cat", "Unknown Cat"},
		{"final", "Final"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCategoryLabel(tt.key), "key %q", tt.key)
	}
}

func TestGroupItemsByCategory_CanonicalOrder(t *testing.T) {
	items := []ChecklistItem{
		{Category: "final", ItemText: "Lock up"},
		{Category: "zeta_zone", ItemText: "Check zeta"},
		{Category: "exterior", ItemText: "Walk perimeter"},
		{Category: "alpha_zone", ItemText: "Check alpha"},
		{Category: "exterior", ItemText: "Check roof"},
	}

	grouped, order := GroupItemsByCategory(items)

	// Known categories first in fixed order, then unknowns in first-seen
	// order regardless of name.
	assert.Equal(t, []string{"exterior", "final", "zeta_zone", "alpha_zone"}, order)

	// Items sort by label within a category.
	assert.Equal(t, "Check roof", grouped["exterior"][0].ItemText)
	assert.Equal(t, "Walk perimeter", grouped["exterior"][1].ItemText)
}

func TestGroupItemsByCategory_DefaultCategory(t *testing.T) {
	items := []ChecklistItem{
		{Category: "", ItemText: "Untagged item"},
	}

	grouped, order := GroupItemsByCategory(items)
	assert.Equal(t, []string{"general"}, order)
	assert.Len(t, grouped["general"], 1)
}

func TestEffectiveVisitDate(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	visit := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	withVisit := Checklist{VisitDate: &visit, CreatedAt: created}
	assert.Equal(t, visit, withVisit.EffectiveVisitDate())

	withoutVisit := Checklist{CreatedAt: created}
	assert.Equal(t, created, withoutVisit.EffectiveVisitDate())
}
