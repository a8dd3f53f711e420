package service

import (
	"testing"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestItemFromInput(t *testing.T) {
	checklistID := uuid.New()

	t.Run("valid line", func(t *testing.T) {
		item, err := itemFromInput("op", checklistID, ItemInput{
			Category: "exterior",
			ItemText: "  Front door locked  ",
			Status:   "done",
			Notes:    strPtr("deadbolt set"),
		})
		require.NoError(t, err)
		assert.Equal(t, checklistID, item.ChecklistID)
		assert.Equal(t, "exterior", item.Category)
		assert.Equal(t, "Front door locked", item.ItemText)
		assert.Equal(t, domain.ItemStatusDone, item.Status)
		assert.Equal(t, strPtr("deadbolt set"), item.Notes)
	})

	t.Run("existing line keeps its id", func(t *testing.T) {
		itemID := uuid.New()
		item, err := itemFromInput("op", checklistID, ItemInput{
			ID:       &itemID,
			ItemText: "Front door locked",
			Status:   "done",
		})
		require.NoError(t, err)
		assert.Equal(t, itemID, item.ID)
	})

	t.Run("new line gets nil id", func(t *testing.T) {
		item, err := itemFromInput("op", checklistID, ItemInput{ItemText: "Check pool", Status: "done"})
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, item.ID)
	})

	t.Run("blank text rejected", func(t *testing.T) {
		_, err := itemFromInput("op", checklistID, ItemInput{ItemText: "   ", Status: "done"})
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("blank status defaults to unchecked", func(t *testing.T) {
		item, err := itemFromInput("op", checklistID, ItemInput{ItemText: "Check pool"})
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusUnchecked, item.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := itemFromInput("op", checklistID, ItemInput{ItemText: "Check pool", Status: "maybe"})
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("blank category defaults to general", func(t *testing.T) {
		item, err := itemFromInput("op", checklistID, ItemInput{ItemText: "Check pool", Status: "issue"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCategory, item.Category)
	})
}
