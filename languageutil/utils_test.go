package languageutil

import (
	"strings"
	"testing"

	"wardrobeapi/outfits"

	"github.com/stretchr/testify/assert"
)

func TestOutfitName(t *testing.T) {
	items := []outfits.ClothingItem{
		{ID: "1", Category: outfits.CategoryTop, Color: "NAVY blue"},
		{ID: "2", Category: outfits.CategoryBottom, Color: "Khaki"},
	}

	name := OutfitName(items)
	assert.Equal(t, name, OutfitName(items))
	assert.Contains(t, name, "Navy Blue")
	assert.Equal(t, 4, len(strings.Fields(name)))

	dress := OutfitName([]outfits.ClothingItem{{ID: "9", Category: outfits.CategoryDress}})
	assert.NotContains(t, dress, "  ")
	assert.Empty(t, OutfitName(nil))
}

func TestSentence(t *testing.T) {
	assert.Equal(t, "Layer up today.", Sentence(" layer up today"))
	assert.Equal(t, "Ready?", Sentence("ready?"))
	assert.Equal(t, "Ölçülü görünüş.", Sentence("ölçülü görünüş"))
	assert.Empty(t, Sentence("  "))
}
