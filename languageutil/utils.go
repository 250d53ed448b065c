package languageutil

import (
	"hash/fnv"
	"strings"

	"wardrobeapi/outfits"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep state, so each call builds its own.
func title(s string) string { return cases.Title(language.English).String(s) }
func lower(s string) string { return cases.Lower(language.English).String(s) }

var Adjs = []string{
	"easy",
	"crisp",
	"relaxed",
	"polished",
	"breezy",
	"sharp",
	"cozy",
	"clean",
	"bold",
	"classic",
	"effortless",
	"modern",
	"weekend",
	"city",
	"soft",
	"smart",
}

// nouns per leading category
var Nouns = map[outfits.Category][]string{
	outfits.CategoryDress:  {"dress look", "silhouette", "one-piece look"},
	outfits.CategoryTop:    {"ensemble", "combo", "pairing", "look"},
	outfits.CategoryBottom: {"ensemble", "look"},
}

func pick(words []string, seed uint32) string {
	return words[int(seed%uint32(len(words)))]
}

func seedOf(items []outfits.ClothingItem) uint32 {
	h := fnv.New32a()
	for _, item := range items {
		h.Write([]byte(item.ID))
		h.Write([]byte{0})
	}
	return h.Sum32()
}

// OutfitName names a suggestion such as "Crisp Navy Ensemble". The same items
// always get the same name.
func OutfitName(items []outfits.ClothingItem) string {
	if len(items) == 0 {
		return ""
	}
	seed := seedOf(items)

	nouns, ok := Nouns[items[0].Category]
	if !ok {
		nouns = Nouns[outfits.CategoryTop]
	}

	parts := []string{pick(Adjs, seed)}
	if color := strings.TrimSpace(items[0].Color); color != "" {
		parts = append(parts, lower(color))
	}
	parts = append(parts, pick(nouns, seed>>8))
	return title(strings.Join(parts, " "))
}

// Sentence upper-cases the first letter and ends the text with a period.
func Sentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	first := []rune(text)[0]
	text = strings.ToUpper(string(first)) + text[len(string(first)):]
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}
