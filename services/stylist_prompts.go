package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"wardrobeapi/models"
	"wardrobeapi/outfits"
)

const clothingAnalysisPrompt = `Analyze this clothing image and describe the garment. The image may show a person wearing it or the item on its own.

Return JSON with:
- name: a short display name such as "Navy linen shirt"
- category: one of top, bottom, dress, jacket, outerwear, shoes, accessory
- color: primary color, e.g. "Navy Blue", "Black", "White"
- warmth_level: one of light, medium, heavy
- tags: descriptive tags, e.g. comfortable, versatile, professional
- occasion: from Casual, Formal, Semi-Formal, Business Casual, Party, Wedding, Beach, Athletic, Interview, Date Night, Travel, Festival, Black Tie, Cocktail, Work, School, Religious Event
- style_aesthetic: from Bohemian, Minimalist, Vintage, Modern, Preppy, Grunge, Chic, Streetwear, Classic, Trendy, Edgy, Romantic, Goth, Athleisure
- formality_level: Very Casual, Casual, Smart Casual, Business Casual, Formal or Black Tie
- material_fabric: Cotton, Silk, Linen, Wool, Polyester, Denim, Leather, Chiffon, Velvet, Knit, Satin, Cashmere, Spandex, Nylon or Rayon, if identifiable
- season: from Summer, Winter, Spring, Fall, All-Season
- pattern_design: Solid, Floral, Geometric, Animal Print, Abstract, Checkered, Tie-Dye, Striped, Polka Dot or Plaid
- texture: Smooth, Rough, Soft, Structured or Flowing
- breathability: Very Breathable, Breathable, Moderate, Low or Not Breathable
- water_resistance: None, Water Repellent, Water Resistant or Waterproof
- color_intensity: Pastel, Light, Medium, Dark or Vibrant
- layering_position: Base Layer, Mid Layer, Outer Layer or Statement Piece
- condition_status: Excellent, Good, Fair or Needs Repair, judged from the visible condition
- versatility_score: 1 to 10, how many outfits the item works with
- compliment_frequency: Never, Rarely, Sometimes, Often or Always, judged from its style appeal
- brand: only if a label or logo is visible
- confidence: 0 to 1

Be thorough but realistic.`

// defaultAIConfidence is used when the model leaves confidence out.
const defaultAIConfidence = 0.8

// ClothingAnalysis is the attribute JSON the vision model answers with.
type ClothingAnalysis struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Color               string   `json:"color"`
	WarmthLevel         string   `json:"warmth_level"`
	Tags                []string `json:"tags"`
	Occasion            []string `json:"occasion"`
	StyleAesthetic      []string `json:"style_aesthetic"`
	Season              []string `json:"season"`
	FormalityLevel      string   `json:"formality_level"`
	MaterialFabric      string   `json:"material_fabric"`
	PatternDesign       string   `json:"pattern_design"`
	Texture             string   `json:"texture"`
	Breathability       string   `json:"breathability"`
	WaterResistance     string   `json:"water_resistance"`
	ColorIntensity      string   `json:"color_intensity"`
	LayeringPosition    string   `json:"layering_position"`
	ConditionStatus     string   `json:"condition_status"`
	VersatilityScore    *int     `json:"versatility_score"`
	ComplimentFrequency string   `json:"compliment_frequency"`
	Brand               string   `json:"brand"`
	Confidence          float64  `json:"confidence"`
}

// ParseClothingAnalysis decodes the model answer. Category, color and warmth
// are required; the category must be one the wardrobe knows.
func ParseClothingAnalysis(text string) (*ClothingAnalysis, error) {
	text = CleanAIResponseText(text)
	if text == "" {
		return nil, ErrEmptyAIResponse
	}

	var analysis ClothingAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("stylist: invalid analysis response: %w", err)
	}

	if strings.TrimSpace(analysis.Category) == "" || strings.TrimSpace(analysis.Color) == "" || strings.TrimSpace(analysis.WarmthLevel) == "" {
		return nil, errors.New("stylist: analysis is missing category, color or warmth_level")
	}
	if !outfits.ParseCategory(analysis.Category).Valid() {
		return nil, fmt.Errorf("stylist: unsupported category %q", analysis.Category)
	}

	if analysis.Confidence <= 0 {
		analysis.Confidence = defaultAIConfidence
	}
	analysis.Confidence = math.Min(analysis.Confidence, 1)
	if v := analysis.VersatilityScore; v != nil {
		clamped := min(max(*v, 1), 10)
		analysis.VersatilityScore = &clamped
	}
	return &analysis, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Attributes converts the analysis into an update. Values outside the known
// vocabulary are dropped by the canonical helpers.
func (a ClothingAnalysis) Attributes() models.ClothingAttributesIn {
	in := models.ClothingAttributesIn{
		Category:            optional(a.Category),
		Color:               optional(a.Color),
		WarmthLevel:         optional(a.WarmthLevel),
		Tags:                a.Tags,
		Brand:               optional(a.Brand),
		StyleAesthetic:      a.StyleAesthetic,
		Occasions:           a.Occasion,
		Season:              a.Season,
		FormalityLevel:      optional(a.FormalityLevel),
		MaterialFabric:      optional(a.MaterialFabric),
		PatternDesign:       optional(a.PatternDesign),
		ColorIntensity:      optional(a.ColorIntensity),
		Texture:             optional(a.Texture),
		WaterResistance:     optional(a.WaterResistance),
		LayeringPosition:    optional(a.LayeringPosition),
		VersatilityScore:    a.VersatilityScore,
		ConditionStatus:     optional(a.ConditionStatus),
		ComplimentFrequency: optional(a.ComplimentFrequency),
		Breathability:       optional(a.Breathability),
	}
	return in
}

// ApplyTo stores the analysis on the row. A name the owner already chose is kept.
func (a ClothingAnalysis) ApplyTo(c *models.Clothing) {
	a.Attributes().ApplyTo(c)
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(a.Name) != "" {
		c.Name = strings.TrimSpace(a.Name)
	}
	confidence := a.Confidence
	c.AIAnalyzed = true
	c.AIConfidence = &confidence
}

// OutfitPrompt is what the owner asked the stylist for.
type OutfitPrompt struct {
	Occasion        string
	Weather         *outfits.WeatherSnapshot
	Style           string
	Colors          string
	ComfortLevel    string
	AdditionalNotes string
}

func orDefault(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func describeItem(b *strings.Builder, index int, c models.Clothing) {
	versatility := 5
	if c.VersatilityScore != nil {
		versatility = *c.VersatilityScore
	}
	fmt.Fprintf(b, "ITEM_%d:\n", index+1)
	fmt.Fprintf(b, "- ID: %d\n", c.ID)
	fmt.Fprintf(b, "- Name: %s\n", c.DisplayName())
	fmt.Fprintf(b, "- Category: %s\n", c.Category)
	fmt.Fprintf(b, "- Color: %s (Intensity: %s)\n", c.Color, orDefault(c.ColorIntensity, "Medium"))
	fmt.Fprintf(b, "- Warmth: %s\n", c.WarmthLevel)
	fmt.Fprintf(b, "- Material: %s\n", orDefault(c.MaterialFabric, "Not specified"))
	fmt.Fprintf(b, "- Formality: %s\n", orDefault(c.FormalityLevel, "Casual"))
	fmt.Fprintf(b, "- Versatility Score: %d/10\n", versatility)
	fmt.Fprintf(b, "- Condition: %s\n", orDefault(c.ConditionStatus, "Good"))
	fmt.Fprintf(b, "- Occasions: %s\n", joinOr(c.Occasions, "General use"))
	fmt.Fprintf(b, "- Style: %s\n", joinOr(c.StyleAesthetic, "Versatile"))
	fmt.Fprintf(b, "- Season: %s\n", joinOr(c.Season, "All seasons"))
	fmt.Fprintf(b, "- Pattern: %s\n", orDefault(c.PatternDesign, "Solid"))
	fmt.Fprintf(b, "- Texture: %s\n", orDefault(c.Texture, "Smooth"))
	fmt.Fprintf(b, "- Breathability: %s\n", orDefault(c.Breathability, "Moderate"))
	fmt.Fprintf(b, "- Water Resistance: %s\n", orDefault(c.WaterResistance, "None"))
	fmt.Fprintf(b, "- Layering Position: %s\n", orDefault(c.LayeringPosition, "Mid Layer"))
	fmt.Fprintf(b, "- Compliment Frequency: %s\n", orDefault(c.ComplimentFrequency, "Sometimes"))
	fmt.Fprintf(b, "- Tags: %s\n", joinOr(c.Tags, "None"))
}

// BuildOutfitPrompt lists the whole wardrobe with defaults for missing
// attributes and asks for three to five outfits.
func BuildOutfitPrompt(req OutfitPrompt, clothes []models.Clothing) string {
	var b strings.Builder

	b.WriteString("Create outfit combinations using ONLY the clothing items listed below.\n\nREQUEST:\n")
	fmt.Fprintf(&b, "- Occasion: %s\n", req.Occasion)
	if w := req.Weather; w != nil {
		place := ""
		if w.City != "" {
			place = " in " + w.City
		}
		fmt.Fprintf(&b, "- Weather: %.0f°C, %s%s\n", w.Temperature, w.Condition, place)
	} else {
		b.WriteString("- Weather: Not specified\n")
	}
	fmt.Fprintf(&b, "- Style Preferences: %s\n", orDefault(&req.Style, "None specified"))
	fmt.Fprintf(&b, "- Color Preferences: %s\n", orDefault(&req.Colors, "None specified"))
	fmt.Fprintf(&b, "- Comfort Level: %s\n", orDefault(&req.ComfortLevel, "Not specified"))
	fmt.Fprintf(&b, "- Additional Notes: %s\n", orDefault(&req.AdditionalNotes, "None"))

	b.WriteString("\nAVAILABLE CLOTHING ITEMS:\n")
	for i, c := range clothes {
		if i > 0 {
			b.WriteString("\n")
		}
		describeItem(&b, i, c)
	}

	b.WriteString(`
STYLING GUIDELINES:
1. Coordinate colors using intensity and complementary or analogous schemes.
2. Match formality across every piece and to the occasion.
3. Layer by layering position: base, then mid, then outer.
4. Mix textures thoughtfully and keep to at most one bold pattern.
5. Respect the weather through warmth, breathability and water resistance.
6. Prefer items with higher versatility scores and better condition.

OUTFIT RULES:
- Each outfit has a top and a bottom, or a dress, plus shoes when available.
- Add a jacket or outerwear below 15°C or in rain or snow.
- Use the exact numeric item IDs above and nothing else.
- Create 3 to 5 outfits.

Answer with JSON: {"outfits":[{"name":"...","item_ids":[1,2,3],"reasoning":"...","style_notes":"...","confidence":0.9}],"general_tips":"..."}`)
	return b.String()
}

// itemID accepts ids written as numbers or as numeric strings.
type itemID uint

func (id *itemID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	raw = strings.TrimPrefix(strings.ToUpper(raw), "ITEM_")
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		*id = 0
		return nil
	}
	*id = itemID(v)
	return nil
}

type aiOutfitAnswer struct {
	Outfits []struct {
		Name       string   `json:"name"`
		ItemIDs    []itemID `json:"item_ids"`
		Reasoning  string   `json:"reasoning"`
		StyleNotes string   `json:"style_notes"`
		Confidence float64  `json:"confidence"`
	} `json:"outfits"`
	GeneralTips string `json:"general_tips"`
}

// ParseAIOutfits decodes the stylist answer. Ids the wardrobe does not own are
// dropped and so is every outfit left with fewer than two items.
func ParseAIOutfits(text string, known map[uint]bool) ([]models.GeneratedOutfit, string, error) {
	text = CleanAIResponseText(text)
	if text == "" {
		return nil, "", ErrEmptyAIResponse
	}

	var answer aiOutfitAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return nil, "", fmt.Errorf("stylist: invalid outfits response: %w", err)
	}

	result := make([]models.GeneratedOutfit, 0, len(answer.Outfits))
	for _, o := range answer.Outfits {
		seen := map[uint]bool{}
		var ids []uint
		for _, raw := range o.ItemIDs {
			id := uint(raw)
			if !known[id] || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if len(ids) < 2 {
			continue
		}

		confidence := o.Confidence
		if confidence <= 0 {
			confidence = defaultAIConfidence
		}
		result = append(result, models.GeneratedOutfit{
			Name:       strings.TrimSpace(o.Name),
			ItemIDs:    ids,
			Reasoning:  strings.TrimSpace(o.Reasoning),
			StyleNotes: strings.TrimSpace(o.StyleNotes),
			Confidence: math.Min(confidence, 1),
		})
	}
	return result, strings.TrimSpace(answer.GeneralTips), nil
}
