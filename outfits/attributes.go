package outfits

import "strings"

// enumNames maps an enum value to its canonical label. Index 0 is the
// unspecified value and never matches a label.
type enumNames []string

var labelNormalizer = strings.NewReplacer("_", " ", "-", " ")

func (n enumNames) label(i int) string {
	if i <= 0 || i >= len(n) {
		return ""
	}
	return n[i]
}

func (n enumNames) parse(s string) int {
	s = strings.Join(strings.Fields(labelNormalizer.Replace(s)), " ")
	if s == "" {
		return 0
	}
	for i := 1; i < len(n); i++ {
		if strings.EqualFold(labelNormalizer.Replace(n[i]), s) {
			return i
		}
	}
	return 0
}

type Category int

const (
	CategoryUnspecified Category = iota
	CategoryTop
	CategoryBottom
	CategoryDress
	CategoryJacket
	CategoryOuterwear
	CategoryShoes
	CategoryAccessory
)

var categoryNames = enumNames{"", "top", "bottom", "dress", "jacket", "outerwear", "shoes", "accessory"}

// Categories lists every recognized category in display order.
var Categories = []Category{
	CategoryTop, CategoryBottom, CategoryDress, CategoryJacket,
	CategoryOuterwear, CategoryShoes, CategoryAccessory,
}

func ParseCategory(s string) Category { return Category(categoryNames.parse(s)) }
func (c Category) String() string     { return categoryNames.label(int(c)) }
func (c Category) Valid() bool        { return c != CategoryUnspecified && c.String() != "" }

type WarmthLevel int

const (
	WarmthUnspecified WarmthLevel = iota
	WarmthLight
	WarmthMedium
	WarmthHeavy
)

var warmthNames = enumNames{"", "light", "medium", "heavy"}

func ParseWarmthLevel(s string) WarmthLevel { return WarmthLevel(warmthNames.parse(s)) }
func (w WarmthLevel) String() string        { return warmthNames.label(int(w)) }
func (w WarmthLevel) Valid() bool           { return w != WarmthUnspecified && w.String() != "" }

// Score is the numeric insulation used by weather fit. Unknown levels count as light.
func (w WarmthLevel) Score() float64 {
	switch w {
	case WarmthMedium:
		return 2
	case WarmthHeavy:
		return 3
	default:
		return 1
	}
}

// FormalityLevel is ordered from Very Casual to Black Tie.
type FormalityLevel int

const (
	FormalityUnspecified FormalityLevel = iota
	FormalityVeryCasual
	FormalityCasual
	FormalitySmartCasual
	FormalityBusinessCasual
	FormalityFormal
	FormalityBlackTie
)

var formalityNames = enumNames{"", "Very Casual", "Casual", "Smart Casual", "Business Casual", "Formal", "Black Tie"}

func ParseFormalityLevel(s string) FormalityLevel { return FormalityLevel(formalityNames.parse(s)) }
func (f FormalityLevel) String() string           { return formalityNames.label(int(f)) }

// rank falls back to Casual when the level is unknown.
func (f FormalityLevel) rank() int {
	if f.String() == "" {
		return int(FormalityCasual)
	}
	return int(f)
}

// LayeringPosition is ordered from Base Layer to Statement Piece.
type LayeringPosition int

const (
	LayeringUnspecified LayeringPosition = iota
	LayeringBase
	LayeringMid
	LayeringOuter
	LayeringStatement
)

var layeringNames = enumNames{"", "Base Layer", "Mid Layer", "Outer Layer", "Statement Piece"}

func ParseLayeringPosition(s string) LayeringPosition {
	return LayeringPosition(layeringNames.parse(s))
}
func (l LayeringPosition) String() string { return layeringNames.label(int(l)) }

func (l LayeringPosition) rankOr(fallback LayeringPosition) int {
	if l.String() == "" {
		return int(fallback)
	}
	return int(l)
}

type WaterResistance int

const (
	WaterResistanceUnspecified WaterResistance = iota
	WaterResistanceNone
	WaterResistanceRepellent
	WaterResistanceResistant
	WaterResistanceWaterproof
)

var waterResistanceNames = enumNames{"", "None", "Water Repellent", "Water Resistant", "Waterproof"}

func ParseWaterResistance(s string) WaterResistance {
	return WaterResistance(waterResistanceNames.parse(s))
}
func (w WaterResistance) String() string { return waterResistanceNames.label(int(w)) }

// Protective reports whether the garment offers any water protection.
// An absent value reads as None.
func (w WaterResistance) Protective() bool {
	return w == WaterResistanceRepellent || w == WaterResistanceResistant || w == WaterResistanceWaterproof
}

type ColorIntensity int

const (
	ColorIntensityUnspecified ColorIntensity = iota
	ColorIntensityPastel
	ColorIntensityLight
	ColorIntensityMedium
	ColorIntensityDark
	ColorIntensityVibrant
)

var colorIntensityNames = enumNames{"", "Pastel", "Light", "Medium", "Dark", "Vibrant"}

func ParseColorIntensity(s string) ColorIntensity {
	return ColorIntensity(colorIntensityNames.parse(s))
}
func (c ColorIntensity) String() string { return colorIntensityNames.label(int(c)) }

func (c ColorIntensity) orMedium() ColorIntensity {
	if c.String() == "" {
		return ColorIntensityMedium
	}
	return c
}

type ConditionStatus int

const (
	ConditionUnspecified ConditionStatus = iota
	ConditionExcellent
	ConditionGood
	ConditionFair
	ConditionNeedsRepair
)

var conditionNames = enumNames{"", "Excellent", "Good", "Fair", "Needs Repair"}

func ParseConditionStatus(s string) ConditionStatus {
	return ConditionStatus(conditionNames.parse(s))
}
func (c ConditionStatus) String() string { return conditionNames.label(int(c)) }

type ComplimentFrequency int

const (
	ComplimentsUnspecified ComplimentFrequency = iota
	ComplimentsNever
	ComplimentsRarely
	ComplimentsSometimes
	ComplimentsOften
	ComplimentsAlways
)

var complimentNames = enumNames{"", "Never", "Rarely", "Sometimes", "Often", "Always"}

func ParseComplimentFrequency(s string) ComplimentFrequency {
	return ComplimentFrequency(complimentNames.parse(s))
}
func (c ComplimentFrequency) String() string { return complimentNames.label(int(c)) }

type Breathability int

const (
	BreathabilityUnspecified Breathability = iota
	BreathabilityVeryBreathable
	BreathabilityBreathable
	BreathabilityModerate
	BreathabilityLow
	BreathabilityNotBreathable
)

var breathabilityNames = enumNames{"", "Very Breathable", "Breathable", "Moderate", "Low", "Not Breathable"}

func ParseBreathability(s string) Breathability { return Breathability(breathabilityNames.parse(s)) }
func (b Breathability) String() string          { return breathabilityNames.label(int(b)) }

func (b Breathability) breathable() bool {
	return b == BreathabilityVeryBreathable || b == BreathabilityBreathable
}
