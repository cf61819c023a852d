package logo

import (
	"fmt"
	"regexp"
)

// SymbolSet holds short descriptors of the brand's visual identity.
type SymbolSet struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Mood      string `json:"mood"`
}

// ColorPalette is the three-color palette consumed by synthesis and review.
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that every palette entry is a #RGB or #RRGGBB color.
func (p ColorPalette) Validate() error {
	colors := []struct{ name, value string }{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"accent", p.Accent},
	}
	for _, c := range colors {
		if !hexColor.MatchString(c.value) {
			return fmt.Errorf("palette %s color %q is not a hex color", c.name, c.value)
		}
	}
	return nil
}

// DesignSpecification is the three-layer brief produced by template expansion.
// ObjectLevel and LayoutLevel are empty when the response was degraded.
type DesignSpecification struct {
	SceneLevel  string `json:"scene_level"`
	ObjectLevel string `json:"object_level"`
	LayoutLevel string `json:"layout_level"`
}

// Candidate is SVG markup that has passed Validate at least once.
type Candidate struct {
	SVGMarkup string `json:"svg_markup"`
}

// QualityScore is the review stage's verdict. Score is always within [0,10].
type QualityScore struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// AttemptResult is the unit tracked for best-of-N selection.
type AttemptResult struct {
	Candidate Candidate           `json:"candidate"`
	Template  DesignSpecification `json:"template"`
	Quality   QualityScore        `json:"quality"`
	Attempt   int                 `json:"attempt"`
	Refined   bool                `json:"refined"` // false when refinement fell back to the synthesized markup
}

// Brief bundles the inputs of one generation run.
type Brief struct {
	BusinessName string       `json:"business_name"`
	Description  string       `json:"description"`
	Industry     string       `json:"industry"`
	Symbols      SymbolSet    `json:"symbols"`
	Palette      ColorPalette `json:"palette"`
}

// short renders the brief as the one-line design summary used by refinement.
func (b Brief) short() string {
	return fmt.Sprintf("%s (%s): %s; symbols %s / %s, mood %s",
		b.BusinessName, b.Industry, b.Description, b.Symbols.Primary, b.Symbols.Secondary, b.Symbols.Mood)
}
