// Package symbols derives a logo SymbolSet from a free-text business
// description when the caller does not supply one.
package symbols

import (
	"strings"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
)

// Default is returned when no heuristic matches.
var Default = logo.SymbolSet{
	Primary:   "abstract mark",
	Secondary: "geometric accent",
	Mood:      "modern",
}

// rule maps trigger words to symbol descriptors. Empty fields leave the
// current value alone.
type rule struct {
	keywords  []string
	primary   string
	secondary string
	mood      string
}

var industryRules = []rule{
	{keywords: []string{"tech", "software", "saas", "cloud", "ai", "data"}, primary: "circuit node", secondary: "connected lines", mood: "innovative"},
	{keywords: []string{"finance", "bank", "invest", "insurance", "fintech"}, primary: "shield", secondary: "upward arrow", mood: "trustworthy"},
	{keywords: []string{"health", "medical", "clinic", "wellness", "care"}, primary: "heart", secondary: "cross", mood: "caring"},
	{keywords: []string{"food", "restaurant", "cafe", "coffee", "bakery"}, primary: "bowl", secondary: "steam wave", mood: "warm"},
	{keywords: []string{"education", "school", "learning", "academy"}, primary: "open book", secondary: "rising star", mood: "inspiring"},
	{keywords: []string{"eco", "green", "sustainab", "environment", "solar", "energy"}, primary: "leaf", secondary: "sun circle", mood: "natural"},
	{keywords: []string{"travel", "tourism", "airline", "hotel"}, primary: "compass", secondary: "horizon line", mood: "adventurous"},
	{keywords: []string{"fitness", "sport", "gym", "athletic"}, primary: "dynamic chevron", secondary: "motion arc", mood: "energetic"},
	{keywords: []string{"creative", "design", "studio", "agency", "art"}, primary: "brush stroke", secondary: "overlapping circles", mood: "playful"},
	{keywords: []string{"legal", "law", "consult"}, primary: "pillar", secondary: "balance bar", mood: "authoritative"},
}

var descriptionRules = []rule{
	{keywords: []string{"fast", "speed", "quick", "rapid"}, secondary: "motion lines"},
	{keywords: []string{"secure", "security", "safe", "protect"}, secondary: "shield outline"},
	{keywords: []string{"global", "world", "international"}, secondary: "globe arc"},
	{keywords: []string{"community", "people", "together", "team"}, secondary: "linked rings"},
	{keywords: []string{"ocean", "water", "marine", "wave"}, primary: "wave"},
	{keywords: []string{"mountain", "outdoor", "peak", "adventure"}, primary: "mountain peak"},
	{keywords: []string{"premium", "luxury", "elegant", "boutique"}, mood: "elegant"},
	{keywords: []string{"fun", "kids", "playful", "friendly"}, mood: "playful"},
	{keywords: []string{"minimal", "simple", "clean"}, mood: "minimal"},
}

// Extract picks primary, secondary and mood descriptors from the industry
// first, then lets description keywords override individual fields.
func Extract(description, industry string) logo.SymbolSet {
	set := Default
	if r, ok := match(industryRules, industry); ok {
		set = apply(set, r)
	}
	for _, r := range descriptionRules {
		if matches(r, description) {
			set = apply(set, r)
		}
	}
	return set
}

// Complete fills empty fields of s from Extract.
func Complete(s logo.SymbolSet, description, industry string) logo.SymbolSet {
	if s.Primary != "" && s.Secondary != "" && s.Mood != "" {
		return s
	}
	derived := Extract(description, industry)
	if s.Primary == "" {
		s.Primary = derived.Primary
	}
	if s.Secondary == "" {
		s.Secondary = derived.Secondary
	}
	if s.Mood == "" {
		s.Mood = derived.Mood
	}
	return s
}

func match(rules []rule, text string) (rule, bool) {
	for _, r := range rules {
		if matches(r, text) {
			return r, true
		}
	}
	return rule{}, false
}

func matches(r rule, text string) bool {
	words := tokenize(text)
	for _, kw := range r.keywords {
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func apply(s logo.SymbolSet, r rule) logo.SymbolSet {
	if r.primary != "" {
		s.Primary = r.primary
	}
	if r.secondary != "" {
		s.Secondary = r.secondary
	}
	if r.mood != "" {
		s.Mood = r.mood
	}
	return s
}
