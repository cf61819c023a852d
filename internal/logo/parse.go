package logo

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseStatus tells whether a free-text response had the expected structure.
type ParseStatus string

const (
	// Recognized means at least one section marker was found.
	Recognized ParseStatus = "recognized"
	// Degraded means no marker was found; the raw text is kept as the scene layer.
	Degraded ParseStatus = "degraded"
)

// SpecParse is the tagged result of parsing a template expansion response.
type SpecParse struct {
	Status ParseStatus
	Spec   DesignSpecification
	Raw    string
}

var (
	sceneMarker  = sectionMarker("scene")
	objectMarker = sectionMarker("object")
	layoutMarker = sectionMarker("layout")
)

// sectionMarker matches "SCENE LEVEL:" with optional markdown decoration,
// e.g. "## Scene Level:" or "**SCENE-LEVEL**:".
func sectionMarker(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:#+\s*)?(?:\*\*)?` + name + `[ _-]level(?:\*\*)?\s*:(?:\*\*)?`)
}

// ParseDesignSpecification splits a template response into its three layers.
// Markers are searched in order; each layer runs from its marker to the next
// marker found, or to the end of the text. Never fails: a response with no
// markers comes back Degraded with the whole text as the scene layer.
func ParseDesignSpecification(raw string) SpecParse {
	type hit struct{ start, end int }
	find := func(re *regexp.Regexp, from int) *hit {
		loc := re.FindStringIndex(raw[from:])
		if loc == nil {
			return nil
		}
		return &hit{start: from + loc[0], end: from + loc[1]}
	}

	scene := find(sceneMarker, 0)
	from := 0
	if scene != nil {
		from = scene.end
	}
	object := find(objectMarker, from)
	if object != nil {
		from = object.end
	}
	layout := find(layoutMarker, from)

	if scene == nil && object == nil && layout == nil {
		return SpecParse{
			Status: Degraded,
			Spec:   DesignSpecification{SceneLevel: strings.TrimSpace(raw)},
			Raw:    raw,
		}
	}

	hits := []*hit{scene, object, layout}
	section := func(i int) string {
		h := hits[i]
		if h == nil {
			return ""
		}
		end := len(raw)
		for _, next := range hits[i+1:] {
			if next != nil {
				end = next.start
				break
			}
		}
		return cleanSection(raw[h.end:end])
	}

	spec := DesignSpecification{
		SceneLevel:  section(0),
		ObjectLevel: section(1),
		LayoutLevel: section(2),
	}
	if scene == nil {
		first := len(raw)
		for _, h := range hits {
			if h != nil && h.start < first {
				first = h.start
			}
		}
		spec.SceneLevel = cleanSection(raw[:first])
	}
	return SpecParse{Status: Recognized, Spec: spec, Raw: raw}
}

func cleanSection(s string) string {
	return strings.Trim(s, "*# \t\r\n")
}

var svgBlock = regexp.MustCompile(`(?is)<svg[\s>].*?</svg>`)

// ExtractSVG returns the first complete <svg>...</svg> block in text.
func ExtractSVG(text string) (string, bool) {
	m := svgBlock.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// DefaultQuality is used when a review is unavailable or unparseable.
const DefaultQuality = 7.0

var (
	scoreMarker    = regexp.MustCompile(`(?i)score\s*(?:\*\*)?\s*[:=]\s*(?:\*\*)?\s*(-?\d+(?:\.\d+)?)`)
	feedbackMarker = regexp.MustCompile(`(?i)feedback\s*(?:\*\*)?\s*[:=]`)
)

// ParseReview extracts the score and feedback from a review response. The
// bool reports whether a usable score was found; when it is false the score
// is DefaultQuality. Scores outside [0,10] are treated as unparseable.
func ParseReview(raw string) (QualityScore, bool) {
	q := QualityScore{Score: DefaultQuality, Feedback: strings.TrimSpace(raw)}

	// Feedback runs to the end of the text or to a SCORE marker after it.
	if loc := feedbackMarker.FindStringIndex(raw); loc != nil {
		rest := raw[loc[1]:]
		if next := scoreMarker.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		if fb := cleanSection(rest); fb != "" {
			q.Feedback = fb
		}
	}

	m := scoreMarker.FindStringSubmatch(raw)
	if m == nil {
		return q, false
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil || score < 0 || score > 10 {
		return q, false
	}
	q.Score = score
	return q, true
}
