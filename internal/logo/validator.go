package logo

import "regexp"

const (
	// MinShapes is the fewest shape primitives a real mark can have.
	MinShapes = 2
	// MaxShapes bounds noisy output. Synthesis aims for 2-8; this is the safety net.
	MaxShapes = 50
)

var (
	textElement    = regexp.MustCompile(`(?i)<(?:text|tspan|textpath)[\s/>]`)
	viewBoxAttr    = regexp.MustCompile(`(?i)\sviewbox\s*=`)
	shapePrimitive = regexp.MustCompile(`(?i)<(?:rect|circle|ellipse|path|polygon|polyline)[\s/>]`)
)

// Validate checks a candidate SVG document against the structural contract.
// Rules run in order and the first failure wins: no text elements, a viewBox
// is declared, at least one shape primitive, and between MinShapes and
// MaxShapes primitives in total.
func Validate(markup string) error {
	if textElement.MatchString(markup) {
		return &ValidationError{Reason: "contains text element"}
	}
	if !viewBoxAttr.MatchString(markup) {
		return &ValidationError{Reason: "missing viewBox"}
	}
	n := CountShapes(markup)
	switch {
	case n == 0:
		return &ValidationError{Reason: "no shape elements"}
	case n < MinShapes:
		return &ValidationError{Reason: "too few shapes"}
	case n > MaxShapes:
		return &ValidationError{Reason: "too many shapes"}
	}
	return nil
}

// CountShapes counts rect, circle, ellipse, path, polygon and polyline tags.
func CountShapes(markup string) int {
	return len(shapePrimitive.FindAllStringIndex(markup, -1))
}
