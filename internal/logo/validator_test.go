package logo

import (
	"errors"
	"strings"
	"testing"
)

func svgWith(shapes int) string {
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200">`)
	for i := 0; i < shapes; i++ {
		sb.WriteString(`<circle cx="100" cy="100" r="40" fill="#112233"/>`)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func TestValidateShapeCounts(t *testing.T) {
	tests := []struct {
		shapes int
		reason string
	}{
		{0, "no shape elements"},
		{1, "too few shapes"},
		{2, ""},
		{8, ""},
		{50, ""},
		{51, "too many shapes"},
	}

	for _, tt := range tests {
		err := Validate(svgWith(tt.shapes))
		if tt.reason == "" {
			if err != nil {
				t.Errorf("%d shapes: unexpected error %v", tt.shapes, err)
			}
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%d shapes: expected *ValidationError, got %v", tt.shapes, err)
		}
		if ve.Reason != tt.reason {
			t.Errorf("%d shapes: expected reason %q, got %q", tt.shapes, tt.reason, ve.Reason)
		}
	}
}

func TestValidateRuleOrder(t *testing.T) {
	// Text is checked before the viewBox.
	markup := `<svg><text x="0">A</text><rect/><rect/></svg>`
	err := Validate(markup)
	if err == nil || !strings.Contains(err.Error(), "contains text element") {
		t.Fatalf("expected text element rejection, got %v", err)
	}

	err = Validate(`<svg width="200"><rect/><rect/></svg>`)
	if err == nil || !strings.Contains(err.Error(), "missing viewBox") {
		t.Fatalf("expected missing viewBox, got %v", err)
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	markup := `<SVG VIEWBOX="0 0 200 200"><RECT width="10"/><Path d="M0 0"/></SVG>`
	if err := Validate(markup); err != nil {
		t.Fatalf("expected uppercase markup to pass, got %v", err)
	}
	if err := Validate(`<svg viewBox="0 0 1 1"><TSPAN>x</TSPAN><rect/><rect/></svg>`); err == nil {
		t.Fatal("expected TSPAN to be rejected")
	}
}

func TestValidateDoesNotCountLookalikes(t *testing.T) {
	// <pathology> and <rectangle> are not primitives.
	markup := `<svg viewBox="0 0 200 200"><pathology/><rectangle/><polyline points="0,0 1,1"/><ellipse rx="1"/></svg>`
	if got := CountShapes(markup); got != 2 {
		t.Fatalf("expected 2 shapes, got %d", got)
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := Validate(svgWith(0))
	if !errors.Is(err, ErrInvalidMarkup) {
		t.Fatalf("expected errors.Is(err, ErrInvalidMarkup), got %v", err)
	}
}
