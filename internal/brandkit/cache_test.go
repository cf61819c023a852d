package brandkit

import (
	"testing"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
)

func TestFingerprintNormalizesInput(t *testing.T) {
	a := logo.Brief{
		BusinessName: "Acme Cloud",
		Description:  "Hosting",
		Industry:     "Technology",
		Palette:      logo.ColorPalette{Primary: "#1A2B3C", Secondary: "#ffffff", Accent: "#F5A623"},
	}
	b := a
	b.BusinessName = "  acme cloud "
	b.Palette.Primary = "#1a2b3c"

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Expected case and whitespace differences to share a fingerprint")
	}
	if len(Fingerprint(a)) != 64 {
		t.Errorf("Expected hex sha256, got %q", Fingerprint(a))
	}
}

func TestFingerprintSeparatesFields(t *testing.T) {
	a := logo.Brief{BusinessName: "ab", Description: "c"}
	b := logo.Brief{BusinessName: "a", Description: "bc"}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Expected field boundaries to change the fingerprint")
	}

	c := a
	c.Symbols.Mood = "playful"
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("Expected symbols to change the fingerprint")
	}
}
