package logo

import (
	"fmt"
	"strings"
)

const templateSystemPrompt = `You are a senior brand identity designer. Turn a short business brief into a three-layer design specification for a simple vector symbol mark.

Answer with exactly these three sections, in this order:

SCENE LEVEL: what objects appear in the mark and what idea they express (one or two sentences).
OBJECT LEVEL: what each object is made of, described as basic geometric shapes (circles, rectangles, ellipses, polygons, simple paths).
LAYOUT LEVEL: where each object sits on a 200x200 canvas, how the objects overlap or align, and which palette role (primary, secondary, accent) colors each shape.

The mark is a pure symbol. Never include letters, words or typography.`

const synthesisSystemPrompt = `You are an expert SVG logo engineer. Write a single SVG document that implements the design specification you are given.

Hard constraints:
- Use only these elements: <rect>, <circle>, <ellipse>, <path>, <polygon>, optionally grouped with <g>.
- Every <path> has at most 20 path commands.
- No <text>, <tspan> or any other text element. No letters or words.
- 2 to 8 shapes in total.
- The root element is <svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200">.
- Use only the three palette colors given, as hex values in fill or stroke.
- No external references, images, scripts, filters or fonts.

Return only the SVG markup, starting with <svg and ending with </svg>.`

const refineSystemPrompt = `You are an SVG logo art director. Critique the logo you are given against its design brief, then return an improved version.

Keep the same constraints: only <rect>, <circle>, <ellipse>, <path>, <polygon> (and <g>), at most 20 commands per path, 2 to 8 shapes, no text elements, viewBox="0 0 200 200", palette colors only.

Reply with one short critique paragraph followed by the complete improved SVG, starting with <svg and ending with </svg>.`

const reviewSystemPrompt = `You are a strict logo design critic. Score the logo from 0 to 10 for clarity, balance, memorability, scalability and fit with the business.

Be demanding. Most competent logos score between 6 and 8. Reserve 9 and 10 for exceptional, distinctive work. Scores below 5 are for broken or incoherent marks.

Answer in exactly this format:
SCORE: <number>
FEEDBACK: <2-3 sentences explaining the score>`

func templateUserPrompt(b Brief) string {
	return fmt.Sprintf(`Business name: %s
Industry: %s
Description: %s
Primary symbol: %s
Secondary symbol: %s
Mood: %s`,
		b.BusinessName, b.Industry, b.Description, b.Symbols.Primary, b.Symbols.Secondary, b.Symbols.Mood)
}

func synthesisUserPrompt(spec DesignSpecification, p ColorPalette) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Design specification\n\nScene level:\n%s\n", spec.SceneLevel)
	if spec.ObjectLevel != "" {
		fmt.Fprintf(&sb, "\nObject level:\n%s\n", spec.ObjectLevel)
	}
	if spec.LayoutLevel != "" {
		fmt.Fprintf(&sb, "\nLayout level:\n%s\n", spec.LayoutLevel)
	}
	fmt.Fprintf(&sb, "\nPalette: primary %s, secondary %s, accent %s", p.Primary, p.Secondary, p.Accent)
	return sb.String()
}

func refineUserPrompt(markup, brief string, iteration, total int) string {
	return fmt.Sprintf("Refinement iteration %d of %d.\n\nDesign brief: %s\n\nCurrent logo:\n%s",
		iteration, total, brief, markup)
}

func reviewUserPrompt(markup, businessName string) string {
	return fmt.Sprintf("Business: %s\n\nLogo SVG:\n%s", businessName, markup)
}
