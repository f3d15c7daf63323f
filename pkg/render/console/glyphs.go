package console

// glyphSet holds the branch-drawing glyphs for tree indentation.
// Every entry is three cells wide so sibling columns line up.
type glyphSet struct {
	branch     string // child with following siblings
	vertical   string // continuation under a branch
	lastBranch string // final child
	blank      string // continuation under a final child
}

// arrowSet holds the left/right diff-arrow glyphs, each with a
// trailing space.
type arrowSet struct {
	left  string
	right string
}

var (
	unicodeGlyphs = glyphSet{branch: "├─ ", vertical: "│  ", lastBranch: "└─ ", blank: "   "}
	asciiGlyphs   = glyphSet{branch: "|- ", vertical: "|  ", lastBranch: "`- ", blank: "   "}

	unicodeArrows = arrowSet{left: "◀ ", right: "▶ "}
	asciiArrows   = arrowSet{left: "< ", right: "> "}
)

// glyphsFor selects the glyph tables for the configured text mode.
func glyphsFor(unicode bool) (glyphSet, arrowSet) {
	if unicode {
		return unicodeGlyphs, unicodeArrows
	}
	return asciiGlyphs, asciiArrows
}
