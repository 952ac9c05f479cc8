package formatter

import (
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBar renders value as a share of max, like ████░░░░. A zero max
// renders an empty bar.
func RenderBar(value, max int64, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if max > 0 && value > 0 {
		pct = float64(value) / float64(max)
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if value > 0 && filled == 0 {
		filled = 1
	}
	bar := strings.Repeat(filledBlock, filled)
	empty := strings.Repeat(emptyBlock, width-filled)
	return StyleGreen.Render(bar) + StyleDim.Render(empty)
}
