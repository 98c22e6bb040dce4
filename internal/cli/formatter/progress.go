package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders part/whole as a bar like ████░░░░  45%.
func RenderShare(part, whole int64, width int) string {
	var pct float64
	if whole > 0 {
		pct = float64(part) / float64(whole)
	}
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)+0.5), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	return fmt.Sprintf("%s %3.0f%%", StyleBlue.Render(bar), pct*100)
}
