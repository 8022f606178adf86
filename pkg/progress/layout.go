package progress

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// layout.go divides the terminal line between the label, the bar, and
// the ETA field, degrading the label first when columns run out.

const (
	// minBarWidth is the floor below which the bar never shrinks, even
	// on absurdly narrow terminals.
	minBarWidth = 10

	// whitespace is the separating space on each side of the bar.
	whitespace = 2

	defaultFallbackWidth = 80
)

// geometry is the per-tick division of the terminal line.
type geometry struct {
	labelWidth int // columns granted to the left field; 0 omits it
	barWidth   int // total bar columns, borders included
}

// computeGeometry splits screen columns between the left field (label or
// percentage), the bar, and the ETA field. The bar absorbs whatever the
// screen has to spare but never drops below minBarWidth; past that point
// the label is truncated or dropped. The bar and the ETA field are never
// sacrificed: the numeric and temporal information outranks the label.
func computeGeometry(screen, labelCols, etaCols int) geometry {
	barWidth := screen - labelCols - etaCols - whitespace
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	labelWidth := labelCols
	if labelCols+barWidth+etaCols+whitespace > screen {
		labelWidth = screen - barWidth - etaCols - whitespace
		if labelWidth < 0 {
			labelWidth = 0
		}
	}

	return geometry{labelWidth: labelWidth, barWidth: barWidth}
}

// interiorCells is the number of fill cells between the bar borders.
// Wide border or fill glyphs consume their display width from the same
// column budget.
func interiorCells(barWidth int, f Format) int {
	cells := (barWidth - f.borderCols()) / f.fillCols()
	if cells < 0 {
		cells = 0
	}
	return cells
}

// filledCells is how many interior cells are drawn filled. Ceiling
// rounding keeps any nonzero progress visible, and completion fills the
// interior exactly regardless of floating-point rounding.
func filledCells(cells int, value, max int64) int {
	if cells <= 0 || max <= 0 || value <= 0 {
		return 0
	}
	if value >= max {
		return cells
	}
	filled := int(math.Ceil(float64(cells) * float64(value) / float64(max)))
	if filled > cells {
		filled = cells
	}
	return filled
}

// truncateLabel trims a label to its granted column budget.
func truncateLabel(label string, cols int) string {
	if cols <= 0 {
		return ""
	}
	if runewidth.StringWidth(label) <= cols {
		return label
	}
	return runewidth.Truncate(label, cols, "")
}
