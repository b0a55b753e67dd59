package viz

import (
	"fmt"
	"math"
	"strconv"
)

// Qualitative colorway of the dark dashboard theme.
var groupColors = []string{
	"636efa", "ef553b", "00cc96", "ab63fa", "ffa15a",
	"19d3f3", "ff6692", "b6e880", "ff97ff", "fecb52",
}

// Viridis stops used for continuous color keys.
var scaleStops = []string{"440154", "3b528b", "21918c", "5ec962", "fde725"}

// GroupColor returns the "#rrggbb" color of the i-th categorical group.
func GroupColor(i int) string {
	return "#" + groupHex(i)
}

func groupHex(i int) string {
	if i < 0 {
		i = -i
	}
	return groupColors[i%len(groupColors)]
}

// ScaleColor returns the "#rrggbb" key color at position t in [0, 1].
func ScaleColor(t float64) string {
	t = math.Max(0, math.Min(1, t))
	return "#" + scaleStops[int(math.Round(t*float64(len(scaleStops)-1)))]
}

func formatValue(v float64) string {
	if math.Abs(v) >= 1e6 || (v != 0 && math.Abs(v) < 1e-3) {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func tickLabel(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatValue(f)
	}
	return fmt.Sprintf("%v", v)
}
