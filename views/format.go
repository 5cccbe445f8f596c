package views

import "strconv"

// formatFloat trims values to what CSS timing and positions need.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
