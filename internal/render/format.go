// Package render produces the SVG artifacts: pill badges and
// multi-row repository boards.
package render

import (
	"strconv"
	"strings"
)

var magnitudeBands = []struct {
	div    int
	suffix string
}{
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "k"},
}

// Abbreviate renders a count in compact form: 950 stays "950",
// 12500 becomes "12.5k", 3200000 becomes "3.2M". A trailing ".0"
// is dropped so round values read "1k" rather than "1.0k".
func Abbreviate(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}
	for _, band := range magnitudeBands {
		if n >= band.div {
			v := strconv.FormatFloat(float64(n)/float64(band.div), 'f', 1, 64)
			return strings.TrimSuffix(v, ".0") + band.suffix
		}
	}
	return strconv.Itoa(n)
}

// Truncate shortens s to at most max characters, replacing the tail
// with an ellipsis. Lengths are counted in runes so multibyte names
// are not split mid-character.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(r[:max-1]) + "…"
}
