package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/codefl0w/gh-boards/internal/domain"
)

const (
	badgeHeight     = 20
	badgeFontSize   = 11
	badgePad        = 6
	badgeIconGap    = 5
	badgeIconHeight = 14.0
	minValueWidth   = 30.0

	badgeFontFamily = "Verdana,Geneva,DejaVu Sans,sans-serif"
)

const (
	// DefaultBadgeColor fills the value segment unless overridden.
	DefaultBadgeColor = "#2ea44f"
	// DefaultLabelColor fills the label segment unless overridden.
	DefaultLabelColor = "#555"

	errorBadgeColor = "#e05d44"
)

// BadgeParams controls badge appearance. Zero values select the
// badge type's default label and the standard pill colors.
type BadgeParams struct {
	Type       string
	Label      string
	Color      string
	LabelColor string
	TextStyle  string
}

// textWidth estimates rendered text width for the badge font: a
// per-character approximation scaled by font size.
func textWidth(s string) float64 {
	return float64(len([]rune(s))) * badgeFontSize * 0.62
}

// Badge renders a two-segment pill badge: an icon-and-label segment
// and a value segment, each padded on both sides. Counts are
// abbreviated, labels render verbatim. The value segment never
// shrinks below its width floor.
func Badge(value domain.BadgeValue, p BadgeParams) []byte {
	kind := kindFor(p.Type)

	label := p.Label
	if label == "" {
		label = kind.label
	}
	color := p.Color
	if color == "" {
		color = DefaultBadgeColor
	}
	labelColor := p.LabelColor
	if labelColor == "" {
		labelColor = DefaultLabelColor
	}
	fontWeight := "normal"
	if p.TextStyle == "bold" {
		fontWeight = "bold"
	}
	fontStyle := "normal"
	if p.TextStyle == "italic" {
		fontStyle = "italic"
	}

	valueText := value.Label()
	if !value.IsLabel() {
		valueText = Abbreviate(value.Count())
	}

	scale, iconW := iconGeometry(kind.icon)
	labelW := badgePad + iconW + badgeIconGap + textWidth(label) + badgePad
	valueW := badgePad + textWidth(valueText) + badgePad
	if valueW < minValueWidth {
		valueW = minValueWidth
	}
	totalW := labelW + valueW

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%d">`, totalW, badgeHeight)

	// Segment halves, then two square rects to hide the rounded join.
	fmt.Fprintf(&b, `<rect width="%.0f" height="%d" rx="3" fill="%s"/>`, labelW, badgeHeight, html.EscapeString(labelColor))
	fmt.Fprintf(&b, `<rect x="%.0f" width="%.0f" height="%d" rx="3" fill="%s"/>`, labelW, valueW, badgeHeight, html.EscapeString(color))
	fmt.Fprintf(&b, `<rect x="%.0f" width="6" height="%d" fill="%s"/>`, labelW-3, badgeHeight, html.EscapeString(labelColor))
	fmt.Fprintf(&b, `<rect x="%.0f" width="3" height="%d" fill="%s"/>`, labelW, badgeHeight, html.EscapeString(color))

	iconY := (badgeHeight - badgeIconHeight) / 2
	fmt.Fprintf(&b, `<g transform="translate(%d,%.1f) scale(%.4g)"><path d="%s" fill="#fff"/></g>`, badgePad, iconY, scale, kind.icon.Path)

	textX := badgePad + iconW + badgeIconGap
	textY := badgeHeight/2 + badgeFontSize*0.36
	fmt.Fprintf(&b, `<text x="%.0f" y="%.1f" fill="#fff" font-family="%s" font-size="%d" font-weight="%s" font-style="%s">%s</text>`,
		textX, textY, badgeFontFamily, badgeFontSize, fontWeight, fontStyle, html.EscapeString(label))
	fmt.Fprintf(&b, `<text x="%.0f" y="%.1f" fill="#fff" font-family="%s" font-size="%d" font-weight="%s" font-style="%s" text-anchor="middle">%s</text>`,
		labelW+valueW/2, textY, badgeFontFamily, badgeFontSize, fontWeight, fontStyle, html.EscapeString(valueText))

	b.WriteString(`</svg>`)
	return b.Bytes()
}

// ErrorBadge renders a single-segment red badge carrying a short
// diagnostic message.
func ErrorBadge(msg string) []byte {
	const w = 250
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, w, badgeHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" rx="3" fill="%s"/>`, w, badgeHeight, errorBadgeColor)
	fmt.Fprintf(&b, `<text x="%d" y="14" fill="#fff" font-family="sans-serif" font-size="%d" text-anchor="middle">%s</text>`, w/2, badgeFontSize, html.EscapeString(msg))
	b.WriteString(`</svg>`)
	return b.Bytes()
}
