package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/codefl0w/gh-boards/internal/domain"
)

const (
	boardWidth   = 800
	boardRowH    = 40
	boardRowGap  = 4
	boardHeaderH = 80
	boardFooterH = 60
	boardPadX    = 20
	boardBadgeW  = 80
	boardBadgeH  = 24
	boardNameMax = 45

	boardFontFamily = "Segoe UI, Helvetica, Arial, sans-serif"
)

// Download-count tiers for the per-row pill fill.
const (
	tierHigh = "#2ea44f"
	tierMid  = "#d29922"
	tierLow  = "#6e7681"

	tierText = "#ffffff"
)

// palette is the closed six-color set for one theme.
type palette struct {
	bg     string
	fg     string
	muted  string
	rowBG  string
	border string
	accent string
}

var (
	darkPalette  = palette{bg: "#0d1117", fg: "#e6edf3", muted: "#8b949e", rowBG: "#161b22", border: "#30363d", accent: "#0969da"}
	lightPalette = palette{bg: "#ffffff", fg: "#24292f", muted: "#57606a", rowBG: "#f6f8fa", border: "#d0d7de", accent: "#0969da"}
)

func paletteFor(theme string) palette {
	if strings.EqualFold(theme, "dark") {
		return darkPalette
	}
	return lightPalette
}

// TierColors returns the pill fill and text color for a download count.
func TierColors(n int) (fill, text string) {
	switch {
	case n >= 10_000:
		return tierHigh, tierText
	case n >= 1_000:
		return tierMid, tierText
	default:
		return tierLow, tierText
	}
}

// BoardParams controls board appearance.
type BoardParams struct {
	Theme     string
	ShowStars bool
}

// Board renders the repository board for user. Rows appear in the
// order given; the footer totals cover exactly the rows shown.
func Board(user string, rows []domain.RepoRecord, p BoardParams) []byte {
	pal := paletteFor(p.Theme)
	height := boardHeaderH + len(rows)*(boardRowH+boardRowGap) + boardFooterH

	var lines []string
	lines = append(lines, fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`, boardWidth, height, boardWidth, height))
	lines = append(lines, fmt.Sprintf(`<rect width="%d" height="%d" rx="10" fill="%s" stroke="%s" stroke-width="1" />`, boardWidth, height, pal.bg, pal.border))

	// Header: profile on the left, repository count on the right.
	lines = append(lines, fmt.Sprintf(`<g transform="translate(%d, 35)">`, boardPadX))
	lines = append(lines, fmt.Sprintf(`<text fill="%s" font-size="20" font-family="%s" font-weight="600">@%s</text>`, pal.fg, boardFontFamily, html.EscapeString(user)))
	lines = append(lines, fmt.Sprintf(`<text y="25" fill="%s" font-size="14" font-family="%s">Repo Statistics</text>`, pal.muted, boardFontFamily))
	lines = append(lines, `</g>`)
	lines = append(lines, fmt.Sprintf(`<text x="%d" y="30" fill="%s" font-size="12" font-family="%s" text-anchor="end">%d Repositories</text>`, boardWidth-boardPadX, pal.muted, boardFontFamily, len(rows)))

	y := boardHeaderH
	for _, row := range rows {
		pillFill, pillText := TierColors(row.Downloads)

		lines = append(lines, fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="%s"/>`, boardPadX, y, boardWidth-boardPadX*2, boardRowH, pal.rowBG))
		lines = append(lines, fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-size="14" font-family="%s" font-weight="500">%s</text>`,
			boardPadX+12, y+25, pal.fg, boardFontFamily, html.EscapeString(Truncate(row.Name, boardNameMax))))

		if p.ShowStars {
			lines = append(lines, fmt.Sprintf(`<g transform="translate(%d, %d)">`, boardWidth-210, y+12))
			lines = append(lines, fmt.Sprintf(`<path d="%s" fill="%s"/>`, starPath, pal.muted))
			lines = append(lines, fmt.Sprintf(`<text x="20" y="13" fill="%s" font-size="13" font-family="%s">%s</text>`, pal.muted, boardFontFamily, Abbreviate(row.Stars)))
			lines = append(lines, `</g>`)
		}

		bx := boardWidth - boardPadX - boardBadgeW - 10
		by := float64(y) + (boardRowH-boardBadgeH)/2.0
		lines = append(lines, fmt.Sprintf(`<rect x="%d" y="%.1f" width="%d" height="%d" rx="12" fill="%s"/>`, bx, by, boardBadgeW, boardBadgeH, pillFill))
		lines = append(lines, fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-size="12" font-weight="bold" font-family="%s" text-anchor="middle">%s</text>`,
			float64(bx)+boardBadgeW/2.0, by+16, pillText, boardFontFamily, Abbreviate(row.Downloads)))

		y += boardRowH + boardRowGap
	}

	totalDownloads, totalStars := 0, 0
	for _, row := range rows {
		totalDownloads += row.Downloads
		totalStars += row.Stars
	}
	footerY := y + 30

	lines = append(lines, fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" />`, boardPadX, y+5, boardWidth-boardPadX, y+5, pal.border))
	lines = append(lines, fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-size="16" font-family="%s" font-weight="600">TOTAL</text>`, boardPadX, footerY+10, pal.fg, boardFontFamily))

	if p.ShowStars {
		lines = append(lines, fmt.Sprintf(`<g transform="translate(%d, %d)">`, boardWidth-210, footerY-4))
		lines = append(lines, fmt.Sprintf(`<path d="%s" fill="%s"/>`, starPath, pal.muted))
		lines = append(lines, fmt.Sprintf(`<text x="22" y="14" fill="%s" font-size="14" font-family="%s">%s</text>`, pal.muted, boardFontFamily, Abbreviate(totalStars)))
		lines = append(lines, `</g>`)
	}

	lines = append(lines, fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-size="18" font-family="%s" font-weight="bold" text-anchor="end">%s</text>`,
		boardWidth-boardPadX-30, footerY+10, pal.accent, boardFontFamily, Abbreviate(totalDownloads)))
	lines = append(lines, `</svg>`)

	return []byte(strings.Join(lines, "\n"))
}

// ErrorBoard renders a minimal SVG carrying a generation error message.
func ErrorBoard(msg string) []byte {
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="60"><text x="10" y="40" font-family="sans-serif">%s</text></svg>`, html.EscapeString(msg)))
}
