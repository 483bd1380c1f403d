package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sortline/sortline/internal/core"
)

// ansiCodes maps screen colors onto terminal palette indexes. Item
// glyphs live in the bright range so belt, lane, and board cells read
// the same; ColorDefault is absent on purpose and renders unstyled.
var ansiCodes = map[core.Color]string{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

var styleCache = map[core.Color]lipgloss.Style{}

// styleFor returns the style for a color, building it on first use.
// Locked cells render faint so obstacles stand apart from live items
// even on terminals that flatten the gray.
func styleFor(c core.Color) lipgloss.Style {
	if st, ok := styleCache[c]; ok {
		return st
	}
	st := lipgloss.NewStyle()
	if code, ok := ansiCodes[c]; ok {
		st = st.Foreground(lipgloss.Color(code))
	}
	if c == core.LockColor {
		st = st.Faint(true)
	}
	styleCache[c] = st
	return st
}

// RenderScreen flattens a session's screen buffer into terminal output.
// Each row is emitted as same-color runs so a mostly-plain frame costs
// only a handful of escape sequences; default-colored runs bypass
// styling entirely and come out as the bare runes.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		renderRow(&sb, s.RowCells(y))
	}
	return sb.String()
}

func renderRow(sb *strings.Builder, cells []core.ScreenCell) {
	for start := 0; start < len(cells); {
		color := cells[start].Color
		end := start + 1
		for end < len(cells) && cells[end].Color == color {
			end++
		}

		var run strings.Builder
		for _, c := range cells[start:end] {
			run.WriteRune(c.Rune)
		}
		if color == core.ColorDefault {
			sb.WriteString(run.String())
		} else {
			sb.WriteString(styleFor(color).Render(run.String()))
		}
		start = end
	}
}
