package tui

import (
	"strings"
	"testing"

	"github.com/sortline/sortline/internal/config"
	"github.com/sortline/sortline/internal/core"
)

func TestRenderScreenPlainRowsMatchStringOutput(t *testing.T) {
	s := core.NewScreen(20, 3)
	s.DrawText(0, 0, "Belt [ 3/ 8]")
	s.DrawText(0, 1, "0 [___]  1 [___]")
	s.DrawText(0, 2, "Score 120")

	// No colored cells anywhere, so the styled renderer must emit the
	// exact same bytes as the plain dump.
	if got, want := RenderScreen(s), s.String(); got != want {
		t.Errorf("plain render diverged:\n got %q\nwant %q", got, want)
	}
}

func TestRenderScreenKeepsRuneOrderAcrossColorRuns(t *testing.T) {
	s := core.NewScreen(8, 2)
	s.DrawText(0, 0, "Score")
	s.SetColored(0, 1, glyphItem, core.ItemColor(0))
	s.SetColored(1, 1, glyphItem, core.ItemColor(0))
	s.SetColored(2, 1, glyphLocked, core.LockColor)
	s.Set(3, 1, glyphEmpty)

	out := RenderScreen(s)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("rendered %d rows, want 2", len(rows))
	}
	if !strings.Contains(rows[0], "Score") {
		t.Errorf("header row lost its text: %q", rows[0])
	}
	// Styling may add escapes around runs but never reorders or drops
	// the cell runes.
	for _, want := range []string{"●●", "#", "·"} {
		if !strings.Contains(rows[1], want) {
			t.Errorf("board row %q missing %q", rows[1], want)
		}
	}
	if strings.Index(rows[1], "●●") > strings.Index(rows[1], "#") {
		t.Errorf("board row %q emitted runs out of order", rows[1])
	}
}

func TestRenderScreenSessionFrame(t *testing.T) {
	s := NewSession(testLevel(), config.DefaultTuning(), testRuntime())
	scr := core.NewScreen(80, 24)
	s.Render(scr)

	out := RenderScreen(scr)
	if got := strings.Count(out, "\n"); got != scr.Height()-1 {
		t.Errorf("rendered frame has %d newlines, want %d", got, scr.Height()-1)
	}
	if !strings.Contains(out, "SORTLINE") {
		t.Error("rendered frame lost the header")
	}
}
