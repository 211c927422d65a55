package tui

import (
	"github.com/gdamore/tcell/v2"

	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/theme"
)

type palette struct {
	base    tcell.Style
	border  tcell.Style
	display tcell.Style
	muted   tcell.Style
	toast   map[notify.Severity]tcell.Style
}

var normalPalette = palette{
	base:    tcell.StyleDefault,
	border:  tcell.StyleDefault.Foreground(tcell.ColorGray),
	display: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	muted:   tcell.StyleDefault.Foreground(tcell.ColorGray),
	toast: map[notify.Severity]tcell.Style{
		notify.Info:    tcell.StyleDefault.Background(tcell.NewHexColor(0x3b82f6)).Foreground(tcell.ColorWhite),
		notify.Success: tcell.StyleDefault.Background(tcell.NewHexColor(0x10b981)).Foreground(tcell.ColorWhite),
		notify.Error:   tcell.StyleDefault.Background(tcell.NewHexColor(0xef4444)).Foreground(tcell.ColorWhite),
	},
}

var highContrastPalette = palette{
	base:    tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
	border:  tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorYellow).Bold(true),
	display: tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorYellow).Bold(true),
	muted:   tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
	toast: map[notify.Severity]tcell.Style{
		notify.Info:    tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack).Bold(true),
		notify.Success: tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack).Bold(true),
		notify.Error:   tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack).Bold(true),
	},
}

func (a *App) palette() palette {
	if a.theme != nil && a.theme.Mode() == theme.High {
		return highContrastPalette
	}
	return normalPalette
}

// Draw renders the whole screen.
func (a *App) Draw() {
	p := a.palette()
	s := a.screen

	s.SetStyle(p.base)
	s.Clear()

	drawBox(s, 0, 0, boxWidth, boxHeight, p.border)

	// Right-aligned like a pocket calculator; overflow keeps the tail.
	text := []rune(a.display)
	inner := boxWidth - 4
	if len(text) > inner {
		text = text[len(text)-inner:]
	}
	drawText(s, boxWidth-2-len(text), 1, string(text), p.display)

	drawText(s, 0, boxHeight, helpText, p.muted)

	for i, n := range a.visible {
		style, ok := p.toast[n.Severity]
		if !ok {
			style = p.toast[notify.Info]
		}
		drawText(s, 0, boxHeight+2+i, " "+n.Message+" ", style)
	}

	s.Show()
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawBox(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, tcell.RuneHLine, nil, style)
		s.SetContent(i, y+h-1, tcell.RuneHLine, nil, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, tcell.RuneVLine, nil, style)
		s.SetContent(x+w-1, j, tcell.RuneVLine, nil, style)
	}
	s.SetContent(x, y, tcell.RuneULCorner, nil, style)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, nil, style)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, style)
}
