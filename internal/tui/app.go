// Package tui hosts the calculator in a terminal. It translates key presses
// into calculator events, draws the display, and shows notifications as
// toasts that disappear after notify.DismissAfter.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"go-chi-widgets/internal/calculator"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/theme"
)

const (
	boxWidth  = 32
	boxHeight = 3
	helpText  = "0-9 . + - * /  = calc  ⌫ del  c clear  t contrast  q quit"
)

// App is the terminal calculator. All methods run on the event loop
// goroutine.
type App struct {
	screen  tcell.Screen
	calc    *calculator.Controller
	theme   *theme.Manager
	toasts  *notify.Queue
	visible []notify.Notification
	display string
	logger  *zap.Logger
	now     func() time.Time
}

// New builds an App drawing on screen. The screen must already be
// initialised.
func New(screen tcell.Screen, themes *theme.Manager, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		screen:  screen,
		theme:   themes,
		toasts:  notify.NewQueue(8),
		display: "0",
		logger:  logger,
		now:     time.Now,
	}
	a.calc = calculator.NewController(
		calculator.RenderFunc(func(d string) { a.display = d }),
		notify.Multi(a.toasts, notify.LogNotifier{Logger: logger}),
	)
	return a
}

// Display returns what the calculator last rendered.
func (a *App) Display() string { return a.display }

// Run processes terminal events until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	// Expired toasts need a redraw even when no key is pressed.
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if a.expireToasts() {
				a.Draw()
			}
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
			a.Draw()
		}
	}
}

// HandleKey applies one key press. It returns false when the user asked to
// quit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		a.send(calculator.EqualsEvent())
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		a.send(calculator.DeleteEvent())
		return true
	case tcell.KeyEscape:
		a.send(calculator.ClearEvent())
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	switch {
	case r >= '0' && r <= '9':
		a.send(calculator.DigitEvent(byte(r)))
	case r == '.' || r == ',':
		a.send(calculator.DecimalEvent())
	case r == '+' || r == '-' || r == '*' || r == '/':
		a.send(calculator.OperatorEvent(calculator.Operator(r)))
	case r == 'x' || r == 'X':
		a.send(calculator.OperatorEvent(calculator.OpMultiply))
	case r == '=':
		a.send(calculator.EqualsEvent())
	case r == 'c' || r == 'C':
		a.send(calculator.ClearEvent())
	case r == 't' || r == 'T':
		a.toggleContrast()
	case r == 'q' || r == 'Q':
		return false
	}
	return true
}

func (a *App) send(ev calculator.Event) {
	if err := a.calc.Handle(ev); err != nil {
		a.logger.Warn("rejected calculator event", zap.Stringer("event", ev), zap.Error(err))
	}
	a.collectToasts()
}

func (a *App) toggleContrast() {
	if a.theme == nil {
		return
	}
	mode, err := a.theme.Toggle()
	if err != nil {
		a.logger.Error("toggle contrast", zap.Error(err))
		a.toasts.Notify("Could not save contrast mode", notify.Error)
	} else {
		a.toasts.Notify("Contrast: "+string(mode), notify.Info)
	}
	a.collectToasts()
}

func (a *App) collectToasts() {
	a.visible = append(a.visible, a.toasts.Drain()...)
	a.expireToasts()
}

// expireToasts drops dismissed toasts and reports whether any were dropped.
func (a *App) expireToasts() bool {
	now := a.now()
	kept := a.visible[:0]
	for _, n := range a.visible {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	changed := len(kept) != len(a.visible)
	a.visible = kept
	return changed
}

// Toasts returns the notifications currently on screen.
func (a *App) Toasts() []notify.Notification {
	out := make([]notify.Notification, len(a.visible))
	copy(out, a.visible)
	return out
}
