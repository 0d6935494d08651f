// Package tray provides a system tray menu showing the last gesture and the
// match score.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
)

// Tray represents the system tray application.
type Tray struct {
	onOpen func()
	onQuit func()
	mu     sync.RWMutex

	lastGesture gesture.Kind
	game        game.Snapshot

	// Menu items stored for later updates
	menuLastGesture *systray.MenuItem
	menuScore       *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnOpen sets the callback function to be called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("HandRPS")
	systray.SetTooltip("Rock Paper Scissors")

	t.mu.Lock()
	t.menuLastGesture = systray.AddMenuItem(gestureTitle(t.lastGesture), "Last confirmed gesture")
	t.menuLastGesture.Disable()
	t.menuScore = systray.AddMenuItem(scoreTitle(t.game), "Current match")
	t.menuScore.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit HandRPS")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Update refreshes the menu with the last gesture and the current match.
// It may be called before Run.
func (t *Tray) Update(last gesture.Kind, snap game.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastGesture = last
	t.game = snap
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(gestureTitle(last))
	}
	if t.menuScore != nil {
		t.menuScore.SetTitle(scoreTitle(snap))
	}
}

func gestureTitle(k gesture.Kind) string {
	if k == gesture.None {
		return "Last: none"
	}
	return "Last: " + k.String()
}

func scoreTitle(s game.Snapshot) string {
	switch s.State {
	case game.Idle:
		return "No match"
	case game.Finished:
		return s.Result
	}
	return fmt.Sprintf("%s %d : %d Computer (round %d/%d)", s.Player, s.PlayerScore, s.ComputerScore, s.Round, s.Rounds)
}
