package app

import (
	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/monitoring"
	"github.com/ayusman/handrps/internal/render"
	"github.com/ayusman/handrps/internal/store"
)

// hooks connects the game runner to the event feed and, when configured, to
// the match store. Store failures are logged and never stop the game.
func (a *App) hooks() game.Hooks {
	return game.Hooks{
		OnSnapshot: func(snap game.Snapshot) {
			a.hub.BroadcastState(snap)
			a.notify()
		},
		OnStarted:     a.recordStart,
		OnRoundLocked: a.recordRound,
		OnFinished:    a.recordFinish,
		OnAbandoned:   a.recordAbandon,
	}
}

func (a *App) recordStart(snap game.Snapshot) {
	if a.config.Store == nil {
		return
	}
	m := &store.Match{Player: snap.Player, Rounds: snap.Rounds}
	if err := a.config.Store.Matches().Create(m); err != nil {
		monitoring.Logf("Failed to record match: %v", err)
		return
	}
	a.mu.Lock()
	a.matchID = m.ID
	a.mu.Unlock()
}

func (a *App) recordRound(snap game.Snapshot, r game.Round) {
	id := a.currentMatch()
	if id == "" {
		return
	}

	snapshot := a.thumbnail()
	rd := &store.Round{
		MatchID:  id,
		Number:   r.Number,
		Player:   r.Player.String(),
		Computer: r.Computer.String(),
		Outcome:  r.Outcome.String(),
		WristX:   r.Wrist.X,
		WristY:   r.Wrist.Y,
		Frame:    r.Frame,
		PlayedAt: r.At,
	}
	if err := a.config.Store.Rounds().Add(rd, snapshot); err != nil {
		monitoring.Logf("Failed to record round %d: %v", r.Number, err)
	}
	if err := a.config.Store.Matches().UpdateScore(id, snap.PlayerScore, snap.ComputerScore); err != nil {
		monitoring.Logf("Failed to record score: %v", err)
	}
}

func (a *App) recordFinish(snap game.Snapshot) {
	id := a.takeMatch()
	if id == "" {
		return
	}
	if err := a.config.Store.Matches().Finish(id, snap.PlayerScore, snap.ComputerScore, snap.Result); err != nil {
		monitoring.Logf("Failed to record result: %v", err)
	}
}

func (a *App) recordAbandon(game.Snapshot) {
	id := a.takeMatch()
	if id == "" {
		return
	}
	if err := a.config.Store.Matches().Abandon(id); err != nil {
		monitoring.Logf("Failed to record abandoned match: %v", err)
	}
}

func (a *App) currentMatch() string {
	if a.config.Store == nil {
		return ""
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.matchID
}

func (a *App) takeMatch() string {
	if a.config.Store == nil {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.matchID
	a.matchID = ""
	return id
}

// thumbnail shrinks the latest preview frame. It returns nil when there is
// no frame or it cannot be decoded.
func (a *App) thumbnail() []byte {
	a.mu.RLock()
	frame := a.lastFrame
	a.mu.RUnlock()
	if len(frame) == 0 {
		return nil
	}

	data, err := render.Thumbnail(frame, render.ThumbnailWidth)
	if err != nil {
		monitoring.Logf("Failed to make round thumbnail: %v", err)
		return nil
	}
	return data
}
