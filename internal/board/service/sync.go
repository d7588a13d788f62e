package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
	"github.com/jobhuntboard/jobhuntboard/internal/board/repository"
	"github.com/jobhuntboard/jobhuntboard/internal/identity"
	"github.com/jobhuntboard/jobhuntboard/pkg/logger"
	"github.com/jobhuntboard/jobhuntboard/pkg/metrics"
)

// State is the per-identity sync session state.
type State int

const (
	// StateIdle means no identity is present; nothing is replicated.
	StateIdle State = iota
	// StateResolving means the one-time remote pull after sign-in is running.
	StateResolving
	// StateSynced means board changes are replicated on a debounce.
	StateSynced
)

// DefaultDebounce is the quiet period before a board change is written remotely.
const DefaultDebounce = time.Second

const remoteCallTimeout = 10 * time.Second

// Syncer replicates the board to the per-user remote record while an identity
// is present.
//
// Idle -> identity acquired -> Resolving: pull the remote record; if it exists
// the in-memory board is replaced with its migrated value (remote wins, no
// merge with pre-sign-in edits), otherwise the current board is written as the
// initial record. Resolving completes before any debounce timer is armed.
//
// Synced: every board change (including the replacement produced by Resolving)
// re-arms a pure debounce timer; when it fires, only the latest board value is
// written. Sign-out cancels the pending timer; a write already in flight may
// still land afterwards, which is accepted last-write-wins behavior.
type Syncer struct {
	store    *Store
	remote   repository.Remote
	debounce time.Duration

	mu      sync.Mutex
	state   State
	sub     string
	timer   *time.Timer
	pending board.Board
	saving  bool
	gen     uint64
}

// NewSyncer wires a syncer to the store's change stream. Pass 0 to use
// DefaultDebounce.
func NewSyncer(store *Store, remote repository.Remote, debounce time.Duration) *Syncer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	y := &Syncer{store: store, remote: remote, debounce: debounce}
	store.Subscribe(y.onChange)
	return y
}

// State returns the current session state.
func (y *Syncer) State() State {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.state
}

// Saving reports whether a debounced write is pending or in flight. The
// presentation layer shows it as the 同期中 indicator.
func (y *Syncer) Saving() bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.saving
}

// HandleIdentity is the identity provider subscription callback. A nil
// identity (sign-out) returns to Idle and cancels any pending debounced write;
// a non-nil identity starts Resolving for that subject.
func (y *Syncer) HandleIdentity(id *identity.Identity) {
	y.mu.Lock()
	if y.timer != nil {
		y.timer.Stop()
		y.timer = nil
	}
	y.setSaving(false)
	if id == nil {
		y.state = StateIdle
		y.sub = ""
		y.mu.Unlock()
		return
	}
	y.state = StateResolving
	y.sub = id.Sub
	sub := id.Sub
	y.mu.Unlock()

	go y.resolve(sub)
}

// resolve performs the one-time pull for a fresh session.
func (y *Syncer) resolve(sub string) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()
	raw, err := y.remote.Load(ctx, sub)

	y.mu.Lock()
	if y.state != StateResolving || y.sub != sub {
		// identity changed while the pull was in flight; drop the result
		y.mu.Unlock()
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.RemotePulls.WithLabelValues("absent").Inc()
		y.mu.Unlock()
		current := y.store.Board()
		if err := y.remote.Save(ctx, sub, current); err != nil {
			metrics.RemoteSaves.WithLabelValues("error").Inc()
			logger.Warnf("initial remote save failed for sub=%s: %v", sub, err)
		} else {
			metrics.RemoteSaves.WithLabelValues("ok").Inc()
		}
		y.mu.Lock()
		if y.state == StateResolving && y.sub == sub {
			y.state = StateSynced
		}
		y.mu.Unlock()
	case err != nil:
		// logged only; the session still syncs later edits
		metrics.RemotePulls.WithLabelValues("error").Inc()
		logger.Warnf("remote pull failed for sub=%s: %v", sub, err)
		y.state = StateSynced
		y.mu.Unlock()
	default:
		metrics.RemotePulls.WithLabelValues("ok").Inc()
		y.state = StateSynced
		y.mu.Unlock()
		// remote wins unconditionally over any pre-sign-in local edits;
		// the replacement notifies onChange and arms the first debounce
		y.store.Replace(board.Migrate(raw))
	}
}

// onChange is the store subscription: re-arm the debounce with the newest value.
func (y *Syncer) onChange(b board.Board) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.state != StateSynced {
		return
	}
	y.pending = b
	y.gen++
	gen := y.gen
	y.setSaving(true)
	if y.timer != nil {
		y.timer.Stop()
	}
	y.timer = time.AfterFunc(y.debounce, func() { y.flush(gen) })
}

// flush writes the latest pending board. The saving indicator clears when the
// write settles, success or failure, unless a newer change re-armed the timer.
func (y *Syncer) flush(gen uint64) {
	y.mu.Lock()
	if y.state != StateSynced || gen != y.gen {
		y.mu.Unlock()
		return
	}
	b := y.pending
	sub := y.sub
	y.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()
	if err := y.remote.Save(ctx, sub, b); err != nil {
		metrics.RemoteSaves.WithLabelValues("error").Inc()
		logger.Warnf("remote save failed for sub=%s: %v", sub, err)
	} else {
		metrics.RemoteSaves.WithLabelValues("ok").Inc()
	}

	y.mu.Lock()
	if gen == y.gen {
		y.setSaving(false)
	}
	y.mu.Unlock()
}

// setSaving updates the indicator and its gauge. Caller holds y.mu.
func (y *Syncer) setSaving(v bool) {
	y.saving = v
	if v {
		metrics.SyncSaving.Set(1)
	} else {
		metrics.SyncSaving.Set(0)
	}
}
