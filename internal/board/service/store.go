package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
	"github.com/jobhuntboard/jobhuntboard/internal/board/repository"
	"github.com/jobhuntboard/jobhuntboard/pkg/logger"
	"github.com/jobhuntboard/jobhuntboard/pkg/metrics"
)

// ErrNotConfirmed is returned when a destructive operation is attempted
// without the confirmation collaborator agreeing.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Confirmation prompts shown before destructive operations.
const (
	ConfirmDeleteIndustry = "この業界を削除しますか？（企業データは保持）"
	ConfirmDeleteCompany  = "この企業を削除しますか？"
)

// Confirmer is the interactive yes/no capability consulted before destructive
// operations. The HTTP layer satisfies it from an explicit client flag; tests
// plug in fakes.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Store owns the single live board for the running session. All mutations are
// serialized through it: each Apply computes the next board value, rewrites the
// local cache synchronously, then notifies subscribers (the sync engine) with
// the new value. The in-memory board stays authoritative even when the cache
// write fails.
type Store struct {
	mu        sync.Mutex
	board     board.Board
	cache     repository.Cache
	listeners []func(board.Board)
}

// NewStore loads the cached board once through migration. A cache read failure
// is logged and the migrated empty document is used.
func NewStore(ctx context.Context, cache repository.Cache) *Store {
	b, err := cache.Load(ctx)
	if err != nil {
		logger.Warnf("local cache load failed, starting from defaults: %v", err)
	}
	return &Store{board: b, cache: cache}
}

// Board returns the current document value. Callers treat it as immutable.
func (s *Store) Board() board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Subscribe registers a listener invoked after every board change with the new
// value. Listeners run under the store lock so concurrent mutations deliver
// their values in install order; they must be fast and must not call back into
// the store. Registration happens during composition, before Apply is used.
func (s *Store) Subscribe(fn func(board.Board)) {
	s.listeners = append(s.listeners, fn)
}

// Apply runs a pure mutation and installs its result. Subscribers are
// notified before the lock is released, so the last notification always
// carries the current board.
func (s *Store) Apply(mut func(board.Board) board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := mut(s.board)
	s.install(next)
	s.notify(next)
}

// ApplyErr runs a mutation that can reject its input. On error the board is
// left unchanged and nothing is persisted or notified.
func (s *Store) ApplyErr(mut func(board.Board) (board.Board, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := mut(s.board)
	if err != nil {
		return err
	}
	s.install(next)
	s.notify(next)
	return nil
}

// Replace installs a full replacement document, e.g. the migrated remote
// record after sign-in. It persists and notifies like any other mutation.
func (s *Store) Replace(b board.Board) {
	s.Apply(func(board.Board) board.Board { return b })
}

// AddIndustry appends a trimmed industry name, rejecting duplicates.
func (s *Store) AddIndustry(name string) error {
	return s.ApplyErr(func(b board.Board) (board.Board, error) {
		return b.AddIndustry(name)
	})
}

// DeleteIndustry removes the industry at index after confirmation. Companies
// referencing the name are left untouched.
func (s *Store) DeleteIndustry(index int, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ConfirmDeleteIndustry) {
		return ErrNotConfirmed
	}
	s.Apply(func(b board.Board) board.Board { return b.DeleteIndustry(index) })
	return nil
}

// DeleteCompany removes the company with the given id after confirmation.
func (s *Store) DeleteCompany(id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ConfirmDeleteCompany) {
		return ErrNotConfirmed
	}
	s.Apply(func(b board.Board) board.Board { return b.DeleteCompany(id) })
	return nil
}

// install persists the new board to the local cache, swallowing failures.
// Caller holds s.mu.
func (s *Store) install(next board.Board) {
	s.board = next
	if err := s.cache.Save(context.Background(), next); err != nil {
		metrics.CacheSaveFailures.Inc()
		logger.Warnf("local cache save failed: %v", err)
	}
}

// notify delivers the new value to subscribers. Caller holds s.mu.
func (s *Store) notify(b board.Board) {
	for _, fn := range s.listeners {
		fn(b)
	}
}
