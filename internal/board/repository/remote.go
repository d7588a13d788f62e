package repository

import (
	"context"
	"errors"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
)

// ErrNotFound is returned by Remote.Load when no record exists for the subject.
var ErrNotFound = errors.New("board record not found")

// Remote is the per-user remote document store: one record per authenticated
// identity, keyed by the stable OIDC subject. Load returns the raw stored
// document so the caller can run migration over it; Save replaces the whole
// record (last write wins, no merge).
type Remote interface {
	Load(ctx context.Context, sub string) (map[string]any, error)
	Save(ctx context.Context, sub string, b board.Board) error
}
