package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
	"github.com/jobhuntboard/jobhuntboard/pkg/logger"
)

// File is one candidate from the external file picker: metadata up front,
// content read lazily as a base64 data URL.
type File interface {
	Name() string
	Size() int64
	ContentType() string
	ReadDataURL(ctx context.Context) (string, error)
}

// AttachFiles processes a picked batch. Each file is handled independently:
// oversized files are skipped, the rest are read concurrently and appended to
// the board as each individual read completes, so the stored order follows
// read completion, not submission. When at least one file was skipped the
// batch returns board.ErrFileTooLarge exactly once; the caller surfaces it as
// the "some files were too large" warning.
func (s *Store) AttachFiles(ctx context.Context, files []File) error {
	var tooLarge bool
	for _, f := range files {
		if f.Size() > board.MaxFileSize {
			tooLarge = true
			continue
		}
		go s.readAndAppend(ctx, f)
	}
	if tooLarge {
		return board.ErrFileTooLarge
	}
	return nil
}

func (s *Store) readAndAppend(ctx context.Context, f File) {
	dataURL, err := f.ReadDataURL(ctx)
	if err != nil {
		logger.Warnf("file read failed for %q: %v", f.Name(), err)
		return
	}
	att := board.FileAttachment{
		ID:      board.NewID(),
		Name:    f.Name(),
		Size:    f.Size(),
		Type:    f.ContentType(),
		DataURL: dataURL,
	}
	s.Apply(func(b board.Board) board.Board { return b.AddFile(att) })
}

// MemoryFile is a File whose content is already in memory. The HTTP layer
// builds these from multipart uploads; tests build them directly.
type MemoryFile struct {
	FileName string
	MIME     string
	Content  []byte
}

func (m MemoryFile) Name() string        { return m.FileName }
func (m MemoryFile) Size() int64         { return int64(len(m.Content)) }
func (m MemoryFile) ContentType() string { return m.MIME }

func (m MemoryFile) ReadDataURL(ctx context.Context) (string, error) {
	mime := m.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(m.Content)), nil
}
