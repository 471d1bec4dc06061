package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoDocuments means the source directory held nothing loadable. The
	// caller must abort before touching the index: replacing a working index
	// with an empty one is worse than failing the run.
	ErrNoDocuments = errors.New("no documents found in source directory")

	// ErrLoad means a file with a recognized extension could not be decoded.
	// The whole run aborts rather than silently skipping a corrupt file.
	ErrLoad = errors.New("failed to load document")
)

// Document is one raw source unit: a plain text file, or a single page of a
// paginated format. Page is zero for plain text.
type Document struct {
	Path string
	Page int
	Text string
}

// Loader reads documents from a directory tree. Format is dispatched on file
// extension; unrecognized extensions are skipped without error.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) Load(ctx context.Context) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			doc, err := loadText(path)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		case ".pdf":
			pages, err := extractPDFPages(ctx, path)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
			}
			for i, page := range pages {
				docs = append(docs, Document{Path: path, Page: i, Text: page})
			}
		default:
			slog.Debug("skipping unrecognized extension", "path", path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, l.dir)
	}
	return docs, nil
}

func loadText(path string) (Document, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the configured source dir
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	if !utf8.Valid(raw) {
		return Document{}, fmt.Errorf("%w: %s: not valid UTF-8", ErrLoad, path)
	}
	return Document{Path: path, Text: string(raw)}, nil
}
