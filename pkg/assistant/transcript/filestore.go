package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("transcript: exchange not found")
var ErrAlreadyExists = errors.New("transcript: exchange already exists")

// FileStore is a local file-system store for transcript files, one Markdown
// file per exchange.
type FileStore struct {
	dir string
}

// NewFileStore creates a transcript store rooted at dir, creating it if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("transcript: init directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) pathForID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("transcript: invalid exchange id (empty)")
	}
	dir, err := filepath.Abs(fs.dir)
	if err != nil {
		return "", fmt.Errorf("transcript: abs dir: %w", err)
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("transcript: invalid exchange id %q (contains path separator)", id)
	}
	resolved := filepath.Join(dir, id+".md")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("transcript: path traversal detected for id %q", id)
	}
	return resolved, nil
}

// Write persists a new exchange to disk. It writes atomically via a
// temporary file and is append-only: writing an ID already present on disk
// returns ErrAlreadyExists.
func (fs *FileStore) Write(_ context.Context, e *Exchange) error {
	if err := e.Meta.Validate(); err != nil {
		return err
	}
	b, err := e.Encode()
	if err != nil {
		return err
	}
	path, err := fs.pathForID(e.Meta.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("transcript: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("transcript: atomic rename %s: %w", path, err)
	}
	return nil
}

// Read retrieves an exchange by ID. It returns ErrNotFound if it does not
// exist.
func (fs *FileStore) Read(_ context.Context, id string) (*Exchange, error) {
	path, err := fs.pathForID(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", path, err)
	}
	e := new(Exchange)
	if err := e.Decode(b); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns all valid exchanges ordered by ask time. Corrupt or
// unreadable files are skipped automatically.
func (fs *FileStore) List(_ context.Context) ([]*Exchange, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("transcript: list %s: %w", fs.dir, err)
	}
	var out []*Exchange
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		path := filepath.Join(fs.dir, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("transcript: skipping unreadable file", "path", path, "err", err)
			continue
		}
		e := new(Exchange)
		if err := e.Decode(b); err != nil {
			slog.Debug("transcript: skipping corrupt file", "path", path, "err", err)
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta.AskedAt.Before(out[j].Meta.AskedAt)
	})
	return out, nil
}
