package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Workspace scopes the files written during one provider attempt. The pipeline keeps the
// files when the attempt succeeds and removes them when it fails, so a provider that dies
// mid-write never leaves an orphan behind.
type Workspace struct {
	dir    string
	prefix string

	mu    sync.Mutex
	seq   int
	files []string
}

func newWorkspace(dir, base, provider string) *Workspace {
	return &Workspace{
		dir:    dir,
		prefix: base + "_" + Slug(provider, 20),
	}
}

// NewWorkspace creates a standalone workspace rooted at dir. Providers get theirs from the
// pipeline; this is for callers that run a provider directly.
func NewWorkspace(dir string, req Request, provider string) *Workspace {
	return newWorkspace(dir, fileBase(req, time.Now()), provider)
}

// Path reserves a new unique file path with the given extension and tracks it.
// The file itself is not created.
func (w *Workspace) Path(ext string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace dir: %w", err)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%d%s", w.prefix, w.seq, ext))
	w.files = append(w.files, path)
	return path, nil
}

// Create creates a new tracked file with the given extension.
func (w *Workspace) Create(ext string) (*os.File, error) {
	path, err := w.Path(ext)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// WriteFile writes data to a new tracked file and returns its path.
func (w *Workspace) WriteFile(ext string, data []byte) (string, error) {
	f, err := w.Create(ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}

// discard removes every tracked file. Missing files are not an error.
func (w *Workspace) discard() error {
	w.mu.Lock()
	files := w.files
	w.files = nil
	w.mu.Unlock()

	var errs []error
	for _, path := range files {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fileBase builds the per-request name stem: a slug of the most descriptive parameter,
// a timestamp and a prefix of the request ID.
func fileBase(req Request, now time.Time) string {
	label := string(req.Modality())
	for _, key := range []string{"topic", "title", "culture"} {
		if v := req.Param(key); v != "" {
			label = v
			break
		}
	}

	id := req.ID()
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("%s_%s_%s", Slug(label, 40), now.Format("20060102-150405"), id)
}

// Slug lowercases s and replaces runs of anything that is not a letter or digit with a
// single dash. The result is at most max runes and never empty.
func Slug(s string, max int) string {
	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= max {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			n++
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
