// Package media holds generated audio and image files on local disk and maps them to the
// public URLs the HTTP server exposes.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File is a generated artifact on disk.
type File struct {
	Path     string            `json:"-"`
	Name     string            `json:"name"`
	URL      string            `json:"url,omitempty"`
	MIMEType string            `json:"mime_type"`
	Size     int64             `json:"size"`
	Params   map[string]string `json:"params,omitempty"`
}

// NewFile stats path and describes it. params records how the artifact was produced.
func NewFile(path, mimeType string, params map[string]string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat artifact: %w", err)
	}
	if info.Size() == 0 {
		return File{}, fmt.Errorf("artifact %s is empty", filepath.Base(path))
	}
	return File{
		Path:     path,
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Size:     info.Size(),
		Params:   params,
	}, nil
}

// Store owns the media directory layout.
type Store struct {
	root       string
	storiesDir string
	urlPrefix  string
}

const (
	audioSubdir = "audio"
	imageSubdir = "images"

	// DefaultURLPrefix is where the HTTP server mounts the media directory.
	DefaultURLPrefix = "/media"
)

// NewStore creates the media and stories directories if needed.
func NewStore(mediaDir, storiesDir string) (*Store, error) {
	if mediaDir == "" {
		return nil, errors.New("media directory is required")
	}
	if storiesDir == "" {
		storiesDir = filepath.Join(mediaDir, "stories")
	}

	s := &Store{
		root:       filepath.Clean(mediaDir),
		storiesDir: filepath.Clean(storiesDir),
		urlPrefix:  DefaultURLPrefix,
	}

	for _, dir := range []string{s.AudioDir(), s.ImageDir(), s.storiesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return s, nil
}

// Root returns the media directory served under the URL prefix.
func (s *Store) Root() string { return s.root }

// AudioDir is where narration files are written.
func (s *Store) AudioDir() string { return filepath.Join(s.root, audioSubdir) }

// ImageDir is where illustrations are written.
func (s *Store) ImageDir() string { return filepath.Join(s.root, imageSubdir) }

// StoriesDir is where saved story text files are written.
func (s *Store) StoriesDir() string { return s.storiesDir }

// URLPrefix returns the path the media root is served under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Publish fills f.URL when the file lives under the media root.
func (s *Store) Publish(f File) File {
	rel, err := filepath.Rel(s.root, f.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return f
	}
	f.URL = s.urlPrefix + "/" + filepath.ToSlash(rel)
	return f
}

// Sweep removes audio and image files last modified before now-retention. It returns the
// number of files removed. Saved stories are never swept.
func (s *Store) Sweep(retention time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-retention)
	removed := 0
	var errs []error

	for _, dir := range []string{s.AudioDir(), s.ImageDir()} {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					errs = append(errs, err)
					return nil
				}
				removed++
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return removed, errors.Join(errs...)
}

// WriteImage stores a PNG built outside a pipeline, such as a collage, and returns it
// published. Names carry a random suffix so concurrent writes never share a file.
func (s *Store) WriteImage(name string, data []byte, now time.Time) (File, error) {
	id := uuid.New().String()[:8]
	path := filepath.Join(s.ImageDir(), fmt.Sprintf("%s_%s_%s.png", name, now.Format("20060102-150405"), id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return File{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	f, err := NewFile(path, "image/png", nil)
	if err != nil {
		os.Remove(path)
		return File{}, err
	}
	return s.Publish(f), nil
}
