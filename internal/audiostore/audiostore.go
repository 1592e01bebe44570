// Package audiostore keeps synthesized and uploaded audio on disk under
// collision-resistant generated names.
package audiostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/kisanvani/internal/errorsx"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is a flat directory of audio artifacts.
type Store struct {
	dir    string
	prefix string
	now    func() time.Time
}

// New creates the directory if needed. prefix starts every generated name.
func New(dir, prefix string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("audiostore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return &Store{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// NewName returns a fresh artifact name: <prefix>-<yyyymmdd-hhmmss>-<uuid><ext>.
// The uuid keeps names unique across concurrent requests in the same second.
func (s *Store) NewName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s-%s-%s%s", s.prefix, s.now().Format("20060102-150405"), uuid.NewString(), ext)
}

// Save writes data under a new name and returns the name. The file appears
// atomically.
func (s *Store) Save(data []byte, ext string) (string, error) {
	name := s.NewName(ext)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing artifact: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("storing artifact: %w", err)
	}
	return name, nil
}

// Path resolves name inside the store. Names that could escape the directory
// or do not exist yield ReasonNotFound.
func (s *Store) Path(name string) (string, error) {
	if !validName.MatchString(name) || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", errorsx.New(errorsx.ReasonNotFound, "audio file not found")
	}
	p := filepath.Join(s.dir, name)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", errorsx.New(errorsx.ReasonNotFound, "audio file not found")
	}
	return p, nil
}

// Purge removes artifacts older than maxAge and returns how many were
// deleted. maxAge <= 0 keeps everything.
func (s *Store) Purge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	var removed int
	var errs error
	cutoff := s.now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

// RunJanitor purges every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, maxAge, interval time.Duration, logger *slog.Logger) error {
	if maxAge <= 0 || interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "janitor", "dir", s.dir)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Purge(maxAge)
			if err != nil {
				logger.Warn("purge incomplete", "removed", n, "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired audio", "removed", n)
			}
		}
	}
}

// ExtForContentType maps an audio MIME type to a file extension.
func ExtForContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"), strings.Contains(ct, "opus"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"), strings.Contains(ct, "mp4"):
		return ".m4a"
	default:
		return ".bin"
	}
}
