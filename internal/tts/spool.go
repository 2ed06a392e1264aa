package tts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const spoolPrefix = "tts-"

// Spool owns the directory transient audio files are written to.
type Spool struct {
	dir string
}

// NewSpool creates dir if needed.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir %s: %w", dir, err)
	}
	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string {
	return s.dir
}

func (s *Spool) create(ext string) (*os.File, error) {
	name := filepath.Join(s.dir, spoolPrefix+uuid.NewString()+ext)
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
}

// Sweep removes spool files last modified more than maxAge ago and returns
// how many were removed.
func (s *Spool) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read spool dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), spoolPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Clip is synthesized audio backed by a spool file. Closing it closes and
// deletes the file; it is safe to close more than once.
type Clip struct {
	ContentType string
	Size        int64

	file *os.File
	once sync.Once
	err  error
}

func (c *Clip) Read(p []byte) (int, error) {
	return c.file.Read(p)
}

// Path returns the spool file path.
func (c *Clip) Path() string {
	return c.file.Name()
}

func (c *Clip) Close() error {
	c.once.Do(func() {
		closeErr := c.file.Close()
		removeErr := os.Remove(c.file.Name())
		if errors.Is(removeErr, fs.ErrNotExist) {
			removeErr = nil
		}
		c.err = errors.Join(closeErr, removeErr)
	})
	return c.err
}
