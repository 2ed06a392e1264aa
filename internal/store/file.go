package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/reminder"
)

// FileStore keeps all reminders as one JSON array in a single file. Every
// Create rewrites the whole file through a temp file and a rename, so readers
// never observe a partially written file.
type FileStore struct {
	mu sync.Mutex

	path   string
	now    reminder.Clock
	logger zerolog.Logger
}

// NewFileStore creates a FileStore backed by path. The file is created on the
// first Create.
func NewFileStore(path string, now reminder.Clock, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		now:    now,
		logger: logger,
	}
}

// List returns the stored reminders. A missing or malformed file reads as an
// empty list.
func (s *FileStore) List(_ context.Context) ([]reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, _, err := s.load()
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// Create appends a reminder and persists the full list.
func (s *FileStore) Create(_ context.Context, fields reminder.Reminder) (reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, corrupt, err := s.load()
	if err != nil {
		return nil, err
	}
	if corrupt {
		if err := s.backupCorrupt(); err != nil {
			return nil, err
		}
	}

	r := reminder.Stamp(fields, len(reminders)+1, s.now())
	reminders = append(reminders, r)

	if err := s.write(reminders); err != nil {
		return nil, err
	}
	return r, nil
}

// load reads the file. corrupt reports that the file exists but does not hold
// a JSON array of objects.
func (s *FileStore) load() (reminders []reminder.Reminder, corrupt bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []reminder.Reminder{}, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	reminders, err = reminder.ParseList(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("reminders file is malformed; treating as empty")
		return []reminder.Reminder{}, true, nil
	}
	return reminders, false, nil
}

// backupCorrupt moves a malformed file aside so the next write does not
// destroy whatever it held.
func (s *FileStore) backupCorrupt() error {
	backup := s.path + ".corrupt-" + strconv.FormatInt(s.now().Unix(), 10)
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("back up malformed %s: %w", s.path, err)
	}
	s.logger.Warn().Str("path", s.path).Str("backup", backup).Msg("moved malformed reminders file aside")
	return nil
}

func (s *FileStore) write(reminders []reminder.Reminder) (err error) {
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
