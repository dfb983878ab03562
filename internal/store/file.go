package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
)

// FileStore keeps the document in a single JSON file. Writes go
// through a temp file and an atomic rename so a crash mid-write never
// leaves a truncated document behind.
type FileStore struct {
	path   string
	logger *errors.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewFileStore(path string, logger *errors.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Save(ctx context.Context, doc resume.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to create store directory", err).
			WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".cvforge-*.json")
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to write document", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to flush document", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to replace document file", err).
			WithContext("path", s.path)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (resume.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return resume.NewDocument(), false, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return resume.NewDocument(), false, nil
		}
		return resume.NewDocument(), false,
			errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to read document file", err).
				WithContext("path", s.path)
	}

	doc, _ := decode(data, s.logger)
	return doc, resume.HasPriorWork(doc), nil
}

// Watch reloads the document when the backing file changes on disk,
// for example when another process edits it. Events are debounced
// because editors and atomic renames produce bursts. Close stops the
// watcher.
func (s *FileStore) Watch(onChange func(resume.Document)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to create file watcher", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to watch store directory", err).
			WithContext("path", s.path)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.watchLoop(watcher, done, onChange)
	return nil
}

func (s *FileStore) watchLoop(watcher *fsnotify.Watcher, done chan struct{}, onChange func(resume.Document)) {
	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(200 * time.Millisecond)
			} else {
				debounce.Reset(200 * time.Millisecond)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			doc, _, err := s.Load(context.Background())
			if err != nil {
				if s.logger != nil {
					s.logger.LogError(err, "Reload after file change failed")
				}
				continue
			}
			onChange(doc)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if s.logger != nil {
				s.logger.Warn("File watcher error", "error", err.Error())
			}

		case <-done:
			return
		}
	}
}

// Close stops the change watcher if one is running.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}
