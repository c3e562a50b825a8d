// Package imports watches the import directory for exported SQLite databases.
package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
)

// MaxFileSize bounds the size of an export loaded into memory.
const MaxFileSize = 512 << 20

var exportExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// Event represents an imports service event.
type Event struct {
	Error error
	File  *models.ExportFile
	Type  EventType
}

// EventType defines the type of imports event.
type EventType int

const (
	// EventFilesLoaded is sent after the initial scan.
	EventFilesLoaded EventType = iota
	// EventFilesChanged is sent when files were added or removed.
	EventFilesChanged
	// EventActiveReplaced is sent when the selected file changed on disk.
	EventActiveReplaced
	// EventError is sent when scanning or watching fails.
	EventError
)

// Service lists export files and reports changes to them.
type Service struct {
	mu            sync.RWMutex
	dir           string
	files         []models.ExportFile
	active        string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	pending       map[string]bool
}

// IsExportFile reports whether name has a recognized database extension.
func IsExportFile(name string) bool {
	return exportExtensions[strings.ToLower(filepath.Ext(name))]
}

// New creates the import directory if needed, scans it and starts watching.
func New(dir string) (*Service, error) {
	if dir == "" {
		return nil, fmt.Errorf("import directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create import directory: %w", err)
	}

	s := &Service{
		dir:       dir,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		pending:   make(map[string]bool),
	}

	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("failed to scan import directory: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventFilesLoaded})
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Dir returns the watched directory.
func (s *Service) Dir() string {
	return s.dir
}

// Files returns the export files, newest first.
func (s *Service) Files() []models.ExportFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]models.ExportFile, len(s.files))
	copy(files, s.files)
	return files
}

// Active returns the path of the selected file, if any.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Open selects a file of the import directory and returns its bytes.
func (s *Service) Open(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve import directory: %w", err)
	}
	if filepath.Dir(abs) != dir {
		return nil, fmt.Errorf("%s is outside the import directory", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is too large (%d bytes)", filepath.Base(path), info.Size())
	}

	buf, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.mu.Lock()
	s.active = abs
	s.mu.Unlock()

	return buf, nil
}

// scan rebuilds the file list.
func (s *Service) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var files []models.ExportFile
	for _, e := range entries {
		if e.IsDir() || !IsExportFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path, err := filepath.Abs(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		files = append(files, models.ExportFile{
			Path:    path,
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime().UnixMilli(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime != files[j].ModTime {
			return files[i].ModTime > files[j].ModTime
		}
		return files[i].Name < files[j].Name
	})

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(s.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !IsExportFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			s.mu.Lock()
			if abs, err := filepath.Abs(event.Name); err == nil {
				s.pending[abs] = true
			}
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleChange rescans the directory after a burst of events.
func (s *Service) handleChange() {
	s.mu.Lock()
	changed := s.pending
	s.pending = make(map[string]bool)
	active := s.active
	s.mu.Unlock()

	if err := s.scan(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	if active != "" && changed[active] {
		logger.Info("active export changed on disk", "path", active)
		file := s.lookup(active)
		s.sendEvent(Event{Type: EventActiveReplaced, File: file})
	}
	s.sendEvent(Event{Type: EventFilesChanged})
}

func (s *Service) lookup(path string) *models.ExportFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.files {
		if s.files[i].Path == path {
			f := s.files[i]
			return &f
		}
	}
	return &models.ExportFile{Path: path, Name: filepath.Base(path)}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
