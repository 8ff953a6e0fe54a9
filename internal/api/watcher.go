package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amterp/memmap/internal/config"
	"github.com/amterp/memmap/internal/logging"
)

// FileChangeType indicates what type of change occurred.
type FileChangeType string

const (
	FileChangeCreated  FileChangeType = "created"
	FileChangeModified FileChangeType = "modified"
	FileChangeDeleted  FileChangeType = "deleted"
)

// FileChangeKind indicates what kind of file changed.
type FileChangeKind string

const (
	FileChangeKindContributor FileChangeKind = "contributor"
	FileChangeKindMemory      FileChangeKind = "memory"
	FileChangeKindImage       FileChangeKind = "image"
	FileChangeKindTrajectory  FileChangeKind = "trajectory"
	FileChangeKindUnknown     FileChangeKind = "unknown"
)

const watchDebounce = 100 * time.Millisecond

// FileChange represents a file system change notification.
type FileChange struct {
	Type FileChangeType `json:"type"`
	Kind FileChangeKind `json:"kind"`
	ID   string         `json:"id,omitempty"` // contributor/memory ID or upload file name
	Path string         `json:"path"`         // slash-separated, relative to the data dir
}

// FileWatcherSubscriber receives file change notifications.
type FileWatcherSubscriber interface {
	OnFileChange(change FileChange)
}

// FileWatcher watches the data directory for changes and notifies subscribers.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	dataDir     string
	logger      logging.Logger
	mu          sync.RWMutex
	subscribers []FileWatcherSubscriber
	debounce    map[string]*time.Timer
	debounceMu  sync.Mutex
	stopCh      chan struct{}
	stopped     bool // Once stopped, cannot restart
	running     bool
}

// NewFileWatcher creates a new file watcher for the data directory.
func NewFileWatcher(dataDir string, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &FileWatcher{
		watcher:  watcher,
		dataDir:  dataDir,
		logger:   logger,
		debounce: make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Subscribe adds a subscriber to receive file change notifications.
func (fw *FileWatcher) Subscribe(sub FileWatcherSubscriber) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.subscribers = append(fw.subscribers, sub)
}

// Unsubscribe removes a subscriber.
func (fw *FileWatcher) Unsubscribe(sub FileWatcherSubscriber) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for i, s := range fw.subscribers {
		if s == sub {
			fw.subscribers = append(fw.subscribers[:i], fw.subscribers[i+1:]...)
			return
		}
	}
}

// Start begins watching the users, memories and uploads directories.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("file watcher cannot be restarted after stop")
	}
	fw.running = true
	fw.mu.Unlock()

	for _, dir := range []string{config.UsersDir, config.MemoriesDir, config.UploadsDir} {
		fw.addWatchesRecursive(filepath.Join(fw.dataDir, dir))
	}

	go fw.run()
	return nil
}

// Stop stops watching for changes.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running || fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	fw.stopped = true
	fw.mu.Unlock()

	// Pending timers must not fire after stop.
	fw.debounceMu.Lock()
	for path, timer := range fw.debounce {
		timer.Stop()
		delete(fw.debounce, path)
	}
	fw.debounceMu.Unlock()

	close(fw.stopCh)
	return fw.watcher.Close()
}

// addWatchesRecursive adds watches to a directory and all subdirectories.
// Missing directories are skipped.
func (fw *FileWatcher) addWatchesRecursive(dir string) {
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				fw.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

func (fw *FileWatcher) run() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)

		case <-fw.stopCh:
			return
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	// Atomic writes go through hidden temp files.
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			fw.watcher.Add(event.Name)
		}
	}

	// Coalesce rapid changes to the same file.
	fw.debounceMu.Lock()
	if timer, exists := fw.debounce[event.Name]; exists {
		timer.Stop()
	}
	fw.debounce[event.Name] = time.AfterFunc(watchDebounce, func() {
		fw.emitChange(event)
		fw.debounceMu.Lock()
		delete(fw.debounce, event.Name)
		fw.debounceMu.Unlock()
	})
	fw.debounceMu.Unlock()
}

func (fw *FileWatcher) emitChange(event fsnotify.Event) {
	fw.mu.RLock()
	if fw.stopped {
		fw.mu.RUnlock()
		return
	}
	subs := make([]FileWatcherSubscriber, len(fw.subscribers))
	copy(subs, fw.subscribers)
	fw.mu.RUnlock()

	change := fw.classifyChange(event)
	if change.Kind == FileChangeKindUnknown {
		return
	}

	fw.logger.Debug("data file changed", "kind", change.Kind, "type", change.Type, "path", change.Path)
	for _, sub := range subs {
		sub.OnFileChange(change)
	}
}

func (fw *FileWatcher) classifyChange(event fsnotify.Event) FileChange {
	relPath, err := filepath.Rel(fw.dataDir, event.Name)
	if err != nil {
		return FileChange{Kind: FileChangeKindUnknown}
	}

	change := FileChange{
		Path: filepath.ToSlash(relPath),
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		change.Type = FileChangeCreated
	case event.Op&fsnotify.Write != 0:
		change.Type = FileChangeModified
	case event.Op&fsnotify.Remove != 0:
		change.Type = FileChangeDeleted
	case event.Op&fsnotify.Rename != 0:
		change.Type = FileChangeDeleted // Rename source is effectively deleted
	default:
		return FileChange{Kind: FileChangeKindUnknown}
	}

	parts := strings.Split(change.Path, "/")

	// users/<id>.json, memories/<id>.json; bulk snapshots are ignored.
	if len(parts) == 2 && strings.HasSuffix(parts[1], ".json") {
		id := strings.TrimSuffix(parts[1], ".json")
		switch {
		case parts[0] == config.UsersDir && !strings.HasPrefix(parts[1], config.ContributorSnapshotPrefix):
			change.Kind = FileChangeKindContributor
			change.ID = id
			return change
		case parts[0] == config.MemoriesDir && !strings.HasPrefix(parts[1], config.MemorySnapshotPrefix):
			change.Kind = FileChangeKindMemory
			change.ID = id
			return change
		}
	}

	// uploads/<kind>/<file>
	if len(parts) == 3 && parts[0] == config.UploadsDir {
		change.ID = parts[2]
		switch parts[1] {
		case config.UploadImage:
			change.Kind = FileChangeKindImage
			return change
		case config.UploadTrajectory:
			change.Kind = FileChangeKindTrajectory
			return change
		}
	}

	return FileChange{Kind: FileChangeKindUnknown}
}
