package technique

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/fsnotify/fsnotify"
)

// ErrLibraryClosed is returned by LoadAll after the library was closed.
var ErrLibraryClosed = errors.New("technique: library closed")

// Library loads and owns the technique descriptions found under a directory. Descriptions are
// parsed in parallel on a worker pool; everything else, including applying hot reloads, runs on
// the caller's (graphics owner) thread.
type Library struct {
	mu         *sync.RWMutex
	root       string
	extension  string
	workers    int
	options    []TechniqueBuilderOption
	techniques map[string]*Technique
	pool       worker.DynamicWorkerPool

	watcher *fsnotify.Watcher
	pending map[string]struct{}
	done    chan struct{}
}

// NewLibrary creates an empty library rooted at the given directory.
//
// Parameters:
//   - root: the directory holding technique descriptions
//   - options: optional configuration
//
// Returns:
//   - *Library: the new library
func NewLibrary(root string, options ...LibraryBuilderOption) *Library {
	l := &Library{
		mu:         &sync.RWMutex{},
		root:       root,
		extension:  ".xml",
		workers:    4,
		techniques: make(map[string]*Technique),
		pending:    make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, max(256, l.workers), 1*time.Second)
	return l
}

// LoadAll parses every description under the root directory in parallel and installs the
// techniques that loaded. Failures do not stop other files from loading; they are joined into
// the returned error.
//
// Returns:
//   - error: the joined load errors, or nil if every description loaded
func (l *Library) LoadAll() error {
	l.mu.RLock()
	pool := l.pool
	l.mu.RUnlock()
	if pool == nil {
		return ErrLibraryClosed
	}

	var files []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), l.extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("technique: failed to scan %q: %w", l.root, err)
	}

	loaded := make([]*Technique, len(files))
	errs := make([]error, len(files))

	// Parsing only builds description data, so it is safe off the owner thread.
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		id, p := i, path
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				loaded[id], errs[id] = LoadTechnique(l.nameOf(p), p, l.options...)
				return nil, nil
			},
		})
	}
	wg.Wait()

	l.mu.Lock()
	for _, t := range loaded {
		if t != nil {
			l.techniques[t.Name()] = t
		}
	}
	l.mu.Unlock()

	common.Logger().Info("technique library loaded", "root", l.root, "files", len(files), "techniques", l.Len())
	return errors.Join(errs...)
}

// Load parses a single description by technique name. An already loaded technique is reloaded
// in place so existing holders observe the new description.
//
// Parameters:
//   - name: the technique name, the slash separated path below the root without extension
//
// Returns:
//   - *Technique: the loaded technique
//   - error: an error if the description cannot be read or parsed
func (l *Library) Load(name string) (*Technique, error) {
	path := filepath.Join(l.root, filepath.FromSlash(name)+l.extension)

	l.mu.RLock()
	existing := l.techniques[name]
	l.mu.RUnlock()

	if existing == nil {
		t, err := LoadTechnique(name, path, l.options...)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.techniques[name] = t
		l.mu.Unlock()
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("technique: failed to open %q: %w", path, err)
	}
	defer f.Close()

	existing.ReleaseShaders()
	if err := existing.BeginLoad(f); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get returns a loaded technique by name.
func (l *Library) Get(name string) (*Technique, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.techniques[name]
	return t, ok
}

// Names returns the names of every loaded technique, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.techniques))
	for name := range l.techniques {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of loaded techniques.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.techniques)
}

// Watch starts watching the root directory tree for changed descriptions. Changes are only
// queued; call ApplyReloads from the owner thread to apply them.
//
// Returns:
//   - error: an error if the watcher could not be created
func (l *Library) Watch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("technique: failed to create watcher: %w", err)
	}
	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("technique: failed to watch %q: %w", l.root, err)
	}

	l.watcher = w
	l.done = make(chan struct{})
	go l.watch(w, l.done)
	return nil
}

func (l *Library) watch(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), l.extension) {
				continue
			}
			l.mu.Lock()
			l.pending[l.nameOf(event.Name)] = struct{}{}
			l.mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("technique watcher error", "root", l.root, "error", err)
		}
	}
}

// ApplyReloads reloads every technique whose description changed since the last call.
// Failed reloads are logged and keep the previous description.
//
// Returns:
//   - []string: the names of the techniques that were reloaded, sorted
func (l *Library) ApplyReloads() []string {
	l.mu.Lock()
	names := make([]string, 0, len(l.pending))
	for name := range l.pending {
		names = append(names, name)
	}
	l.pending = make(map[string]struct{})
	l.mu.Unlock()

	slices.Sort(names)
	reloaded := names[:0]
	for _, name := range names {
		if _, err := l.Load(name); err != nil {
			common.Logger().Warn("technique reload failed", "technique", name, "error", err)
			continue
		}
		reloaded = append(reloaded, name)
	}
	return reloaded
}

// Close stops the watcher if one is running and shuts down the parse workers. Closing an already
// closed library is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	w, done, pool := l.watcher, l.done, l.pool
	l.watcher, l.done, l.pool = nil, nil, nil
	l.mu.Unlock()

	if pool != nil {
		stopPool(pool, l.workers)
	}
	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

// stopPool stops the pool and retires every worker goroutine. Stop signals workers over one
// shared channel where a worker may consume another worker's id and stay parked, so each worker
// is also handed a task that ends its goroutine.
func stopPool(pool worker.DynamicWorkerPool, workers int) {
	pool.Stop()
	for i := range workers {
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				runtime.Goexit()
				return nil, nil
			},
		})
	}
}

// nameOf converts a description path to its technique name.
func (l *Library) nameOf(path string) string {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
}
