package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider reads secrets from a directory holding one file per secret,
// the layout produced by Kubernetes secret volumes. The file name is the
// secret name and surrounding whitespace is trimmed from the content.
//
// Files must be mode 0600 or 0400. Values are cached until the file
// changes (when watching) or Refresh is called.
type FileProvider struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]string

	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileProvider creates a provider over dir. When watch is true, an
// fsnotify watcher evicts a cached value whenever its file is written,
// created, renamed or removed. Close releases the watcher.
func NewFileProvider(dir string, watch bool, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets directory %s is not a directory", dir)
	}

	p := &FileProvider{
		dir:    dir,
		logger: logger.With("component", "secrets.file"),
		cache:  make(map[string]string),
		done:   make(chan struct{}),
	}

	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		p.watcher = w
		p.changes = make(chan struct{}, 1)
		p.wg.Add(1)
		go p.watchLoop()
	}

	p.logger.Debug("file secret provider ready", "dir", dir, "watch", watch)
	return p, nil
}

// Get implements Provider.
func (p *FileProvider) Get(_ context.Context, name string) (string, error) {
	if !validFileName(name) {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	p.mu.RLock()
	value, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return value, nil
	}

	path := filepath.Join(p.dir, name)
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (file %s)", ErrNotFound, name, path)
		}
		return "", fmt.Errorf("stat secret %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret %s is not a regular file", name)
	}
	if perm := info.Mode().Perm(); perm != 0o600 && perm != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 600 or 400)", path, perm)
	}

	// #nosec G304 -- name is a single path element inside dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}
	value = strings.TrimSpace(string(data))

	p.mu.Lock()
	p.cache[name] = value
	p.mu.Unlock()

	return value, nil
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Refresh drops every cached value.
func (p *FileProvider) Refresh(_ context.Context) error {
	p.mu.Lock()
	p.cache = make(map[string]string)
	p.mu.Unlock()
	return nil
}

// Changes implements Notifier. Bursts of file events collapse into one
// pending notification.
func (p *FileProvider) Changes() <-chan struct{} {
	return p.changes
}

func (p *FileProvider) notify() {
	select {
	case p.changes <- struct{}{}:
	default:
	}
}

// Close stops the watcher, if any.
func (p *FileProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	select {
	case <-p.done:
		return nil
	default:
	}
	close(p.done)
	err := p.watcher.Close()
	p.wg.Wait()
	return err
}

func (p *FileProvider) evict(name string) {
	p.mu.Lock()
	delete(p.cache, name)
	p.mu.Unlock()
}

func (p *FileProvider) watchLoop() {
	defer p.wg.Done()

	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&changed == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			// Kubernetes swaps the ..data symlink; every secret may have changed.
			if strings.HasPrefix(name, "..") {
				_ = p.Refresh(context.Background())
				p.logger.Debug("secret directory changed, cache cleared", "op", ev.Op.String())
				p.notify()
				continue
			}
			p.evict(name)
			p.logger.Debug("secret file changed", "file", name, "op", ev.Op.String())
			p.notify()

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("secret watcher error", "error", err)

		case <-p.done:
			return
		}
	}
}

// validFileName accepts a single, non-hidden path element.
func validFileName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.IsLocal(name)
}
