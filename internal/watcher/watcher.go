// Package watcher keeps the observed-state cache in step with the Homebrew
// prefix. Installs and uninstalls performed outside the agent show up as
// directory churn under Cellar/Caskroom; the watcher picks that up, waits
// for the dust to settle, and re-lists packages into the store.
package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

// defaultDebounce batches the event bursts a single brew install produces
// into one cache refresh.
const defaultDebounce = 2 * time.Second

// Lister is the slice of the provider the watcher needs.
type Lister interface {
	PackageList(filter string) ([]brew.Package, error)
}

// Watcher refreshes the store when the watched Homebrew directories change.
type Watcher struct {
	lister   Lister
	store    *store.Store
	fsw      *fsnotify.Watcher
	log      *logrus.Logger
	debounce time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher over the given root directories (typically
// {prefix}/Cellar and {prefix}/Caskroom). Roots that do not exist are
// skipped with a warning; at least one must be watchable.
func New(lister Lister, st *store.Store, roots []string, log *logrus.Logger) (*Watcher, error) {
	if lister == nil || st == nil {
		return nil, fmt.Errorf("lister and store are required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	watched := 0
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			log.WithField("dir", root).Warn("skipping missing watch directory")
			continue
		}
		if err := fsw.Add(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return nil, fmt.Errorf("none of the watch directories exist: %v", roots)
	}

	return &Watcher{
		lister:   lister,
		store:    st,
		fsw:      fsw,
		log:      log,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start refreshes the cache once and then begins the event loop.
func (w *Watcher) Start() error {
	if err := w.refresh(); err != nil {
		w.log.WithError(err).Warn("initial cache refresh failed")
	}

	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				w.log.WithFields(logrus.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("prefix changed")
				debounce.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watcher error")

		case <-debounce.C:
			if err := w.refresh(); err != nil {
				w.log.WithError(err).Warn("cache refresh failed")
			}

		case <-w.stopCh:
			return
		}
	}
}

// refresh re-lists installed packages and swaps them into the store.
func (w *Watcher) refresh() error {
	pkgs, err := w.lister.PackageList("")
	if err != nil {
		return err
	}
	if err := w.store.ReplaceAll(pkgs, time.Now()); err != nil {
		return err
	}
	w.log.WithField("packages", len(pkgs)).Debug("refreshed package cache")
	return nil
}

// Stop halts the event loop and releases the filesystem watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
