package dataset

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Static serves one snapshot for the life of the process.
type Static struct {
	ds *Dataset
}

// NewStatic wraps an already-loaded dataset.
func NewStatic(ds *Dataset) *Static {
	return &Static{ds: ds}
}

// LoadStatic loads the workbook once. Callers should treat an error as fatal.
func LoadStatic(opts Options) (*Static, error) {
	ds, err := Load(opts)
	if err != nil {
		return nil, err
	}
	return NewStatic(ds), nil
}

// Dataset returns the loaded snapshot.
func (s *Static) Dataset(_ context.Context) (*Dataset, error) {
	return s.ds, nil
}

// Reloading reads the workbook again on every call. Concurrent callers share
// a single in-flight load.
type Reloading struct {
	opts  Options
	group singleflight.Group
	load  func(Options) (*Dataset, error)
}

// NewReloading creates a per-request source for opts.
func NewReloading(opts Options) *Reloading {
	return &Reloading{opts: opts, load: Load}
}

// Dataset loads a fresh snapshot.
func (r *Reloading) Dataset(ctx context.Context) (*Dataset, error) {
	ch := r.group.DoChan(r.opts.Path, func() (any, error) {
		return r.load(r.opts)
	})
	select {
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "dataset: reload cancelled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Watching serves a snapshot and replaces it when the workbook changes on
// disk. A failed reload keeps the previous snapshot.
type Watching struct {
	opts     Options
	current  atomic.Pointer[Dataset]
	watcher  *fsnotify.Watcher
	debounce time.Duration
	load     func(Options) (*Dataset, error)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
	reloads  atomic.Int64
}

// NewWatching loads the workbook and starts watching its directory.
func NewWatching(ctx context.Context, opts Options) (*Watching, error) {
	ds, err := Load(opts)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: create watcher")
	}
	// Editors and spreadsheet tools replace the file on save, so watch the
	// directory and filter by name.
	if err := watcher.Add(filepath.Dir(opts.Path)); err != nil {
		_ = watcher.Close()
		return nil, eris.Wrap(err, "dataset: watch directory")
	}

	w := &Watching{
		opts:     opts,
		watcher:  watcher,
		debounce: 250 * time.Millisecond,
		load:     Load,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.current.Store(ds)

	go w.run(ctx)

	zap.L().Info("watching workbook for changes", zap.String("path", opts.Path))
	return w, nil
}

// Dataset returns the latest successfully loaded snapshot.
func (w *Watching) Dataset(_ context.Context) (*Dataset, error) {
	return w.current.Load(), nil
}

// Reloads returns how many times the snapshot has been replaced.
func (w *Watching) Reloads() int64 {
	return w.reloads.Load()
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watching) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		err = w.watcher.Close()
	})
	return err
}

func (w *Watching) run(ctx context.Context) {
	defer close(w.doneCh)

	target := filepath.Clean(w.opts.Path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("workbook watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watching) reload() {
	ds, err := w.load(w.opts)
	if err != nil {
		zap.L().Warn("workbook reload failed, keeping previous snapshot",
			zap.String("path", w.opts.Path),
			zap.Error(err),
		)
		return
	}
	w.current.Store(ds)
	w.reloads.Add(1)
	zap.L().Info("workbook reloaded",
		zap.String("path", w.opts.Path),
		zap.Int("semester_rows", len(ds.Semester)),
	)
}
