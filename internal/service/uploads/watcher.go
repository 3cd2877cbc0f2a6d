package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
)

// settleDelay is how long a spool file must stay quiet before it is
// considered fully written. Recorders write in bursts; enqueueing on the
// first event would ship a truncated file.
const settleDelay = 2 * time.Second

// sidecarSuffix names the optional file next to a recording that carries
// the note id the recording belongs to ("memo.m4a.noteid").
const sidecarSuffix = ".noteid"

var audioExtensions = map[string]struct{}{
	".m4a":  {},
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".opus": {},
	".aac":  {},
	".flac": {},
}

// Watcher auto-enqueues recordings dropped into the spool directory.
type Watcher struct {
	dir    string
	queue  Queue
	logger *logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewWatcher(dir string, queue Queue, log *logger.Logger) *Watcher {
	return &Watcher{
		dir:    dir,
		queue:  queue,
		logger: log,
		timers: make(map[string]*time.Timer),
	}
}

// Run watches the spool until ctx is cancelled. A configured but missing
// directory is created. With no directory configured the watcher is
// disabled and Run returns immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if w.dir == "" {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create spool directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create spool watcher: %w", err)
	}
	defer fsw.Close()

	if err = fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch spool directory: %w", err)
	}

	// Recordings already sitting in the spool (dropped while the daemon
	// was down) are picked up on start.
	w.sweep(ctx)

	log := w.logger.GetChildLogger()
	log.Info().Str("func", "uploads.Watcher.Run").Str("dir", w.dir).Msg("spool watcher started")

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isAudioFile(ev.Name) {
				continue
			}
			w.debounce(ctx, ev.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("func", "uploads.Watcher.Run").Msg("spool watcher error")
		}
	}
}

// debounce (re)arms the settle timer for one file; the enqueue fires only
// after the file stayed untouched for settleDelay.
func (w *Watcher) debounce(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(settleDelay)
		return
	}

	w.timers[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.enqueue(ctx, path)
	})
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	log := w.logger.GetChildLogger()

	known, err := w.alreadyQueued(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("func", "uploads.Watcher.enqueue").Msg("cannot check existing tasks")
		return
	}
	if known {
		return
	}

	noteID := readSidecar(path)
	task, err := w.queue.Enqueue(ctx, path, noteID)
	if err != nil {
		log.Error().Err(err).Str("func", "uploads.Watcher.enqueue").
			Str("path", path).
			Msg("cannot enqueue spooled recording")
		return
	}

	log.Info().Str("func", "uploads.Watcher.enqueue").
		Str("task_id", task.ID.String()).
		Str("path", path).
		Msg("spooled recording enqueued")
}

// alreadyQueued guards against double enqueue: the startup sweep and a
// late write event may both see the same recording.
func (w *Watcher) alreadyQueued(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	tasks, err := w.queue.List(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tasks {
		if t.LocalPath == abs {
			return true, nil
		}
	}
	return false, nil
}

func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn().Err(err).Str("func", "uploads.Watcher.sweep").Msg("cannot read spool directory")
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isAudioFile(e.Name()) {
			continue
		}
		w.debounce(ctx, filepath.Join(w.dir, e.Name()))
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func isAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// readSidecar returns the note id from the recording's sidecar file, when
// one exists and parses.
func readSidecar(path string) *uuid.UUID {
	raw, err := os.ReadFile(path + sidecarSuffix)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil
	}
	return &id
}
