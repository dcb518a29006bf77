package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce время ожидания повторных событий перед перечитыванием файла.
const defaultDebounce = 250 * time.Millisecond

// Watcher перечитывает файл справочника при его изменении.
// Следит за каталогом, а не за файлом: редакторы часто сохраняют через rename.
type Watcher struct {
	catalog  *Catalog
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	// OnReload вызывается после каждой попытки перечитать файл (для тестов и логов).
	OnReload func(err error)

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher создаёт наблюдателя за файлом справочника.
func NewWatcher(catalog *Catalog, path string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		catalog:  catalog,
		path:     abs,
		watcher:  fsw,
		logger:   logger,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start начинает наблюдение. Останавливается по отмене ctx или Stop.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.loop(ctx)

	w.logger.Info("Catalog watcher started", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop останавливает наблюдение.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
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
			w.logger.Warn("Catalog watcher error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	err := w.catalog.Reload(w.path)
	if err != nil {
		w.logger.Error("Catalog reload failed, keeping previous version", "path", w.path, "error", err)
	} else {
		w.logger.Info("Catalog reloaded", "path", w.path, "diseases", w.catalog.Len())
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}
