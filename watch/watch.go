// Package watch keeps a model attribute equal to the contents of a file, reloading
// it whenever the file changes on disk. It's used to preview SVG files as they are
// edited.
package watch

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/model"
	"k8s.io/klog/v2"
)

// Watcher reloads a file into a model attribute. Create it with File.
type Watcher struct {
	path    string
	attr    string
	model   *model.Model
	watcher *fsnotify.Watcher
	done    *common.Latch
}

// File loads the file at path into the attribute attr of m, and keeps reloading it
// when it is written, created or renamed into place (as editors usually do).
//
// It watches the file's directory, so the file may be replaced. Errors reading the
// file after the first load are logged, and the last good value is kept.
func File(path string, m *model.Model, attr string) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "watch: invalid path %q", path)
	}
	w := &Watcher{path: absPath, attr: attr, model: m, done: common.NewLatch()}
	if err = w.load(); err != nil {
		return nil, err
	}
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrapf(err, "watch: failed to create a filesystem watcher for %q", absPath)
	}
	if err = w.watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = w.watcher.Close()
		return nil, errors.Wrapf(err, "watch: failed to watch directory of %q", absPath)
	}
	go w.loop()
	return w, nil
}

// load reads the file into the model.
func (w *Watcher) load() error {
	contents, err := os.ReadFile(w.path)
	if err != nil {
		return errors.Wrapf(err, "watch: failed to read %q", w.path)
	}
	w.model.Set(w.attr, string(contents))
	klog.V(1).Infof("watch: loaded %q (%d bytes) into %q", w.path, len(contents), w.attr)
	return nil
}

func (w *Watcher) loop() {
	klog.V(2).Infof("watch.File(%q): Starting to listen to watcher", w.path)
	defer klog.V(2).Infof("watch.File(%q): Stopped to listen to watcher", w.path)
	defer w.done.Trigger()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				// Not interested.
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				// Not interested.
				continue
			}
			if err := w.load(); err != nil {
				// Renames away from the path, or partial writes: wait for the next event.
				klog.V(1).Infof("%v", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			klog.Warningf("watch.File(%q): async error received %+v", w.path, err)
		}
	}
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching the file.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.done.Wait()
	return errors.Wrapf(err, "watch: failed to close watcher for %q", w.path)
}
