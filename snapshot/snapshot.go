// Package snapshot keeps the last values of model attributes on disk, so a restarted
// process can display the last drawing it received before its source is available.
//
// Values are serialized with `encoding/gob`, one file per key. Custom types stored as
// values must be registered with `gob.Register`.
//
// Example:
//
//	store := snapshot.MustNew("/var/cache/nbsvg")
//	release, err := snapshot.Bind(store, m, "svg")
//	...
//	defer release()
package snapshot

import (
	"encoding/gob"
	"log"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/model"
	"k8s.io/klog/v2"
)

// Storage of snapshots in a directory.
//
// Saving is atomic: a reader sees either the previous or the new value of a key.
type Storage struct {
	dir string
}

// New creates a Storage in the given directory. The directory is created if it doesn't yet exist.
func New(dir string) (*Storage, error) {
	stat, err := os.Stat(dir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0700)
	} else if err == nil && !stat.IsDir() {
		return nil, errors.Errorf("snapshot.Storage location %q is not a directory", dir)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create snapshot.Storage in directory %q", dir)
	}
	return &Storage{dir: dir}, nil
}

// MustNew is similar to New, but will log.Fatal if it fails.
func MustNew(dir string) *Storage {
	s, err := New(dir)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	return s
}

// Dir returns the directory where the snapshots are stored.
func (s *Storage) Dir() string {
	return s.dir
}

// filesSuffix is used in every file storing a value.
const filesSuffix = ".snapshot"

func (s *Storage) pathForKey(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.IndexAny(key, "/\\\n\r\t\000*") != -1 {
		return "", errors.Errorf("invalid key %q: keys must be valid file names", key)
	}
	return path.Join(s.dir, key) + filesSuffix, nil
}

// record wraps the values, so any type registered with gob can be restored without
// knowing it in advance.
type record struct {
	Value any
}

// Save the value under the given key.
func (s *Storage) Save(key string, value any) error {
	keyPath, err := s.pathForKey(key)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create file for key %q", key)
	}
	tmpPath := f.Name()
	err = gob.NewEncoder(f).Encode(&record{Value: value})
	if err != nil {
		err = errors.Wrapf(err, "failed to serialize value of key %q using `encoding/gob`", key)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "failed to close file for key %q", key)
	}
	if err == nil {
		err = errors.Wrapf(os.Rename(tmpPath, keyPath), "failed to save key %q", key)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
	}
	return err
}

// Load the value saved under key. It returns an error wrapping os.ErrNotExist if
// there is no value for key.
func Load[T any](s *Storage, key string) (value T, err error) {
	keyPath, err := s.pathForKey(key)
	if err != nil {
		return
	}
	f, err := os.Open(keyPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to open value for key %q", key)
		return
	}
	defer func() { _ = f.Close() }()
	var r record
	if err = gob.NewDecoder(f).Decode(&r); err != nil {
		err = errors.Wrapf(err, "failed to deserialize value of key %q", key)
		return
	}
	if r.Value == nil {
		return
	}
	var ok bool
	value, ok = r.Value.(T)
	if !ok {
		err = errors.Errorf("value of key %q is a %T, not a %T", key, r.Value, value)
	}
	return
}

// Reset removes the value of key. Resetting a key without value is not an error.
func (s *Storage) Reset(key string) error {
	keyPath, err := s.pathForKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(keyPath)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, "failed to reset key %q", key)
}

// Keys returns the keys with a saved value.
func (s *Storage) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list keys in %q", s.dir)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, filesSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, filesSuffix))
	}
	return keys, nil
}

// Bind restores the attributes of m from s, for those that have a saved value, and then
// saves every change of these attributes. Errors saving are logged.
//
// It returns a function that stops saving the changes.
func Bind(s *Storage, m *model.Model, attrs ...string) (release func(), err error) {
	for _, attr := range attrs {
		value, loadErr := Load[any](s, attr)
		if errors.Is(loadErr, os.ErrNotExist) {
			continue
		}
		if loadErr != nil {
			return nil, errors.WithMessagef(loadErr, "failed to restore attribute %q of model %s", attr, m.Id())
		}
		m.Set(attr, value)
		klog.V(1).Infof("snapshot: restored %q of model %s from %q", attr, m.Id(), s.dir)
	}

	subscriptions := make([]model.SubscriptionID, 0, len(attrs))
	for _, attr := range attrs {
		subscriptions = append(subscriptions, m.On(model.ChangeEvent(attr), func(_ *model.Model, attribute string, value any) {
			if err := s.Save(attribute, value); err != nil {
				klog.Warningf("snapshot: failed to save %q of model %s: %+v", attribute, m.Id(), err)
			}
		}))
	}
	release = func() {
		for _, id := range subscriptions {
			m.Off(id)
		}
	}
	return release, nil
}
