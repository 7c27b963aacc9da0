// Package common holds functionality that is common to multiple other packages.
package common

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// Panicf panics with an error constructed with the given format and args.
func Panicf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

// UniqueId returns a newly created unique id: the last 8 characters of a UUID V7.
func UniqueId() string {
	uid, _ := uuid.NewV7()
	uidStr := uid.String()
	return uidStr[len(uidStr)-8:]
}

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// MakeSet returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func MakeSet[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// SetWith returns a Set with the given keys inserted.
func SetWith[T comparable](keys ...T) Set[T] {
	s := MakeSet[T](len(keys))
	for _, key := range keys {
		s.Insert(key)
	}
	return s
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert key into set.
func (s Set[T]) Insert(key T) {
	s[key] = struct{}{}
}

// Delete key from set.
func (s Set[T]) Delete(key T) {
	delete(s, key)
}

// SortedKeys enumerate keys from a string map and sort them.
func SortedKeys[T any](m map[string]T) (keys []string) {
	keys = make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return
}

var reEnvVar = regexp.MustCompile(`\$(\w+|\{\w+\})`)

// ReplaceEnvVars replaces occurrences of `$VAR` and `${VAR}` in str by the value of the
// environment variable. Missing variables are replaced by an empty string.
func ReplaceEnvVars(str string) string {
	return reEnvVar.ReplaceAllStringFunc(str, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		return os.Getenv(name)
	})
}

// ArrayFlag implements flag.Value for a flag that can be set multiple times,
// accumulating the values.
type ArrayFlag []string

// String implements flag.Value.
func (f *ArrayFlag) String() string {
	return strings.Join(*f, ",")
}

// Set implements flag.Value.
func (f *ArrayFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
