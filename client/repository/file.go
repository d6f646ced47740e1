package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"sync"

	"github.com/spf13/viper"
)

// File keeps the session as a flat YAML document. Every change rewrites the
// whole file.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

func NewFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
	}
	for _, k := range v.AllKeys() {
		f.data[k] = v.GetString(k)
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.data)
	next[key] = value
	if err := f.write(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.data)
	for _, k := range keys {
		delete(next, k)
	}
	if err := f.write(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) write(data map[string]string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	for k, val := range data {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("error writing %s: %w", f.path, err)
	}
	return os.Chmod(f.path, 0o600)
}

func (f *File) Close() error { return nil }
