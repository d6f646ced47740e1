package repository

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
)

type Pebble struct {
	db *pebble.DB
}

func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("error opening pebble: %w", err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(key string) (string, bool, error) {
	value, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading %s: %w", key, err)
	}
	defer func() { _ = closer.Close() }()
	// value is only valid until closer is closed.
	return string(value), true, nil
}

func (p *Pebble) Set(key, value string) error {
	return p.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (p *Pebble) Delete(keys ...string) error {
	b := p.db.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete([]byte(k), nil); err != nil {
			return fmt.Errorf("error deleting %s: %w", k, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
