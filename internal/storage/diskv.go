package storage

import (
	"fmt"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv keeps one file per key under a base directory.
type Diskv struct {
	d        *diskv.Diskv
	basePath string
}

// OpenDiskv returns a file-per-key store rooted at basePath.
func OpenDiskv(basePath string) *Diskv {
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}
}

// Get reads the value stored under key.
func (s *Diskv) Get(key string) (string, bool, error) {
	if !s.d.Has(key) {
		return "", false, nil
	}
	val, err := s.d.Read(key)
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return string(val), true, nil
}

// Set writes value under key.
func (s *Diskv) Set(key, value string) error {
	if err := s.d.WriteString(key, value); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; diskv holds no open handles between calls.
func (s *Diskv) Close() error {
	return nil
}

// BasePath returns the directory keys are stored in.
func (s *Diskv) BasePath() string {
	return s.basePath
}
