package manifest

import "sync"

// Store loads the manifest exactly once per process and hands out the cached
// instance afterwards. There is no invalidation: editing the manifest file
// requires a process restart.
type Store struct {
	path string

	once     sync.Once
	manifest *Manifest
	err      error
}

// NewStore creates a Store for the manifest file at path. No I/O happens
// until the first Load call.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the cached manifest, reading and validating the backing file
// on the first call only. A load failure is sticky: every subsequent call
// returns the same error.
func (s *Store) Load() (*Manifest, error) {
	s.once.Do(func() {
		s.manifest, s.err = Load(s.path)
	})
	return s.manifest, s.err
}
